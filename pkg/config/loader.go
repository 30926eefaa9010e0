package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kkyr/fig"
	xos "github.com/teleconsult/signal/pkg/os"
)

const (
	EnvPrefix = "SIGNAL"
	File      = "config.yaml"
)

// LoadConfig loads a configuration file into the given struct.
// The path param specifies a custom path to the configuration file
// or the directory with it.
// Reads and puts environment variables with the prefix SIGNAL_.
// Params from the config should be in uppercase separated with _.
// Returns the path of the used file.
func LoadConfig(config any, path string) (string, error) {
	file := File
	dirs := []string{path}
	switch {
	case path == "":
		dirs = []string{".", "configs", "../../configs"}
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, ".signal"))
		}
	case filepath.Ext(path) != "":
		file = filepath.Base(path)
		dirs = []string{filepath.Dir(path)}
	}
	if err := fig.Load(config, fig.File(file), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix)); err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	for _, dir := range dirs {
		if p := filepath.Join(dir, file); xos.Exists(p) {
			return p, nil
		}
	}
	return "", nil
}
