package main

import (
	"context"
	"errors"
	goos "os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/teleconsult/signal/pkg/config"
	"github.com/teleconsult/signal/pkg/coordinator"
	"github.com/teleconsult/signal/pkg/logger"
	"github.com/teleconsult/signal/pkg/os"
)

var Version = "?"

func main() {
	// .env is optional
	_ = godotenv.Load()

	conf, path, err := config.Load(goos.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logger.Default().Fatal().Err(err).Msg("config")
	}

	var log *logger.Logger
	if conf.Log.Json {
		log = logger.New(conf.Debug)
	} else {
		log = logger.NewConsole(conf.Debug, "s", conf.Log.NoColor)
	}

	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Str("path", path).Msgf("config: %+v", conf)
	}
	c, err := coordinator.New(conf, path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	c.Start()

	<-os.ExpectTermination()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("service shutdown errors")
	}
}
