package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teleconsult/signal/pkg/logger"
)

func TestDefaultConfig(t *testing.T) {
	var conf Signal
	path, err := LoadConfig(&conf, "")
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Errorf("no config path")
	}
	if conf.Namespace != "/signaling" {
		t.Errorf("namespace %q", conf.Namespace)
	}
	if conf.Transport.PollWait != 25*time.Second || conf.Transport.PollIdle != 60*time.Second {
		t.Errorf("poll timings %v %v", conf.Transport.PollWait, conf.Transport.PollIdle)
	}
	if len(conf.Webrtc.IceServers) == 0 {
		t.Errorf("no ice servers")
	}
	if err := conf.Webrtc.Validate(); err != nil {
		t.Errorf("default ice servers: %v", err)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("SIGNAL_NAMESPACE", "/rtc")
	t.Setenv("SIGNAL_TRANSPORT_QUEUESIZE", "8")
	t.Setenv("SIGNAL_INTERNAL_TOKEN", "secret")

	var conf Signal
	if _, err := LoadConfig(&conf, ""); err != nil {
		t.Fatal(err)
	}
	if conf.Namespace != "/rtc" {
		t.Errorf("namespace %q", conf.Namespace)
	}
	if conf.Transport.QueueSize != 8 {
		t.Errorf("queue size %v", conf.Transport.QueueSize)
	}
	if conf.Internal.Token != "secret" {
		t.Errorf("token %q", conf.Internal.Token)
	}
}

func TestCustomPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(file, []byte("namespace: /x\nserver:\n  address: :9000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "file", path: file},
		{name: "dir", path: dir},
	}
	if err := os.WriteFile(filepath.Join(dir, File), []byte("namespace: /x\nserver:\n  address: :9000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var conf Signal
			path, err := LoadConfig(&conf, test.path)
			if err != nil {
				t.Fatal(err)
			}
			if path == "" {
				t.Errorf("no path")
			}
			if conf.Namespace != "/x" || conf.Server.Address != ":9000" {
				t.Errorf("unexpected config %+v", conf)
			}
			// defaults for the rest
			if conf.Transport.QueueSize != 256 {
				t.Errorf("queue size %v", conf.Transport.QueueSize)
			}
		})
	}
}

func TestMissingFile(t *testing.T) {
	var conf Signal
	if _, err := LoadConfig(&conf, filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Errorf("expected an error")
	}
}

func TestFlags(t *testing.T) {
	conf, _, err := Load([]string{"--address", ":7000", "-d", "--redis", "localhost:6379"})
	if err != nil {
		t.Fatal(err)
	}
	if conf.Server.Address != ":7000" {
		t.Errorf("address %q", conf.Server.Address)
	}
	if !conf.Debug {
		t.Errorf("debug is off")
	}
	if !conf.Redis.IsEnabled() {
		t.Errorf("redis is off")
	}
	// from the file
	if conf.Namespace != "/signaling" {
		t.Errorf("namespace %q", conf.Namespace)
	}
}

func TestIceValidate(t *testing.T) {
	tests := []struct {
		name string
		ice  []IceServer
		err  error
		fail bool
	}{
		{name: "empty"},
		{name: "stun", ice: []IceServer{{Urls: "stun:stun.l.google.com:19302"}}},
		{name: "turn", ice: []IceServer{{Urls: "turn:turn.example.com:3478", Username: "u", Credential: "p"}}},
		{name: "turn no creds", ice: []IceServer{{Urls: "turn:turn.example.com:3478"}}, err: ErrTurnCredentials, fail: true},
		{name: "turns no password", ice: []IceServer{{Urls: "turns:turn.example.com:5349", Username: "u"}}, err: ErrTurnCredentials, fail: true},
		{name: "garbage", ice: []IceServer{{Urls: "http://example.com"}}, fail: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := Webrtc{IceServers: test.ice}
			err := w.Validate()
			if test.fail != (err != nil) {
				t.Fatalf("unexpected result: %v", err)
			}
			if test.err != nil && !errors.Is(err, test.err) {
				t.Errorf("expected %v, got %v", test.err, err)
			}
		})
	}
}

func TestICEServers(t *testing.T) {
	w := Webrtc{IceServers: []IceServer{
		{Urls: "stun:stun.l.google.com:19302"},
		{Urls: "turn:turn.example.com:3478", Username: "u", Credential: "p"},
	}}
	out := w.ICEServers()
	if len(out) != 2 {
		t.Fatalf("got %v servers", len(out))
	}
	if out[0].URLs[0] != "stun:stun.l.google.com:19302" || out[0].Credential != nil {
		t.Errorf("unexpected %+v", out[0])
	}
	if out[1].Username != "u" || out[1].Credential != "p" {
		t.Errorf("unexpected %+v", out[1])
	}
}

func TestWatch(t *testing.T) {
	file := filepath.Join(t.TempDir(), File)
	if err := os.WriteFile(file, []byte("debug: false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int32
	stop, err := Watch(file, func() { calls.Add(1) }, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = stop() }()

	if err := os.WriteFile(file, []byte("debug: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Errorf("no change callback")
	}
}
