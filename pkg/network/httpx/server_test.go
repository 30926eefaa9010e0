package httpx

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/teleconsult/signal/pkg/config"
	"github.com/teleconsult/signal/pkg/logger"
)

func TestServerRunShutdown(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", func(*Server) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	}, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	srv.Run()

	resp, err := http.Get(srv.Url())
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("unexpected body %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("shutdown: %v", err)
	}
	if _, err := http.Get(srv.Url()); err == nil {
		t.Errorf("the server still works")
	}
}

func TestHttpsRedirectIsReadyAfterRun(t *testing.T) {
	conf := config.Server{Https: true, Address: "127.0.0.1:0"}
	srv, err := NewServer("127.0.0.1:0", func(*Server) http.Handler { return http.NotFoundHandler() },
		WithServerConfig(conf), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	srv.Run()
	if srv.redirect == nil {
		t.Fatalf("no redirect server after Run")
	}

	client := http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Get("http://" + srv.redirect.Addr + "/rooms?x=1")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("got %v, want %v", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "https://") || !strings.HasSuffix(loc, "/rooms?x=1") {
		t.Errorf("unexpected redirect to %v", loc)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("shutdown: %v", err)
	}
	if _, err := client.Get("http://" + srv.redirect.Addr); err == nil {
		t.Errorf("the redirect server still works")
	}
}
