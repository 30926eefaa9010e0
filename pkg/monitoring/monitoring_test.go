package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teleconsult/signal/pkg/config"
	"github.com/teleconsult/signal/pkg/logger"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name string
		conf config.Monitoring
		path string
		code int
	}{
		{name: "metrics", conf: config.Monitoring{MetricEnabled: true}, path: "/metrics", code: http.StatusOK},
		{name: "prefixed metrics", conf: config.Monitoring{MetricEnabled: true, URLPrefix: "/signal"}, path: "/signal/metrics", code: http.StatusOK},
		{name: "metrics off", conf: config.Monitoring{ProfilingEnabled: true}, path: "/metrics", code: http.StatusNotFound},
		{name: "pprof", conf: config.Monitoring{ProfilingEnabled: true}, path: "/debug/pprof/", code: http.StatusOK},
		{name: "pprof off", conf: config.Monitoring{MetricEnabled: true}, path: "/debug/pprof/", code: http.StatusNotFound},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Handler(test.conf, "", logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, test.path, nil))
			if rec.Code != test.code {
				t.Errorf("got %v, want %v", rec.Code, test.code)
			}
			if test.name == "metrics" && !strings.Contains(rec.Body.String(), "go_goroutines") {
				t.Errorf("no go metrics")
			}
		})
	}
}
