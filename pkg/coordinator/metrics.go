package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "signal_connections",
		Help: "The number of open client connections.",
	}, []string{"transport"})
	events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_events_total",
		Help: "Client events by name and result.",
	}, []string{"event", "result"})
	dropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_send_dropped_total",
		Help: "Outbound messages dropped on full or closed connections.",
	})
	notices = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_room_notices_total",
		Help: "Server-originated room events by source.",
	}, []string{"source"})
)
