package room

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signal",
		Name:      "rooms",
		Help:      "The number of live consultation rooms.",
	})
	participantsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signal",
		Name:      "participants",
		Help:      "The number of room members.",
	})
	evictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "signal",
		Name:      "evictions_total",
		Help:      "Members replaced by a newer connection with the same role.",
	})
	readiness = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "signal",
		Name:      "ready_total",
		Help:      "Transitions of rooms into the both-parties-present state.",
	})
	relayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signal",
		Name:      "relayed_total",
		Help:      "Relayed messages by the event name.",
	}, []string{"event"})
	dropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "signal",
		Name:      "relay_dropped_total",
		Help:      "Relay messages without a recipient.",
	})
)
