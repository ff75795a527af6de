package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	handsDealt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardroom_hands_dealt_total",
		Help: "Hands started, by variant.",
	}, []string{"variant"})
	turnTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardroom_turn_timeouts_total",
		Help: "Turns that expired and were auto-acted.",
	})
)
