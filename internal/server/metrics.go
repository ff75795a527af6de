package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cardroom_connections_active",
		Help: "Currently open websocket connections.",
	})
	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cardroom_rooms_active",
		Help: "Rooms currently registered.",
	})
	messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardroom_messages_received_total",
		Help: "Client events received over websocket.",
	})
	eventsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardroom_events_rejected_total",
		Help: "Client events rejected before reaching a room queue.",
	}, []string{"event"})
)
