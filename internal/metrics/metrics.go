package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chatroom metrics
	ConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mobelhaus_chat_connections_open",
			Help: "Currently open chatroom connections",
		},
	)

	MessagesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mobelhaus_chat_messages_persisted_total",
			Help: "Total chat messages persisted",
		},
	)

	BroadcastDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mobelhaus_chat_broadcast_deliveries_total",
			Help: "Total per-connection broadcast deliveries",
		},
	)

	FramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mobelhaus_chat_frames_dropped_total",
			Help: "Inbound frames dropped without persistence or broadcast",
		},
		[]string{"reason"}, // "malformed", "unknown_type", "invalid", "persistence"
	)

	MentionsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mobelhaus_chat_mentions_recorded_total",
			Help: "Mention tags recorded by the background worker",
		},
	)

	MessagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mobelhaus_chat_messages_deleted_total",
			Help: "Messages removed by moderators",
		},
	)
)
