package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Broadcast metrics
	BroadcastsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentionbot_broadcasts_started_total",
			Help: "Total broadcast runs started",
		},
	)

	BroadcastsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentionbot_broadcasts_finished_total",
			Help: "Total broadcast runs finished",
		},
		[]string{"outcome"}, // "completed" or "stopped"
	)

	ChunksSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentionbot_chunks_sent_total",
			Help: "Total mention chunks sent",
		},
	)

	SendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentionbot_send_failures_total",
			Help: "Total outbound sends that failed",
		},
	)

	// Roster metrics
	MembersLearned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentionbot_members_learned_total",
			Help: "Total member upserts from observed activity and joins",
		},
	)

	MembersForgotten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentionbot_members_forgotten_total",
			Help: "Total member removals on leave or kick",
		},
	)

	// Config metrics
	ConfigUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentionbot_config_updates_total",
			Help: "Total chat config updates",
		},
	)
)
