package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settled-message outcomes recorded by the consumer.
const (
	outcomeProcessed   = "processed"
	outcomeFailed      = "failed"
	outcomeUndecodable = "undecodable"
	outcomeDuplicate   = "duplicate"
)

var (
	consumedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kafka",
			Subsystem: "consumer",
			Name:      "messages_total",
			Help:      "Messages settled by the consumer, by outcome",
		},
		[]string{"topic", "group", "outcome"},
	)

	deadLettered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kafka",
			Subsystem: "consumer",
			Name:      "dead_lettered_total",
			Help:      "Messages copied to a dead-letter topic",
		},
		[]string{"topic", "group"},
	)

	handleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kafka",
			Subsystem: "consumer",
			Name:      "handle_duration_seconds",
			Help:      "Time from fetch to settlement of a message, retries included",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
		},
		[]string{"topic", "group"},
	)

	producedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kafka",
			Subsystem: "producer",
			Name:      "messages_total",
			Help:      "Messages written by the producer, by result",
		},
		[]string{"topic", "result"},
	)
)

func (c *Consumer) settled(outcome string) {
	consumedMessages.WithLabelValues(c.cfg.Topic, c.cfg.GroupID, outcome).Inc()
}
