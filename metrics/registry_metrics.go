package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type RegistryMetrics struct {
	AcceptedCommitsCounter      prometheus.Counter
	RejectedCommitsCounter      prometheus.Counter
	ConsumedCommitmentsCounter  prometheus.Counter
	NoMatchRevealsCounter       prometheus.Counter
	PrunedCommitmentsCounter    prometheus.Counter
	LastOrderingValueGauge      prometheus.Gauge
	CommitSubscribersGauge      prometheus.Gauge
	DroppedNotificationsCounter prometheus.Counter
}

var (
	registryMetricsInstance *RegistryMetrics
	registryMetricsOnce     sync.Once
)

// NewRegistryMetrics returns the process-wide registry metrics, registering
// the collectors on first use
func NewRegistryMetrics() *RegistryMetrics {
	registryMetricsOnce.Do(func() {
		registryMetricsInstance = &RegistryMetrics{
			AcceptedCommitsCounter: promauto.NewCounter(prometheus.CounterOpts{
				Name: "commitd_accepted_commits_total",
				Help: "Total number of accepted commits",
			}),
			RejectedCommitsCounter: promauto.NewCounter(prometheus.CounterOpts{
				Name: "commitd_rejected_commits_total",
				Help: "Total number of commits rejected as unauthorized",
			}),
			ConsumedCommitmentsCounter: promauto.NewCounter(prometheus.CounterOpts{
				Name: "commitd_consumed_commitments_total",
				Help: "Total number of commitments consumed by successful reveals",
			}),
			NoMatchRevealsCounter: promauto.NewCounter(prometheus.CounterOpts{
				Name: "commitd_no_match_reveals_total",
				Help: "Total number of reveal attempts that found no matching commitment",
			}),
			PrunedCommitmentsCounter: promauto.NewCounter(prometheus.CounterOpts{
				Name: "commitd_pruned_commitments_total",
				Help: "Total number of commitments removed by expiry pruning",
			}),
			LastOrderingValueGauge: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "commitd_last_ordering_value",
				Help: "Last ordering value assigned to an accepted commit",
			}),
			CommitSubscribersGauge: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "commitd_commit_subscribers",
				Help: "Number of active commit event subscribers",
			}),
			DroppedNotificationsCounter: promauto.NewCounter(prometheus.CounterOpts{
				Name: "commitd_dropped_notifications_total",
				Help: "Total number of commit notifications dropped due to slow subscribers",
			}),
		}
	})

	return registryMetricsInstance
}

func (rm *RegistryMetrics) IncrementAcceptedCommitsCounter() {
	rm.AcceptedCommitsCounter.Inc()
}

func (rm *RegistryMetrics) IncrementRejectedCommitsCounter() {
	rm.RejectedCommitsCounter.Inc()
}

func (rm *RegistryMetrics) IncrementConsumedCommitmentsCounter() {
	rm.ConsumedCommitmentsCounter.Inc()
}

func (rm *RegistryMetrics) IncrementNoMatchRevealsCounter() {
	rm.NoMatchRevealsCounter.Inc()
}

func (rm *RegistryMetrics) AddPrunedCommitments(n float64) {
	rm.PrunedCommitmentsCounter.Add(n)
}

func (rm *RegistryMetrics) SetLastOrderingValue(v float64) {
	rm.LastOrderingValueGauge.Set(v)
}

func (rm *RegistryMetrics) SetCommitSubscribers(n float64) {
	rm.CommitSubscribersGauge.Set(n)
}

func (rm *RegistryMetrics) IncrementDroppedNotificationsCounter() {
	rm.DroppedNotificationsCounter.Inc()
}
