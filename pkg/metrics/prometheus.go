package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	DevicesSynced  prometheus.Counter
	EventsStored   prometheus.Counter
	EntriesCreated prometheus.Counter
	RecordsSkipped prometheus.Counter
	SyncDuration   prometheus.Histogram
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates new prometheus metrics on the given registerer
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DevicesSynced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "devices_synced_total",
			Help:      "The total number of successful device sync cycles",
		}),
		EventsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_stored_total",
			Help:      "The total number of new events inserted into the store",
		}),
		EntriesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logbook_entries_created_total",
			Help:      "The total number of logbook entries materialized",
		}),
		RecordsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "The total number of raw records skipped as duplicate or invalid",
		}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "device_sync_duration_seconds",
			Help:      "Time taken to sync one device",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
