// Package metrics defines prometheus collectors of splitkit.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Keys for splitkit metrics.
const (
	Fail = "fail"
	Ok   = "ok"
)

// Collectors for split computations.
var (
	SplitKeysSampledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitkit_sampled_keys_total",
		Help: "Cumulative number of keys offered to the boundary sample.",
	})
	SplitKeysPartitionedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitkit_partitioned_keys_total",
		Help: "Cumulative number of keys assigned to a partition.",
	})
	SplitComputeDurationTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitkit_compute_duration_seconds_total",
		Help: "Cumulative number of seconds spent computing split keys.",
	})
	SplitComputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitkit_compute_total",
		Help: "Cumulative number of split computations.",
	}, []string{"status"})
)

// Collectors for the table-admin client.
var (
	AdminRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitkit_admin_request_total",
		Help: "Cumulative number of table-admin service requests.",
	}, []string{"operation", "status"})
)

// SplitCollectors returns the collectors of split computations.
func SplitCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		SplitKeysSampledTotal,
		SplitKeysPartitionedTotal,
		SplitComputeDurationTotal,
		SplitComputeTotal,
	}
}

// AdminCollectors returns the collectors of the table-admin client.
func AdminCollectors() []prometheus.Collector {
	return []prometheus.Collector{AdminRequestTotal}
}
