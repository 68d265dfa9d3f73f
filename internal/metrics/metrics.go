// Package metrics exposes Prometheus counters for persistence and the
// trash sweep.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the netmark collectors. A nil *Recorder records nothing.
type Recorder struct {
	// Persists counts state writes by result (success|failure).
	Persists *prometheus.CounterVec

	// Sweeps counts trash sweeps by result (success|failure).
	Sweeps *prometheus.CounterVec

	// Purged counts bookmarks permanently removed by the sweep.
	Purged prometheus.Counter

	// Bookmarks tracks bookmarks in the state after the last write, by
	// location (live|trash).
	Bookmarks *prometheus.GaugeVec
}

// NewRecorder registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		Persists: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netmark_persist_total",
				Help: "Total number of state writes",
			},
			[]string{"result"},
		),
		Sweeps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netmark_trash_sweeps_total",
				Help: "Total number of trash sweeps",
			},
			[]string{"result"},
		),
		Purged: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "netmark_trash_purged_total",
				Help: "Bookmarks permanently removed after the trash retention window",
			},
		),
		Bookmarks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "netmark_bookmarks",
				Help: "Bookmarks in the persisted state",
			},
			[]string{"location"},
		),
	}
}

// ObservePersist records the outcome of one state write.
func (r *Recorder) ObservePersist(err error) {
	if r == nil {
		return
	}
	r.Persists.WithLabelValues(result(err)).Inc()
}

// ObserveSweep records one trash sweep and how many bookmarks it removed.
func (r *Recorder) ObserveSweep(removed int, err error) {
	if r == nil {
		return
	}
	r.Sweeps.WithLabelValues(result(err)).Inc()
	if removed > 0 {
		r.Purged.Add(float64(removed))
	}
}

// SetBookmarks updates the bookmark gauges.
func (r *Recorder) SetBookmarks(live, trash int) {
	if r == nil {
		return
	}
	r.Bookmarks.WithLabelValues("live").Set(float64(live))
	r.Bookmarks.WithLabelValues("trash").Set(float64(trash))
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
