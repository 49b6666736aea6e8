// Package prom implements the observability hooks with Prometheus
// collectors.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/spmgraph/pkg/observability"
)

const namespace = "spmgraph"

// Hooks implements every observability hook interface.
type Hooks struct {
	builds       prometheus.Counter
	buildSeconds prometheus.Histogram
	edges        prometheus.Counter
	strategy     *prometheus.CounterVec
	strategySecs *prometheus.HistogramVec
	unitFailures prometheus.Counter
	edits        *prometheus.CounterVec
	cache        *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "graph_builds_total",
			Help: "Dependency graph passes.",
		}),
		buildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "graph_build_duration_seconds",
			Help:    "Duration of dependency graph passes.",
			Buckets: prometheus.DefBuckets,
		}),
		edges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "graph_edges_total",
			Help: "Edges emitted by graph passes.",
		}),
		strategy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "graph_strategy_attempts_total",
			Help: "Strategy attempts per manifest by outcome.",
		}, []string{"strategy", "result"}),
		strategySecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "graph_strategy_duration_seconds",
			Help:    "Duration of one strategy attempt.",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy"}),
		unitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "graph_unit_failures_total",
			Help: "Manifests for which every strategy failed.",
		}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "manifest_edits_total",
			Help: "Manifest edits by operation and outcome.",
		}, []string{"op", "result"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_requests_total",
			Help: "Cache lookups and writes by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
	}
	reg.MustRegister(h.builds, h.buildSeconds, h.edges, h.strategy, h.strategySecs,
		h.unitFailures, h.edits, h.cache, h.cacheBytes)
	return h
}

// Install registers h as the global graph, edit and cache hooks.
func (h *Hooks) Install() {
	observability.SetGraphHooks(h)
	observability.SetEditHooks(h)
	observability.SetCacheHooks(h)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *Hooks) OnBuildStart(context.Context, string, int) {
	h.builds.Inc()
}

func (h *Hooks) OnStrategy(_ context.Context, strategy string, _ int, d time.Duration, err error) {
	h.strategy.WithLabelValues(strategy, outcome(err)).Inc()
	h.strategySecs.WithLabelValues(strategy).Observe(d.Seconds())
}

func (h *Hooks) OnUnitFailed(context.Context, string) {
	h.unitFailures.Inc()
}

func (h *Hooks) OnBuildComplete(_ context.Context, _ string, edges int, d time.Duration, _ error) {
	h.edges.Add(float64(edges))
	h.buildSeconds.Observe(d.Seconds())
}

func (h *Hooks) OnEdit(_ context.Context, op, _ string, err error) {
	h.edits.WithLabelValues(op, outcome(err)).Inc()
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cache.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cache.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cache.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// WriteFile writes the metrics gathered by g to path in the text exposition
// format, the format node_exporter's textfile collector reads.
func WriteFile(g prometheus.Gatherer, path string) error {
	return prometheus.WriteToTextfile(path, g)
}

var (
	_ observability.GraphHooks = (*Hooks)(nil)
	_ observability.EditHooks  = (*Hooks)(nil)
	_ observability.CacheHooks = (*Hooks)(nil)
)
