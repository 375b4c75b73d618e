package prometrics

import (
	"sync"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry creates Prometheus-backed instruments behind the observability ports.
type Registry struct {
	reg        prometheus.Registerer
	counters   sync.Map // name -> *prometheus.CounterVec
	histograms sync.Map // name -> *prometheus.HistogramVec
	namespace  string
	subsystem  string
}

// New returns a registry that registers collectors on reg (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer, namespace, subsystem string) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Registry{reg: reg, namespace: namespace, subsystem: subsystem}
}

type counter struct{ v *prometheus.CounterVec }

func (c *counter) Add(d float64, labels ...observability.Label) {
	m, err := c.v.GetMetricWith(labelMap(labels))
	if err != nil {
		return
	}
	m.Add(d)
}

type histogram struct{ v *prometheus.HistogramVec }

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	m, err := h.v.GetMetricWith(labelMap(labels))
	if err != nil {
		return
	}
	m.Observe(v)
}

func labelMap(ls []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(ls))
	for _, l := range ls {
		m[l.Key] = l.Value
	}
	return m
}

func (r *Registry) Counter(name string, help string, labelKeys ...string) observability.Counter {
	// ensure only registered once
	if v, ok := r.counters.Load(name); ok {
		return &counter{v: v.(*prometheus.CounterVec)}
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: name, Help: help,
	}, labelKeys)
	r.reg.MustRegister(cv)
	r.counters.Store(name, cv)
	return &counter{v: cv}
}

func (r *Registry) Histogram(name string, help string, buckets []float64, labelKeys ...string) observability.Histogram {
	if v, ok := r.histograms.Load(name); ok {
		return &histogram{v: v.(*prometheus.HistogramVec)}
	}
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: name, Help: help, Buckets: buckets,
	}, labelKeys)
	r.reg.MustRegister(hv)
	r.histograms.Store(name, hv)
	return &histogram{v: hv}
}

// Instruments registers every descriptor and returns instruments keyed the way
// the observability provider expects them.
func (r *Registry) Instruments(
	counters []observability.MetricDesc,
	histograms []observability.MetricDesc,
) (map[observability.MetricKey]observability.Counter, map[observability.MetricKey]observability.Histogram) {
	cs := make(map[observability.MetricKey]observability.Counter, len(counters))
	for _, d := range counters {
		cs[d.Key] = r.Counter(string(d.Key), d.Help, d.Labels...)
	}
	hs := make(map[observability.MetricKey]observability.Histogram, len(histograms))
	for _, d := range histograms {
		hs[d.Key] = r.Histogram(string(d.Key), d.Help, nil, d.Labels...)
	}
	return cs, hs
}
