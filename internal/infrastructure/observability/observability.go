package observability

import (
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

// instruments resolves metric keys against the registered tables and falls
// back to no-ops for keys nothing registered.
type instruments struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m instruments) Counter(key observability.MetricKey) observability.Counter {
	if c := m.counters[key]; c != nil {
		return c
	}
	return observability.NopCounter()
}

func (m instruments) Histogram(key observability.MetricKey) observability.Histogram {
	if h := m.histograms[key]; h != nil {
		return h
	}
	return observability.NopHistogram()
}

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics instruments
}

// New assembles the Observability handed to every use case and transport.
// Nil parts are replaced with no-ops.
func New(
	tracer observability.Tracer,
	logger observability.Logger,
	counters map[observability.MetricKey]observability.Counter,
	histograms map[observability.MetricKey]observability.Histogram,
) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &provider{
		tracer:  tracer,
		logger:  logger,
		metrics: instruments{counters: counters, histograms: histograms},
	}
}

func (p *provider) Tracer() observability.Tracer   { return p.tracer }
func (p *provider) Logger() observability.Logger   { return p.logger }
func (p *provider) Metrics() observability.Metrics { return p.metrics }
