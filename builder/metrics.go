package builder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics mirrors build statistics to Prometheus. A nil *Metrics is
// valid and records nothing, so callers without a registry pass nil.
type Metrics struct {
	pages      *prometheus.CounterVec
	triples    prometheus.Counter
	links      prometheus.Counter
	buildsDone *prometheus.CounterVec
}

// Page outcome label values.
const (
	outcomeSucceeded = "succeeded"
	outcomeNoInfobox = "no_infobox"
	outcomeErrored   = "errored"
	outcomeDuplicate = "duplicate"
)

// NewMetrics registers the build collectors on reg. A nil registerer
// yields nil metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &Metrics{
		pages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tolkienkg",
			Name:      "pages_total",
			Help:      "Pages handled by the build, by outcome.",
		}, []string{"outcome"}),
		triples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tolkienkg",
			Name:      "triples_added_total",
			Help:      "Statements added to the graph.",
		}),
		links: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tolkienkg",
			Name:      "external_links_total",
			Help:      "External knowledge-base links attached to entities.",
		}),
		buildsDone: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tolkienkg",
			Name:      "builds_total",
			Help:      "Finished builds, by terminal state.",
		}, []string{"state"}),
	}
}

func (m *Metrics) page(outcome string) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) addTriples(n int) {
	if m == nil {
		return
	}
	m.triples.Add(float64(n))
}

func (m *Metrics) addLinks(n int) {
	if m == nil {
		return
	}
	m.links.Add(float64(n))
}

func (m *Metrics) buildDone(state State) {
	if m == nil {
		return
	}
	m.buildsDone.WithLabelValues(string(state)).Inc()
}
