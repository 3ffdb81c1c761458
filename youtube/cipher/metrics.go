package cipher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK     = "ok"
	resultFailed = "failed"
	resultHit    = "hit"
	resultMiss   = "miss"
	resultStored = "stored"
)

// Metrics counts decipher activity. A nil *Metrics records nothing.
type Metrics struct {
	decipher *prometheus.CounterVec
	locate   *prometheus.CounterVec
	cache    *prometheus.CounterVec
}

// NewMetrics registers the cipher counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		decipher: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytcore",
			Subsystem: "cipher",
			Name:      "decipher_total",
			Help:      "Signature decipher calls by result",
		}, []string{"result"}),
		locate: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytcore",
			Subsystem: "cipher",
			Name:      "locate_total",
			Help:      "Decipher function lookups in player scripts by result",
		}, []string{"result"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytcore",
			Subsystem: "cipher",
			Name:      "operations_cache_total",
			Help:      "Operations cache lookups by tier and result",
		}, []string{"tier", "result"}),
	}
}

func (m *Metrics) observeDecipher(result string) {
	if m == nil {
		return
	}
	m.decipher.WithLabelValues(result).Inc()
}

func (m *Metrics) observeLocate(result string) {
	if m == nil {
		return
	}
	m.locate.WithLabelValues(result).Inc()
}

func (m *Metrics) observeCache(tier, result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(tier, result).Inc()
}
