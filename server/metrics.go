package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"infinisweeper/game"
)

// Metrics はサーバーごとの Prometheus メトリクスです
type Metrics struct {
	registry *prometheus.Registry

	reveals      *prometheus.CounterVec
	cellsTouched prometheus.Histogram
	revealSteps  prometheus.Histogram
	truncated    prometheus.Counter
	sessions     prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reveals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sweeper_reveals_total",
			Help: "Reveal requests by outcome (ok, mine, noop)",
		}, []string{"outcome"}),
		cellsTouched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sweeper_reveal_cells",
			Help:    "Cells materialized or revealed per reveal",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		revealSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sweeper_reveal_steps",
			Help:    "Flood fill expansion steps per reveal",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sweeper_reveal_truncated_total",
			Help: "Reveals stopped by the step or idle budget",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sweeper_active_sessions",
			Help: "Number of live game sessions",
		}),
	}
	m.registry.MustRegister(m.reveals, m.cellsTouched, m.revealSteps, m.truncated, m.sessions)
	return m
}

// ObserveReveal は Reveal の結果を記録します
func (m *Metrics) ObserveReveal(res game.Result) {
	switch {
	case len(res.Cells) == 0:
		m.reveals.WithLabelValues("noop").Inc()
		return
	case res.HitMine():
		m.reveals.WithLabelValues("mine").Inc()
	default:
		m.reveals.WithLabelValues("ok").Inc()
	}
	m.cellsTouched.Observe(float64(len(res.Cells)))
	m.revealSteps.Observe(float64(res.Steps))
	if res.Truncated {
		m.truncated.Inc()
	}
}

// Handler は /metrics 用のハンドラを返します
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
