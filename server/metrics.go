package server

import (
	"github.com/existflow/deadlines/internal/clock"
	"github.com/existflow/deadlines/internal/countdown"
	"github.com/existflow/deadlines/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, st *store.Store, c clock.Clock) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "deadlines", Name: "http_requests_total", Help: "HTTP requests by method, route and status."},
			[]string{"method", "route", "status"},
		),
	}
	reg.MustRegister(m.requests)
	reg.MustRegister(&tierCollector{
		store: st,
		clock: c,
		desc:  prometheus.NewDesc("deadlines_tracked", "Deadlines per urgency tier at scrape time.", []string{"tier"}, nil),
	})
	return m
}

// tierCollector derives tier counts from the store on every scrape
type tierCollector struct {
	store *store.Store
	clock clock.Clock
	desc  *prometheus.Desc
}

func (t *tierCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- t.desc
}

func (t *tierCollector) Collect(ch chan<- prometheus.Metric) {
	counts := countdown.CountByTier(countdown.DeriveAll(t.store.List(), t.clock.Now()))
	for _, tier := range []countdown.Tier{countdown.Safe, countdown.Warning, countdown.Critical} {
		ch <- prometheus.MustNewConstMetric(t.desc, prometheus.GaugeValue, float64(counts[tier]), tier.String())
	}
}
