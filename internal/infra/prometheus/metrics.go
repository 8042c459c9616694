package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters covering the redirect and click pipeline. Registered on the
// default registry served by the metrics server.
var (
	RedirectsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slugster_redirects_served_total",
		Help: "Redirects served, by link ownership.",
	}, []string{"owned"})

	ClicksPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slugster_clicks_published_total",
		Help: "Click events published to the stream.",
	})

	ClickPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slugster_click_publish_failures_total",
		Help: "Click events dropped because publishing failed.",
	})

	ClicksPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slugster_clicks_persisted_total",
		Help: "Click events written to the click log by the consumer.",
	})
)
