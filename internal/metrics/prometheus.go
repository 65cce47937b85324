package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	HandshakesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "social_facebook_handshakes_total",
		Help: "Total number of completed Facebook OAuth handshakes by result.",
	}, []string{"result"})

	PropertySavesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "social_property_saves_total",
		Help: "Total number of OAuth property values written.",
	})

	PropertyLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "social_property_loads_total",
		Help: "Total number of OAuth property value reads by source.",
	}, []string{"source"})

	ValidityChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "social_validity_checks_total",
		Help: "Total number of access token validity checks by outcome.",
	}, []string{"valid"})
)

// Label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	SourceCache   = "cache"
	SourceStorage = "storage"
)

// InitCustomMetrics registers the metrics with reg. It should be called once
// at application startup.
func InitCustomMetrics(reg prometheus.Registerer) {
	if reg == nil {
		return
	}

	for name, c := range map[string]prometheus.Collector{
		"HandshakesTotal":     HandshakesTotal,
		"PropertySavesTotal":  PropertySavesTotal,
		"PropertyLoadsTotal":  PropertyLoadsTotal,
		"ValidityChecksTotal": ValidityChecksTotal,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Str("metric", name).Msg("Failed to register metric")
		}
	}
}

// ObserveValidity records a validity check and returns valid unchanged.
func ObserveValidity(valid bool) bool {
	label := "false"
	if valid {
		label = "true"
	}
	ValidityChecksTotal.WithLabelValues(label).Inc()

	return valid
}
