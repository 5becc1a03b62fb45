package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgmetrics "smartPricing/pkg/metrics"
)

var BuildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "smart_pricing_build_info",
	Help: "Build and environment of the running server",
}, []string{"version", "environment"})

// Init registers server metrics on the default registry. Bandit decision counters
// register themselves on import.
func Init(version, environment string) {
	pkgmetrics.Init(prometheus.DefaultRegisterer)
	prometheus.MustRegister(BuildInfo)
	BuildInfo.WithLabelValues(version, environment).Set(1)
}

// Handler serves the default registry.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
