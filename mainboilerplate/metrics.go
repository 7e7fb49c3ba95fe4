package mainboilerplate

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// MetricsConfig configures serving of prometheus metrics.
type MetricsConfig struct {
	Port string `long:"port" env:"PORT" description:"Port for metrics requests. Metrics are disabled if not set"`
	Path string `long:"path" env:"PATH" default:"/metrics" description:"Path of the metrics endpoint"`
}

// InitMetrics begins serving metrics over the configured port and path.
// It's a no-op if no port is configured.
func InitMetrics(cfg MetricsConfig) {
	if cfg.Port == "" {
		return
	}
	var mux = http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
			log.WithField("err", err).Error("failed to serve metrics")
		}
	}()
}
