// Package admin is a small net/http sidecar exposing Prometheus
// metrics and health probes, entirely separate from the reactor pool
// that serves routed traffic.
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stats is the minimal read-only view the sidecar needs from a
// running server, kept narrow to avoid importing the server package.
type Stats interface {
	RequestsPerSecond() int64
	BlogCount() int
}

// Server is the admin HTTP sidecar.
type Server struct {
	httpSrv *http.Server
	version string
}

// New builds the sidecar bound to addr. stats supplies the live gauge
// values on every /metrics scrape.
func New(addr, version string, stats Stats) *Server {
	registerer := prometheus.WrapRegistererWithPrefix("", prometheus.DefaultRegisterer)
	requestRate := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "aehttpd",
		Name:      "requests_per_second",
		Help:      "Trailing one-second accepted-connection rate.",
	}, func() float64 { return float64(stats.RequestsPerSecond()) })
	publishedPosts := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "aehttpd",
		Name:      "blog_posts_published",
		Help:      "Number of posts in the currently published blog list.",
	}, func() float64 { return float64(stats.BlogCount()) })
	registerer.MustRegister(requestRate, publishedPosts)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz/liveness-probe", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/healthz/readiness-probe", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(version))
	})

	return &Server{
		httpSrv: &http.Server{Addr: addr, Handler: mux},
		version: version,
	}
}

// Start blocks serving until the sidecar is stopped or fails.
func (s *Server) Start() error {
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the sidecar down within the given grace period.
func (s *Server) Stop(grace time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}
