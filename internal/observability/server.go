package observability

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
)

const metricPrefix = "discctl_"

// Routes builds the scrape router: /metrics and /health.
func Routes(logger zerolog.Logger) *gin.Engine {
	RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	started := time.Now()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(started).String(),
		})
	})
	return r
}

// MetricsServer serves Routes for the lifetime of one command.
type MetricsServer struct {
	srv *http.Server
	ln  net.Listener
	log zerolog.Logger
}

// ServeMetrics listens on addr and serves Routes in the background.
func ServeMetrics(addr string, logger zerolog.Logger) (*MetricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &MetricsServer{
		srv: &http.Server{
			Handler:           Routes(logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:  ln,
		log: logger,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return s, nil
}

// Addr is the bound listen address, useful when addr used port 0.
func (s *MetricsServer) Addr() string {
	return s.ln.Addr().String()
}

func (s *MetricsServer) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// WriteMetrics writes the discctl families gathered from g in the text
// exposition format.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	RegisterMetrics()
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metricPrefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
