// Package metrics exposes Prometheus HTTP metrics for gin, served on a
// dedicated listener so the metrics port can stay off the public surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultMetricPath = "/metrics"

type Prometheus struct {
	reqCnt *prometheus.CounterVec
	reqDur *prometheus.HistogramVec

	listenAddress string
	urlLabelFn    func(c *gin.Context) string
	log           *zap.SugaredLogger
}

type NewPrometheusOptions struct {
	// ReqCntURLLabelMappingFn maps a request to its url label. Use the gin
	// route template, not the raw path, to keep label cardinality bounded.
	ReqCntURLLabelMappingFn func(c *gin.Context) string
	Logger                  *zap.SugaredLogger
}

func NewPrometheus(opts NewPrometheusOptions) *Prometheus {
	p := &Prometheus{
		urlLabelFn: opts.ReqCntURLLabelMappingFn,
		log:        opts.Logger,
	}
	if p.urlLabelFn == nil {
		p.urlLabelFn = func(c *gin.Context) string { return c.FullPath() }
	}

	p.reqCnt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "req_total",
			Help: "How many HTTP requests processed, partitioned by status code, method and url.",
		},
		[]string{"code", "method", "url"},
	)
	p.reqDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "req_dur_ms",
			Help:    "The HTTP request latencies in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"code", "method", "url"},
	)

	for _, c := range []prometheus.Collector{p.reqCnt, p.reqDur} {
		if err := prometheus.Register(c); err != nil && p.log != nil {
			p.log.Errorf("metrics register failed: %v", err)
		}
	}
	return p
}

// SetListenAddress configures the dedicated metrics listener address.
func (p *Prometheus) SetListenAddress(addr string) {
	p.listenAddress = addr
}

// Use attaches the middleware to the engine and, when a listen address is
// configured, starts the metrics listener in the background.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.handlerFunc())
	if p.listenAddress != "" {
		mux := http.NewServeMux()
		mux.Handle(defaultMetricPath, promhttp.Handler())
		go func() {
			srv := &http.Server{Addr: p.listenAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			if err := srv.ListenAndServe(); err != nil && p.log != nil {
				p.log.Errorf("metrics listener error: %v", err)
			}
		}()
	} else {
		e.GET(defaultMetricPath, gin.WrapH(promhttp.Handler()))
	}
}

func (p *Prometheus) handlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == defaultMetricPath {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		code := strconv.Itoa(c.Writer.Status())
		url := p.urlLabelFn(c)
		p.reqCnt.WithLabelValues(code, c.Request.Method, url).Inc()
		p.reqDur.WithLabelValues(code, c.Request.Method, url).
			Observe(float64(time.Since(start).Milliseconds()))
	}
}
