// Package metrics exposes Prometheus collectors for the draft ledger and
// the HTTP surface.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_draft_mutations_total",
		Help: "Ledger mutations by operation and outcome",
	}, []string{"op", "result"})

	picksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_draft_picks_total",
		Help: "Recorded picks by classification",
	}, []string{"classification"})

	recalcDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "auction_draft_recalculation_seconds",
		Help:    "Duration of a full valuation recompute",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	})

	inflationRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "auction_draft_inflation_rate",
		Help: "Inflation rate from the last recalculation",
	})

	poolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "auction_draft_pool_players",
		Help: "Players in the pool",
	})

	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_draft_events_dropped_total",
		Help: "Notifications that could not be delivered",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_draft_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auction_draft_http_request_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// Mutation counts one ledger operation. A nil err counts as ok.
func Mutation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mutationsTotal.WithLabelValues(op, result).Inc()
}

func Pick(classification string) {
	picksTotal.WithLabelValues(classification).Inc()
}

// Recalculated records one recompute and the rate it settled on.
func Recalculated(d time.Duration, rate float64, players int) {
	recalcDuration.Observe(d.Seconds())
	inflationRate.Set(rate)
	poolSize.Set(float64(players))
}

func EventDropped() {
	eventsDropped.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Flush and Hijack keep SSE and WebSocket routes working behind the
// middleware.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Middleware records request counts and latency labelled by the mux route
// template, so ids in the path do not explode cardinality. It must be
// installed with Router.Use so the matched route is visible.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
