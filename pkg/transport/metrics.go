package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request counts and latency for outbound API calls.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil
// registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digipost",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Outbound Digipost API requests by method and status code",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "digipost",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Outbound Digipost API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	if reg == nil {
		return m, nil
	}

	if err := reg.Register(m.requests); err != nil {
		existing, err := alreadyRegistered[*prometheus.CounterVec](err)
		if err != nil {
			return nil, fmt.Errorf("registering request counter: %w", err)
		}
		m.requests = existing
	}
	if err := reg.Register(m.duration); err != nil {
		existing, err := alreadyRegistered[*prometheus.HistogramVec](err)
		if err != nil {
			return nil, fmt.Errorf("registering duration histogram: %w", err)
		}
		m.duration = existing
	}

	return m, nil
}

// alreadyRegistered returns the collector that is already registered under
// the same descriptor, so several clients can share one registry.
func alreadyRegistered[T prometheus.Collector](err error) (T, error) {
	var zero T
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return zero, err
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return zero, err
	}
	return existing, nil
}

// Middleware returns middleware recording each request.
func (m *Metrics) Middleware() Middleware {
	return func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			m.duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			m.requests.WithLabelValues(req.Method, code).Inc()

			return resp, err
		}
	}
}
