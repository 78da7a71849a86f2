package substack

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ma2za/substack.go/pkg/constants"
)

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// newTransport layers, from the outside in: user agent, tracing, metrics, base.
func newTransport(base http.RoundTripper, cfg Config) (http.RoundTripper, *clientMetrics, error) {
	if base == nil {
		base = http.DefaultTransport
	}

	var metrics *clientMetrics
	if cfg.Registerer != nil {
		m, err := newClientMetrics(cfg.Registerer)
		if err != nil {
			return nil, nil, err
		}
		metrics = m
		base = m.instrument(base)
	}

	if cfg.Tracing {
		base = otelhttp.NewTransport(base)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = constants.DefaultUserAgent
	}

	return &userAgentTransport{base: base, userAgent: userAgent}, metrics, nil
}

type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "substack_client_requests_total",
				Help: "Total number of requests sent to Substack.",
			},
			[]string{"code", "method"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "substack_client_request_duration_seconds",
				Help:    "Latency of requests sent to Substack.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "substack_client_in_flight_requests",
			Help: "Requests to Substack currently in flight.",
		}),
	}

	for _, collector := range []prometheus.Collector{m.requests, m.duration, m.inFlight} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *clientMetrics) instrument(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(m.inFlight,
		promhttp.InstrumentRoundTripperCounter(m.requests,
			promhttp.InstrumentRoundTripperDuration(m.duration, next)))
}
