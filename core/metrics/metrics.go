package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the service's prometheus metrics on a private registry.
type Manager struct {
	Registry *prometheus.Registry

	BidsPlaced         prometheus.Counter
	BidsRejected       *prometheus.CounterVec
	BuyOrdersCreated   prometheus.Counter
	BuyOrdersFulfilled prometheus.Counter
	GroupConversions   *prometheus.CounterVec
	PhotoActions       *prometheus.CounterVec
	RequestLatency     *prometheus.HistogramVec
}

// NewManager creates and registers all metrics.
func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	m := &Manager{
		Registry: registry,
		BidsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bids_placed_total",
			Help:      "Total number of accepted bids.",
		}),
		BidsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bids_rejected_total",
			Help:      "Total number of rejected bids by error kind.",
		}, []string{"reason"}),
		BuyOrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buy_orders_created_total",
			Help:      "Total number of buy orders created.",
		}),
		BuyOrdersFulfilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buy_orders_fulfilled_total",
			Help:      "Total number of buy orders fulfilled.",
		}),
		GroupConversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_conversions_total",
			Help:      "Listings moved between unique and multiple sale types.",
		}, []string{"direction"}),
		PhotoActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_actions_total",
			Help:      "Photo reconciliation actions applied.",
		}, []string{"action"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		m.BidsPlaced,
		m.BidsRejected,
		m.BuyOrdersCreated,
		m.BuyOrdersFulfilled,
		m.GroupConversions,
		m.PhotoActions,
		m.RequestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Middleware records request latency by matched route.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.RequestLatency.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler returns the scrape endpoint for the private registry.
func (m *Manager) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
