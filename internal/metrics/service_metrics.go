package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics содержит метрики HTTP-слоя и доменных операций.
// Все методы безопасны для nil-получателя, поэтому метрики можно не передавать в тестах.
type ServiceMetrics struct {
	// HTTP
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	// Меню и заказы
	menuMutations  *prometheus.CounterVec
	ordersCreated  prometheus.Counter
	statusUpdates  *prometheus.CounterVec
	timelineEvents prometheus.Counter

	// Идемпотентность
	idempotencyReplays *prometheus.CounterVec
}

// NewServiceMetrics регистрирует метрики в DefaultRegisterer.
func NewServiceMetrics() *ServiceMetrics {
	return NewServiceMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewServiceMetricsWithRegisterer регистрирует метрики в указанном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewServiceMetricsWithRegisterer(registerer prometheus.Registerer) *ServiceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ServiceMetrics{
		httpRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fds_http_requests_total",
			Help: "Total number of HTTP requests grouped by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "fds_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"}),
		menuMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fds_menu_mutations_total",
			Help: "Total number of menu item mutations grouped by operation and outcome",
		}, []string{"operation", "outcome"}),
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fds_orders_created_total",
			Help: "Total number of orders created",
		}),
		statusUpdates: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fds_order_status_updates_total",
			Help: "Total number of order status update attempts grouped by result",
		}, []string{"result"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fds_timeline_events_total",
			Help: "Total number of order timeline events recorded",
		}),
		idempotencyReplays: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fds_idempotency_requests_total",
			Help: "Total number of requests carrying an idempotency key grouped by result",
		}, []string{"result"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordHTTPRequest учитывает завершённый HTTP-запрос. route: шаблон пути, не сырой URL.
func (m *ServiceMetrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordMenuMutation учитывает результат add/update/remove позиции меню.
func (m *ServiceMetrics) RecordMenuMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.menuMutations.WithLabelValues(operation, outcome).Inc()
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *ServiceMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordStatusUpdate учитывает попытку смены статуса: updated, noop, unauthorized, rejected.
func (m *ServiceMetrics) RecordStatusUpdate(result string) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(result).Inc()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *ServiceMetrics) RecordTimelineEvent() {
	if m == nil {
		return
	}
	m.timelineEvents.Inc()
}

// RecordIdempotency учитывает запрос с Idempotency-Key: fresh, replayed, conflict, in_flight.
func (m *ServiceMetrics) RecordIdempotency(result string) {
	if m == nil {
		return
	}
	m.idempotencyReplays.WithLabelValues(result).Inc()
}
