// Package metrics expone contadores Prometheus del núcleo de stock en /metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dev-centersport/wms-sub000/internal/application/inventory"
	"github.com/dev-centersport/wms-sub000/internal/domain"
)

// Nombres de métricas.
const (
	MetricMovementsTotal       = "wms_movements_total"
	MetricSeparationUnitsTotal = "wms_separation_allocated_units_total"
	MetricSeparationUnmetTotal = "wms_separation_unmet_lines_total"
	MetricSeparationPlansTotal = "wms_separation_plans_total"
	MetricHTTPRequestsDuration = "wms_http_request_duration_seconds"
)

// Resultados posibles de un movimiento.
const (
	ResultApplied           = "applied"
	ResultInvalid           = "invalid"
	ResultNotFound          = "not_found"
	ResultInsufficientStock = "insufficient_stock"
	ResultError             = "error"
)

// Recorder implementa inventory.Metrics con un registry propio.
type Recorder struct {
	registry        *prometheus.Registry
	movements       *prometheus.CounterVec
	allocatedUnits  prometheus.Counter
	unmetLines      prometheus.Counter
	plans           prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

var _ inventory.Metrics = (*Recorder)(nil)

// NewRecorder registra las métricas en un registry nuevo (más las de proceso y runtime de Go).
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	r := &Recorder{
		registry: registry,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricMovementsTotal,
			Help: "Movimientos procesados por tipo y resultado.",
		}, []string{"type", "result"}),
		allocatedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSeparationUnitsTotal,
			Help: "Unidades asignadas en planes de separación.",
		}),
		unmetLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSeparationUnmetTotal,
			Help: "Líneas de pedido sin stock asignado.",
		}),
		plans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSeparationPlansTotal,
			Help: "Planes de separación generados.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestsDuration,
			Help:    "Duración de las peticiones HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	registry.MustRegister(
		r.movements, r.allocatedUnits, r.unmetLines, r.plans, r.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// MovementApplied cuenta un movimiento aplicado.
func (r *Recorder) MovementApplied(movementType string) {
	r.movements.WithLabelValues(movementType, ResultApplied).Inc()
}

// MovementRejected cuenta un movimiento rechazado, clasificado por el tipo de error.
func (r *Recorder) MovementRejected(movementType string, err error) {
	r.movements.WithLabelValues(movementType, classify(err)).Inc()
}

// SeparationPlanned acumula unidades asignadas y líneas no atendidas.
func (r *Recorder) SeparationPlanned(allocatedUnits, unmetLines int) {
	r.plans.Inc()
	r.allocatedUnits.Add(float64(allocatedUnits))
	r.unmetLines.Add(float64(unmetLines))
}

// ObserveRequest registra la duración de una petición HTTP.
func (r *Recorder) ObserveRequest(method, route string, status int, d time.Duration) {
	r.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler devuelve el handler HTTP de exposición.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry expone el registry (tests).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func classify(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidMovement), errors.Is(err, domain.ErrInvalidInput):
		return ResultInvalid
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return ResultInsufficientStock
	default:
		return ResultError
	}
}
