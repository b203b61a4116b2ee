package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-centersport/wms-sub000/internal/domain"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
)

func TestRecorder_Movements(t *testing.T) {
	r := NewRecorder()
	r.MovementApplied(entity.MovementTypeENTRY)
	r.MovementApplied(entity.MovementTypeENTRY)
	r.MovementRejected(entity.MovementTypeEXIT, domain.ErrInsufficientStock)
	r.MovementRejected(entity.MovementTypeTRANSFER, fmt.Errorf("%w: misma ubicación", domain.ErrInvalidMovement))
	r.MovementRejected(entity.MovementTypeEXIT, fmt.Errorf("%w: ubicación L9", domain.ErrNotFound))
	r.MovementRejected(entity.MovementTypeEXIT, errors.New("conexión perdida"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.movements.WithLabelValues(entity.MovementTypeENTRY, ResultApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.movements.WithLabelValues(entity.MovementTypeEXIT, ResultInsufficientStock)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.movements.WithLabelValues(entity.MovementTypeTRANSFER, ResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.movements.WithLabelValues(entity.MovementTypeEXIT, ResultNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.movements.WithLabelValues(entity.MovementTypeEXIT, ResultError)))
}

func TestRecorder_Separation(t *testing.T) {
	r := NewRecorder()
	r.SeparationPlanned(8, 0)
	r.SeparationPlanned(8, 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.plans))
	assert.Equal(t, 16.0, testutil.ToFloat64(r.allocatedUnits))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.unmetLines))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.MovementApplied(entity.MovementTypeENTRY)
	r.ObserveRequest("POST", "/api/inventory/movements", 201, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), MetricMovementsTotal)
	assert.Contains(t, string(body), MetricHTTPRequestsDuration)
}
