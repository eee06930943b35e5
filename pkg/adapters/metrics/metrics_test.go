package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("services.sign", "ok", 20*time.Millisecond)
	m.ObserveOperation("services.sign", "ok", 10*time.Millisecond)
	m.ObserveOperation("services.sign", "already_resolved", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("services.sign", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("services.sign", "already_resolved")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.opLatency))
}

func TestObserveEvent(t *testing.T) {
	m := New()
	m.ObserveEvent(domain.EventSigned, nil)
	m.ObserveEvent(domain.EventSigned, errors.New("down"))
	m.ObserveEvent(domain.EventCompleted, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("signed", "delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("signed", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("completed", "delivered")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodPost, "/documents/{id}/sign", http.StatusOK, 5*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `docuprex_api_requests_total{method="POST",route="/documents/{id}/sign",status="200"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("op", "ok", time.Second)
	m.ObserveEvent(domain.EventSigned, nil)
	m.ObserveHTTP("GET", "/", 200, time.Second)
}
