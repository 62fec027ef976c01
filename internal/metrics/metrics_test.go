package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAuth(t *testing.T) {
	m := New()
	m.RecordAuth(OpLogin, "ok")
	m.RecordAuth(OpLogin, "ok")
	m.RecordAuth(OpLogin, "unauthorized")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthOutcomes.WithLabelValues(OpLogin, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthOutcomes.WithLabelValues(OpLogin, "unauthorized")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAuth(OpRefresh, "ok")
		m.RecordCategoryFallback()
		m.RecordMailFailure()
	})
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.RecordCategoryFallback()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "marketplace_category_fallback_total 1")
}
