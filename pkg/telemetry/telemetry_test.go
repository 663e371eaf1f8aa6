package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeterProvider_ServesCounters(t *testing.T) {
	// given
	metrics, err := NewMeterProvider("catalog-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = metrics.Provider.Shutdown(context.Background()) })

	counter, err := metrics.Provider.Meter("test").Int64Counter("products_created")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// when
	w := httptest.NewRecorder()
	metrics.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "products_created_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
