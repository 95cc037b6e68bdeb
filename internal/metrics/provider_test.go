package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewProvider(t *testing.T) {
	t.Run("Success_CreateProvider", func(t *testing.T) {
		provider, err := NewProvider("zoe_security")

		require.NoError(t, err)
		assert.NotNil(t, provider.MeterProvider())
		assert.NotNil(t, provider.exporter)
		assert.NotNil(t, provider.registry)
	})

	t.Run("Success_ExposesRuntimeCollectors", func(t *testing.T) {
		provider, err := NewProvider("zoe_security")
		require.NoError(t, err)

		output := scrape(t, provider)
		assert.Contains(t, output, "go_goroutines")
	})

	t.Run("Success_IndependentRegistries", func(t *testing.T) {
		_, err := NewProvider("zoe_security")
		require.NoError(t, err)
		_, err = NewProvider("zoe_security")
		assert.NoError(t, err)
	})
}

func TestProvider_Shutdown(t *testing.T) {
	t.Run("Success_ShutdownProvider", func(t *testing.T) {
		provider, err := NewProvider("zoe_security")
		require.NoError(t, err)

		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	t.Run("Success_ShutdownNilProvider", func(t *testing.T) {
		provider := &Provider{}
		assert.NoError(t, provider.Shutdown(context.Background()))
	})
}
