package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupExportsRecordedOperations(t *testing.T) {
	m, handler, err := Setup("kvk-test")
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperation(ctx, "get_string", 2*time.Millisecond, nil)
	m.RecordOperation(ctx, "range_list", time.Millisecond, errors.New("WRONGTYPE"))
	m.RecordHTTPRequest(ctx, http.MethodPost, "/v1/jsonrpc", http.StatusOK, 5*time.Millisecond)
	m.IncrementSessions(ctx)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, "kvk_operations_total")
	assert.Contains(t, text, `op="get_string"`)
	assert.Contains(t, text, "kvk_operation_errors_total")
	assert.Contains(t, text, `op="range_list"`)
	assert.Contains(t, text, "kvk_http_requests_total")
	assert.Contains(t, text, "kvk_active_sessions")
}

func TestSetupUsesIsolatedRegistries(t *testing.T) {
	// Two setups in one process must not collide on registration
	_, _, err := Setup("first")
	require.NoError(t, err)
	_, _, err = Setup("second")
	require.NoError(t, err)
}
