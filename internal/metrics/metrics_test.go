package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTilesTotal(t *testing.T) {
	before := testutil.ToFloat64(TilesTotal.WithLabelValues(TileFailed))
	TilesTotal.WithLabelValues(TileFailed).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(TilesTotal.WithLabelValues(TileFailed)))
}

func TestPush(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	RoadFeatures.Set(42)
	err := Push(context.Background(), server.URL, "download-roads-tiled", "run-1")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasPrefix(path, "/metrics/job/download-roads-tiled"), path)
	assert.Contains(t, path, "run_id/run-1")
	assert.NotEmpty(t, body)
}
