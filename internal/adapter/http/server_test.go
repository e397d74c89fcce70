package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/http"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockProgress struct {
	progress pipeline.Progress
}

func (m mockProgress) Progress() pipeline.Progress { return m.progress }

func newTestServer(readyErrs ...error) *httpadapter.Server {
	checkers := make([]sharedobs.ReadinessChecker, len(readyErrs))
	for i, err := range readyErrs {
		checkers[i] = &mockReadiness{err: err}
	}
	progress := mockProgress{progress: pipeline.Progress{Running: true, Eligible: 10, Enriched: 4}}
	return httpadapter.NewServer(":0", progress, slog.Default(), checkers...)
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenAnyCheckerNotReady(t *testing.T) {
	rec := serve(newTestServer(nil, fmt.Errorf("database locked")), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusReportsProgress(t *testing.T) {
	rec := serve(newTestServer(nil), "/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body pipeline.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, pipeline.Progress{Running: true, Eligible: 10, Enriched: 4}, body)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
