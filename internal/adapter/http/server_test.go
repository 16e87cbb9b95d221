package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/weather-bigtable-etl/internal/adapter/http"
	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
)

type mockJob struct {
	err    error
	report *domain.Report
}

func (m *mockJob) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockJob) LastReport() (domain.Report, bool) {
	if m.report == nil {
		return domain.Report{}, false
	}
	return *m.report, true
}

func newTestServer(job *mockJob) *httpadapter.Server {
	return httpadapter.NewServer(":0", job, slog.Default())
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(&mockJob{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(&mockJob{}), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(&mockJob{err: errors.New("load in progress")}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(&mockJob{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestReportReturns404BeforeFirstRun(t *testing.T) {
	rec := serve(newTestServer(&mockJob{}), "/report")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportReturnsLastReport(t *testing.T) {
	job := &mockJob{report: &domain.Report{RunID: "run-1", PortlandMaxWindSpeed: 21}}
	rec := serve(newTestServer(job), "/report")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body domain.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, 21, body.PortlandMaxWindSpeed)
}
