package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pidimsmart/internal/dataset"
	"pidimsmart/internal/infrastructure"
	"pidimsmart/internal/reports"
	"pidimsmart/internal/shared/testutil"
	"pidimsmart/internal/source"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got), w.Body.String())
	return got
}

func TestErrorHandler_HandleError(t *testing.T) {
	upstream := &source.FetchError{Source: "csv", StatusCode: http.StatusNotFound}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "missing column",
			err:        fmt.Errorf("loan report: %w", &dataset.MissingColumnError{Fields: []string{"date"}}),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeMissingColumn,
			wantCode:   CodeMissingColumn,
		},
		{
			name:       "upstream fetch wrapped in app error",
			err:        NewNetworkError("fetch dataset", upstream),
			wantStatus: http.StatusBadGateway,
			wantType:   TypeUpstreamFetch,
			wantCode:   CodeUpstreamFetchFailed,
		},
		{
			name:       "empty dataset",
			err:        dataset.ErrEmptyDataset,
			wantStatus: http.StatusBadGateway,
			wantType:   TypeUpstreamFetch,
			wantCode:   CodeUpstreamFetchFailed,
		},
		{
			name:       "invalid month",
			err:        fmt.Errorf("%w: %q", reports.ErrInvalidMonth, "2024-13"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   CodeValidationFailed,
		},
		{
			name:       "export failure",
			err:        NewExportError("xlsx", errors.New("write failed")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExport,
			wantCode:   CodeExportFailed,
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("fixed reports: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error passes through",
			err:        ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
			wantCode:   CodeRateLimitExceeded,
		},
		{
			name:       "unknown error",
			err:        errors.New("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/reports/fixed", nil)
			req = req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-1"))
			w := httptest.NewRecorder()

			h.HandleError(w, req, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			got := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, got["type"])
			assert.Equal(t, "/reports/fixed", got["instance"])
			assert.Equal(t, "trace-1", got["trace_id"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, got["error_code"])
			}
			assert.NotContains(t, got, "stack")
		})
	}
}

func TestErrorHandler_MissingColumnDetails(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	req := httptest.NewRequest(http.MethodGet, "/branch-disbursement?month=2024-01", nil)
	w := httptest.NewRecorder()
	h.HandleError(w, req, &dataset.MissingColumnError{Fields: []string{"date", "disbursement"}})

	got := decodeProblem(t, w)
	details, ok := got["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"date", "disbursement"}, details["fields"])
}

func TestErrorHandler_UpstreamStatus(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	req := httptest.NewRequest(http.MethodGet, "/reports/fixed", nil)
	w := httptest.NewRecorder()
	err := &source.FetchError{Source: "csv", StatusCode: http.StatusForbidden}
	h.HandleError(w, req, err)

	got := decodeProblem(t, w)
	assert.Equal(t, float64(http.StatusForbidden), got["upstream_status"])
	assert.Equal(t, err.Error(), got["detail"])
	testutil.AssertLogContains(t, handler, slog.LevelError, "request failed")
}

func TestErrorHandler_ClientErrorsLogAtWarn(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	req := httptest.NewRequest(http.MethodGet, "/branch-disbursement", nil)
	h.HandleError(httptest.NewRecorder(), req, reports.ErrInvalidMonth)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "request rejected")
	testutil.AssertNoErrors(t, handler)
}

func TestErrorHandler_NilErrorWritesNothing(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Empty(t, w.Body.String())
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("x"))

	assert.Contains(t, decodeProblem(t, w), "stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	h.HandlePanic(w, httptest.NewRequest(http.MethodPost, "/tasks/refresh", nil), "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	got := decodeProblem(t, w)
	assert.Equal(t, TypeInternal, got["type"])
	assert.NotContains(t, got, "panic")
	testutil.AssertLogContains(t, handler, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/reports/fixed", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, decodeProblem(t, w)["detail"], "DELETE")
}
