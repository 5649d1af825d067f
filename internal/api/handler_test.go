package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"visa-workers/internal/assessor"
	commonerrors "visa-workers/internal/common/errors"
	"visa-workers/internal/common/logger"
	"visa-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service
// ==========================

type MockService struct {
	mock.Mock
}

func (m *MockService) Assess(ctx context.Context, input models.AnalysisInput) (*assessor.Assessment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assessor.Assessment), args.Error(1)
}

func (m *MockService) ValidateDocuments(slots models.DocumentSlots) ([]models.DocumentAssessment, error) {
	args := m.Called(slots)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DocumentAssessment), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

const validBody = `{
  "profile": {"name": "Asha", "funds": "200000", "education": "Masters", "past_visa": "3+", "purpose": "Work"},
  "documents": {
    "passport": {"originalName": "passport.pdf", "sizeBytes": 204800},
    "bank":     {"originalName": "bank.pdf", "sizeBytes": 204800},
    "offer":    {"originalName": "offer.pdf", "sizeBytes": 204800}
  }
}`

func newLocalRouter(t *testing.T) http.Handler {
	svc, err := assessor.NewService(assessor.Options{Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return NewRouter(NewHandler(svc, logger.NewTestLogger(t), 0), nil)
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ==========================
// Analyze
// ==========================

func TestAnalyze_Success(t *testing.T) {
	rec := post(t, newLocalRouter(t), "/api/v1/visa/analyze", validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(AssessmentIDHeader))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, key := range []string{"score", "plain", "reasons", "docs", "twin", "countries", "risk"} {
		assert.Contains(t, body, key)
	}

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, models.BandHighlyLikely, result.Plain)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing documents",
			body:       `{"profile": {"name": "Asha"}, "documents": {"passport": {"originalName": "p.pdf", "sizeBytes": 40000}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "DOCUMENTS_MISSING",
		},
		{
			name:       "malformed profile string",
			body:       strings.Replace(validBody, `"profile": {"name": "Asha", "funds": "200000", "education": "Masters", "past_visa": "3+", "purpose": "Work"}`, `"profile": "{oops"`, 1),
			wantStatus: http.StatusBadRequest,
			wantCode:   "PROFILE_MALFORMED",
		},
		{
			name:       "body is not JSON",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INPUT_PARSING_FAILED",
		},
		{
			name:       "size is a string",
			body:       `{"documents": {"passport": {"originalName": "p.pdf", "sizeBytes": "big"}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INPUT_PARSING_FAILED",
		},
		{
			name:       "unknown assessor",
			body:       strings.Replace(validBody, `"profile"`, `"assessor": "oracle", "profile"`, 1),
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNKNOWN_ASSESSOR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newLocalRouter(t), "/api/v1/visa/analyze", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestAnalyze_AssessorErrorsMapToGatewayStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"timeout", commonerrors.NewAssessorTimeoutError("genai", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"failed", commonerrors.NewAssessorFailedError("genai", errors.New("status 503")), http.StatusBadGateway},
		{"invalid", commonerrors.NewAssessorResponseInvalidError("genai", errors.New("no json")), http.StatusBadGateway},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Assess", mock.Anything, mock.Anything).Return(nil, tt.err)

			router := NewRouter(NewHandler(svc, logger.NewTestLogger(t), 0), nil)
			rec := post(t, router, "/api/v1/visa/analyze", validBody)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAnalyze_InternalDetailsHidden(t *testing.T) {
	svc := new(MockService)
	svc.On("Assess", mock.Anything, mock.Anything).Return(nil, errors.New("db password is hunter2"))

	rec := post(t, NewRouter(NewHandler(svc, logger.NewTestLogger(t), 0), nil), "/api/v1/visa/analyze", validBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	svc := new(MockService)
	router := NewRouter(NewHandler(svc, logger.NewTestLogger(t), 64), nil)

	rec := post(t, router, "/api/v1/visa/analyze", validBody)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "INPUT_PARSING_FAILED", decodeError(t, rec).Code)
	svc.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything)
}

// ==========================
// Validate documents
// ==========================

func TestValidateDocuments(t *testing.T) {
	body := `{"documents": {
	  "passport": {"originalName": "passport.gif", "sizeBytes": 204800},
	  "bank":     {"originalName": "bank.pdf", "sizeBytes": 204800},
	  "offer":    {"originalName": "offer.pdf", "sizeBytes": 204800}
	}}`

	rec := post(t, newLocalRouter(t), "/api/v1/visa/documents/validate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateDocumentsResponse
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&resp))
	assert.False(t, resp.DocumentsValid)
	require.Len(t, resp.Docs, 3)
	assert.Equal(t, "unsupported file type", resp.Docs[0].Note)
	assert.True(t, resp.Docs[1].OK)
}

func TestValidateDocuments_Missing(t *testing.T) {
	rec := post(t, newLocalRouter(t), "/api/v1/visa/documents/validate", `{"documents": {}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DOCUMENTS_MISSING", decodeError(t, rec).Code)
}
