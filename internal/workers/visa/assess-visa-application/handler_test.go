package assessvisaapplication

import (
	"context"
	"testing"
	"time"

	"visa-workers/internal/assessor"
	"visa-workers/internal/common/camunda/camundatest"
	"visa-workers/internal/common/config"
	commonerrors "visa-workers/internal/common/errors"
	"visa-workers/internal/common/logger"
	"visa-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
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

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createLocalHandler(t *testing.T) *Handler {
	svc, err := assessor.NewService(assessor.Options{Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return NewHandler(createTestConfig(), svc, logger.NewTestLogger(t))
}

func document(name string) map[string]interface{} {
	return map[string]interface{}{"originalName": name, "sizeBytes": 200 * 1024}
}

func createValidVariables() map[string]interface{} {
	return map[string]interface{}{
		"profile": map[string]interface{}{
			"name":      "Asha",
			"funds":     "60000",
			"education": "Bachelors",
			"past_visa": "None",
			"purpose":   "Study",
		},
		"documents": map[string]interface{}{
			"passport": document("passport.pdf"),
			"bank":     document("bank-statement.png"),
			"offer":    document("offer.jpg"),
		},
	}
}

// ==========================
// Handle
// ==========================

func TestHandle_CompletesJob(t *testing.T) {
	h := createLocalHandler(t)
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(1, TaskType, 3, createValidVariables()))

	require.Len(t, client.Completed(), 1)
	assert.Empty(t, client.Failed())
	assert.Empty(t, client.Thrown())

	vars, err := camundatest.DecodeVariables(client.Completed()[0].Variables)
	require.NoError(t, err)

	assert.NotEmpty(t, vars["assessmentId"])
	assert.Equal(t, float64(95), vars["visaScore"])
	assert.Equal(t, models.BandHighlyLikely, vars["visaBand"])
	assert.Equal(t, "local", vars["assessedBy"])

	assessment, ok := vars["visaAssessment"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, assessment["docs"], 3)
	assert.Len(t, assessment["risk"], 4)
	assert.Len(t, assessment["countries"], 3)
}

func TestHandle_ProfileAsJSONString(t *testing.T) {
	h := createLocalHandler(t)
	client := camundatest.NewJobClient()

	vars := createValidVariables()
	vars["profile"] = `{"name":"Asha","funds":"200000","past_visa":"3+"}`

	h.Handle(client, camundatest.NewJob(2, TaskType, 3, vars))

	require.Len(t, client.Completed(), 1)
	out, err := camundatest.DecodeVariables(client.Completed()[0].Variables)
	require.NoError(t, err)
	assert.Equal(t, float64(100), out["visaScore"])
}

func TestHandle_BusinessErrorsThrowBPMNError(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(vars map[string]interface{})
		wantCode string
	}{
		{
			name: "missing document",
			mutate: func(vars map[string]interface{}) {
				delete(vars["documents"].(map[string]interface{}), "offer")
			},
			wantCode: "VISA_DOCUMENTS_MISSING",
		},
		{
			name: "malformed profile",
			mutate: func(vars map[string]interface{}) {
				vars["profile"] = "{not json"
			},
			wantCode: "VISA_PROFILE_MALFORMED",
		},
		{
			name: "documents variable absent",
			mutate: func(vars map[string]interface{}) {
				delete(vars, "documents")
			},
			wantCode: "VISA_INPUT_INVALID",
		},
		{
			name: "document size of wrong type",
			mutate: func(vars map[string]interface{}) {
				vars["documents"].(map[string]interface{})["bank"] = map[string]interface{}{"originalName": "b.pdf", "sizeBytes": "big"}
			},
			wantCode: "VISA_INPUT_INVALID",
		},
		{
			name: "unknown assessor",
			mutate: func(vars map[string]interface{}) {
				vars["assessor"] = "oracle"
			},
			wantCode: "VISA_INPUT_INVALID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createLocalHandler(t)
			client := camundatest.NewJobClient()

			vars := createValidVariables()
			tt.mutate(vars)
			h.Handle(client, camundatest.NewJob(3, TaskType, 3, vars))

			require.Len(t, client.Thrown(), 1)
			assert.Equal(t, tt.wantCode, client.Thrown()[0].ErrorCode)
			assert.Empty(t, client.Completed())
			assert.Empty(t, client.Failed())
		})
	}
}

func TestHandle_InvalidVariablesJSON(t *testing.T) {
	h := createLocalHandler(t)
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(4, TaskType, 3, "{broken"))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "VISA_INPUT_INVALID", client.Thrown()[0].ErrorCode)
}

func TestHandle_AssessorTimeoutFailsWithRetries(t *testing.T) {
	svc := new(MockService)
	svc.On("Assess", mock.Anything, mock.Anything).
		Return(nil, commonerrors.NewAssessorTimeoutError("genai", context.DeadlineExceeded)).
		Twice()

	h := NewHandler(createTestConfig(), svc, logger.NewTestLogger(t))

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(5, TaskType, 3, createValidVariables()))

	require.Len(t, client.Failed(), 1)
	assert.Equal(t, int32(2), client.Failed()[0].Retries)
	assert.Empty(t, client.Thrown())

	// Last retry: the error is thrown instead of failing again.
	client = camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(6, TaskType, 1, createValidVariables()))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "VISA_ASSESSMENT_TIMEOUT", client.Thrown()[0].ErrorCode)
	svc.AssertExpectations(t)
}

// ==========================
// Execute
// ==========================

func TestExecute_PassesAssessorThrough(t *testing.T) {
	svc := new(MockService)
	result := &models.AnalysisResult{Score: 42, Plain: models.BandUnlikely}
	svc.On("Assess", mock.Anything, mock.MatchedBy(func(in models.AnalysisInput) bool {
		return in.Assessor == "genai" && in.Documents.Passport != nil
	})).Return(&assessor.Assessment{ID: "a-1", Assessor: "local", Fallback: true, Result: result}, nil)

	h := NewHandler(createTestConfig(), svc, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Assessor:  "genai",
		Documents: models.DocumentSlots{Passport: &models.DocumentUpload{OriginalName: "p.pdf", SizeBytes: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "a-1", out.AssessmentID)
	assert.Equal(t, 42, out.VisaScore)
	assert.Equal(t, models.BandUnlikely, out.VisaBand)
	assert.True(t, out.Fallback)
	assert.Same(t, result, out.VisaAssessment)
}

func TestNewConfig(t *testing.T) {
	assert.Equal(t, 30*time.Second, NewConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 2*time.Second, NewConfig(config.WorkerConfig{Timeout: 2000}).Timeout)
}
