package assessor

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	commonerrors "visa-workers/internal/common/errors"
	"visa-workers/internal/common/logger"
	"visa-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Assessor
// ==========================

type MockAssessor struct {
	mock.Mock
	name string
}

func (m *MockAssessor) Name() string { return m.name }

func (m *MockAssessor) Assess(ctx context.Context, input models.AnalysisInput) (*models.AnalysisResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func upload(name string, kb int64) *models.DocumentUpload {
	return &models.DocumentUpload{OriginalName: name, SizeBytes: kb * 1024}
}

func validInput() models.AnalysisInput {
	return models.AnalysisInput{
		Profile: json.RawMessage(`{"name":"Asha","funds":200000,"education":"Masters","past_visa":"1-2","purpose":"Study"}`),
		Documents: models.DocumentSlots{
			Passport: upload("passport.pdf", 200),
			Bank:     upload("bank.pdf", 200),
			Offer:    upload("offer.pdf", 200),
		},
	}
}

func newService(t *testing.T, opts Options, assessors ...Assessor) *Service {
	opts.Logger = logger.NewTestLogger(t)
	s, err := NewService(opts, assessors...)
	require.NoError(t, err)
	return s
}

// ==========================
// Construction
// ==========================

func TestNewService_RegistersLocal(t *testing.T) {
	s := newService(t, Options{})
	assert.Equal(t, []string{NameLocal}, s.Names())
	assert.Equal(t, NameLocal, s.Default())
}

func TestNewService_UnknownDefault(t *testing.T) {
	_, err := NewService(Options{Default: NameGenAI})
	require.Error(t, err)
}

func TestNewService_DefaultIsCaseInsensitive(t *testing.T) {
	remote := &MockAssessor{name: NameGenAI}
	s := newService(t, Options{Default: " GenAI "}, remote)
	assert.Equal(t, NameGenAI, s.Default())
	assert.Equal(t, []string{NameGenAI, NameLocal}, s.Names())
}

// ==========================
// Assess
// ==========================

func TestAssess_Local(t *testing.T) {
	s := newService(t, Options{})

	got, err := s.Assess(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, NameLocal, got.Assessor)
	assert.False(t, got.Fallback)
	assert.Equal(t, 100, got.Result.Score)
	assert.Equal(t, models.BandHighlyLikely, got.Result.Plain)
}

func TestAssess_IDsAreUnique(t *testing.T) {
	s := newService(t, Options{})

	a, err := s.Assess(context.Background(), validInput())
	require.NoError(t, err)
	b, err := s.Assess(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Result, b.Result)
}

func TestAssess_UnknownAssessor(t *testing.T) {
	s := newService(t, Options{})

	input := validInput()
	input.Assessor = "oracle"

	_, err := s.Assess(context.Background(), input)
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeUnknownAssessor, stdErr.Code)
}

func TestAssess_MissingDocuments(t *testing.T) {
	s := newService(t, Options{})

	input := validInput()
	input.Documents.Bank = nil
	input.Documents.Offer = nil

	_, err := s.Assess(context.Background(), input)
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeDocumentsMissing, stdErr.Code)
	assert.Equal(t, []string{"bank", "offer"}, stdErr.Metadata["missingDocuments"])
	assert.NotEmpty(t, stdErr.Metadata["assessmentId"])
}

func TestAssess_RemoteSelectedByRequest(t *testing.T) {
	want := &models.AnalysisResult{Score: 61, Plain: models.BandLikely}
	remote := &MockAssessor{name: NameGenAI}
	remote.On("Assess", mock.Anything, mock.Anything).Return(want, nil).Once()

	s := newService(t, Options{}, remote)

	input := validInput()
	input.Assessor = "genai"

	got, err := s.Assess(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, NameGenAI, got.Assessor)
	assert.Same(t, want, got.Result)
	remote.AssertExpectations(t)
}

func TestAssess_Fallback(t *testing.T) {
	tests := []struct {
		name         string
		fallback     bool
		remoteErr    error
		wantFallback bool
		wantCode     commonerrors.ErrorCode
	}{
		{
			name:         "timeout falls back",
			fallback:     true,
			remoteErr:    fmt.Errorf("%w: slow", ErrTimeout),
			wantFallback: true,
		},
		{
			name:         "failure falls back",
			fallback:     true,
			remoteErr:    fmt.Errorf("%w: 503", ErrFailed),
			wantFallback: true,
		},
		{
			name:      "invalid response does not fall back",
			fallback:  true,
			remoteErr: fmt.Errorf("%w: garbage", ErrInvalidResponse),
			wantCode:  commonerrors.ErrCodeAssessorResponseInvalid,
		},
		{
			name:      "fallback disabled",
			fallback:  false,
			remoteErr: ErrTimeout,
			wantCode:  commonerrors.ErrCodeAssessorTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &MockAssessor{name: NameGenAI}
			remote.On("Assess", mock.Anything, mock.Anything).Return(nil, tt.remoteErr).Once()

			s := newService(t, Options{Default: NameGenAI, FallbackToLocal: tt.fallback}, remote)

			got, err := s.Assess(context.Background(), validInput())
			if tt.wantFallback {
				require.NoError(t, err)
				assert.True(t, got.Fallback)
				assert.Equal(t, NameLocal, got.Assessor)
				assert.Equal(t, 100, got.Result.Score)
			} else {
				stdErr, ok := commonerrors.AsStandardError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, stdErr.Code)
			}
			remote.AssertExpectations(t)
		})
	}
}

func TestAssess_CanceledContext(t *testing.T) {
	s := newService(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Assess(ctx, validInput())
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeAssessorFailed, stdErr.Code)
}

// ==========================
// ValidateDocuments
// ==========================

func TestValidateDocuments(t *testing.T) {
	s := newService(t, Options{})

	slots := validInput().Documents
	slots.Bank = upload("bank.exe", 200)

	docs, err := s.ValidateDocuments(slots)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.True(t, docs[0].OK)
	assert.False(t, docs[1].OK)
	for _, d := range docs {
		assert.Zero(t, d.ScoreImpact)
	}
}

func TestValidateDocuments_Missing(t *testing.T) {
	s := newService(t, Options{})

	_, err := s.ValidateDocuments(models.DocumentSlots{})
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeDocumentsMissing, stdErr.Code)
}
