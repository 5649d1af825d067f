// Package assessor selects and runs an assessment strategy. The local strategy
// is the deterministic engine in internal/assessment; remote strategies live in
// subpackages and must honor the same result contract.
package assessor

import (
	"context"
	"errors"

	"visa-workers/internal/assessment"
	"visa-workers/internal/models"
)

const (
	NameLocal = "local"
	NameGenAI = "genai"
)

// Errors returned by remote assessors. Service maps them to error codes.
var (
	ErrTimeout         = errors.New("ASSESSOR_TIMEOUT")
	ErrFailed          = errors.New("ASSESSOR_FAILED")
	ErrInvalidResponse = errors.New("ASSESSOR_RESPONSE_INVALID")
)

type Assessor interface {
	Name() string
	Assess(ctx context.Context, input models.AnalysisInput) (*models.AnalysisResult, error)
}

// Local runs the rule-based engine in process.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (*Local) Name() string { return NameLocal }

// Assess checks the required documents before decoding the profile, so a
// request with both problems reports the missing documents.
func (*Local) Assess(ctx context.Context, input models.AnalysisInput) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := assessment.RequiredDocuments(input.Documents); err != nil {
		return nil, err
	}

	profile, err := assessment.ParseProfile(input.Profile)
	if err != nil {
		return nil, err
	}

	return assessment.Analyze(models.AnalysisRequest{
		Profile:   profile,
		Documents: input.Documents,
	})
}
