package assessment

import (
	"errors"
	"fmt"
	"strings"

	"visa-workers/internal/models"
)

// ErrMissingDocuments is returned when a required document slot is empty.
var ErrMissingDocuments = errors.New("required documents missing")

// MissingDocumentsError names the empty slots. It matches ErrMissingDocuments with errors.Is.
type MissingDocumentsError struct {
	Roles []models.DocumentRole
}

func (e *MissingDocumentsError) Error() string {
	names := make([]string, len(e.Roles))
	for i, r := range e.Roles {
		names[i] = string(r)
	}
	return fmt.Sprintf("%s: %s", ErrMissingDocuments.Error(), strings.Join(names, ", "))
}

func (e *MissingDocumentsError) Unwrap() error { return ErrMissingDocuments }

// RequiredDocuments binds every required slot to its role, in passport, bank,
// offer order. It fails if any slot is empty.
func RequiredDocuments(slots models.DocumentSlots) ([]models.DocumentDescriptor, error) {
	descriptors := make([]models.DocumentDescriptor, 0, len(models.RequiredRoles))
	var missing []models.DocumentRole

	for _, role := range models.RequiredRoles {
		upload := slots.Slot(role)
		if upload == nil {
			missing = append(missing, role)
			continue
		}
		descriptors = append(descriptors, models.DocumentDescriptor{
			Role:         role,
			OriginalName: upload.OriginalName,
			SizeBytes:    upload.SizeBytes,
		})
	}

	if len(missing) > 0 {
		return nil, &MissingDocumentsError{Roles: missing}
	}
	return descriptors, nil
}

// ValidateDocuments runs the document validator over all required slots.
// Score impacts are kept so callers can aggregate them.
func ValidateDocuments(slots models.DocumentSlots) ([]models.DocumentAssessment, error) {
	descriptors, err := RequiredDocuments(slots)
	if err != nil {
		return nil, err
	}

	docs := make([]models.DocumentAssessment, len(descriptors))
	for i, d := range descriptors {
		docs[i] = ValidateDocument(d)
	}
	return docs, nil
}

// Analyze runs the full local assessment. No partial result is returned on error.
func Analyze(req models.AnalysisRequest) (*models.AnalysisResult, error) {
	docs, err := ValidateDocuments(req.Documents)
	if err != nil {
		return nil, err
	}

	scored := AggregateScore(req.Profile, docs)

	return &models.AnalysisResult{
		Score:     scored.Score,
		Plain:     scored.Plain,
		Reasons:   scored.Reasons,
		Docs:      StripImpacts(docs),
		Twin:      SummarizeTwin(req.Profile, scored.Score),
		Countries: CompareCountries(scored.Score),
		Risk:      EvaluateRisk(scored.Score, docs, req.Profile),
	}, nil
}

// StripImpacts returns a copy of docs with the internal score impact cleared.
func StripImpacts(docs []models.DocumentAssessment) []models.DocumentAssessment {
	out := make([]models.DocumentAssessment, len(docs))
	for i, d := range docs {
		d.ScoreImpact = 0
		out[i] = d
	}
	return out
}
