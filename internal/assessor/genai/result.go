package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"visa-workers/internal/assessment"
	"visa-workers/internal/models"
)

const (
	twinFallbackName = "Applicant"
	twinTraitCount   = 2
)

var riskLabels = []string{
	assessment.RiskFinances,
	assessment.RiskDocs,
	assessment.RiskTravelHistory,
	assessment.RiskPurpose,
}

// parseResult extracts the JSON object from the model text and normalizes it
// into the same contract the local engine honors. Risk labels are always
// rewritten to the fixed order; docs and traits must have the local shape.
func parseResult(text string, profile models.ApplicantProfile) (*models.AnalysisResult, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if err := normalize(&result, profile); err != nil {
		return nil, err
	}
	return &result, nil
}

func extractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in response", ErrInvalidResponse)
	}
	return s[start : end+1], nil
}

func normalize(r *models.AnalysisResult, profile models.ApplicantProfile) error {
	r.Score = clamp(r.Score)
	if !assessment.IsBand(r.Plain) {
		r.Plain = assessment.Band(r.Score)
	}
	if r.Reasons == nil {
		r.Reasons = []string{}
	}

	if len(r.Docs) != len(models.RequiredRoles) {
		return fmt.Errorf("%w: expected %d docs, got %d", ErrInvalidResponse, len(models.RequiredRoles), len(r.Docs))
	}
	if len(r.Countries) == 0 {
		return fmt.Errorf("%w: countries missing", ErrInvalidResponse)
	}
	for i := range r.Countries {
		r.Countries[i].Score = clamp(r.Countries[i].Score)
	}

	if len(r.Risk) != len(riskLabels) {
		return fmt.Errorf("%w: expected %d risk items, got %d", ErrInvalidResponse, len(riskLabels), len(r.Risk))
	}
	for i := range r.Risk {
		r.Risk[i].Label = riskLabels[i]
		r.Risk[i].Value = clamp(r.Risk[i].Value)
	}

	if len(r.Twin.Traits) != twinTraitCount {
		return fmt.Errorf("%w: expected %d twin traits, got %d", ErrInvalidResponse, twinTraitCount, len(r.Twin.Traits))
	}

	if strings.TrimSpace(r.Twin.Name) == "" {
		r.Twin.Name = strings.TrimSpace(profile.Name)
		if r.Twin.Name == "" {
			r.Twin.Name = twinFallbackName
		}
	}
	return nil
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
