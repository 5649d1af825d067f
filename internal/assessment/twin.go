package assessment

import (
	"strings"

	"visa-workers/internal/models"
)

const (
	twinConfidence   = 80
	twinFallbackName = "Applicant"
	lowRiskTwinScore = 70
	TraitLowTravel   = "Low travel history"
	TraitExperienced = "Experienced traveller"
	TraitLowRisk     = "Low risk profile"
	TraitMediumRisk  = "Medium risk profile"
)

// SummarizeTwin builds the short "digital twin" record for the applicant.
func SummarizeTwin(profile models.ApplicantProfile, score int) models.TwinSummary {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = twinFallbackName
	}

	travel := TraitExperienced
	if profile.PastVisa == models.PastVisaNone {
		travel = TraitLowTravel
	}

	risk := TraitMediumRisk
	if score >= lowRiskTwinScore {
		risk = TraitLowRisk
	}

	return models.TwinSummary{
		Name:       name,
		Confidence: twinConfidence,
		Traits:     []string{travel, risk},
	}
}
