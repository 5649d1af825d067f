package assessment

import "visa-workers/internal/models"

const (
	RiskFinances      = "Finances"
	RiskDocs          = "Docs"
	RiskTravelHistory = "Travel History"
	RiskPurpose       = "Purpose"
)

// EvaluateRisk derives the four risk buckets. Finances follows the final
// score, not the declared funds.
func EvaluateRisk(score int, docs []models.DocumentAssessment, profile models.ApplicantProfile) []models.RiskItem {
	return []models.RiskItem{
		{Label: RiskFinances, Value: financeRisk(score)},
		{Label: RiskDocs, Value: documentRisk(countFailed(docs))},
		{Label: RiskTravelHistory, Value: travelRisk(profile.PastVisa)},
		{Label: RiskPurpose, Value: purposeRisk(profile.Purpose)},
	}
}

func financeRisk(score int) int {
	switch {
	case score >= 80:
		return 20
	case score >= 60:
		return 35
	default:
		return 60
	}
}

func documentRisk(failed int) int {
	switch {
	case failed == 0:
		return 25
	case failed == 1:
		return 50
	default:
		return 70
	}
}

func travelRisk(pastVisa string) int {
	if pastVisa == models.PastVisaNone {
		return 60
	}
	return 25
}

func purposeRisk(purpose string) int {
	if purpose == models.PurposeStudy || purpose == models.PurposeWork {
		return 20
	}
	return 40
}
