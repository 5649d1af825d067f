package assessment

import "visa-workers/internal/models"

const (
	baseScore = 50

	highFundsThreshold = 150000
	lowFundsThreshold  = 50000
)

const (
	ReasonStrongFunds       = "Strong financial capacity"
	ReasonLowFunds          = "Low declared funds – risk on finances"
	ReasonModerateFunds     = "Funds appear moderate for stay"
	ReasonAdvancedEducation = "Advanced education supports purpose"
	ReasonGoodTravel        = "Good travel history – positive signal"
	ReasonNoTravel          = "No prior visa history – neutral or slightly risky"
	ReasonWeakDocuments     = "One or more documents look weak or invalid"
)

// AggregateScore combines document impacts with profile adjustments into a
// clamped score, its band and the ordered list of reasons.
func AggregateScore(profile models.ApplicantProfile, docs []models.DocumentAssessment) models.ScoreResult {
	score := baseScore
	for _, d := range docs {
		score += d.ScoreImpact
	}

	reasons := make([]string, 0, 4)

	switch {
	case profile.Funds > highFundsThreshold:
		score += 10
		reasons = append(reasons, ReasonStrongFunds)
	case profile.Funds < lowFundsThreshold:
		score -= 10
		reasons = append(reasons, ReasonLowFunds)
	default:
		reasons = append(reasons, ReasonModerateFunds)
	}

	if hasAdvancedEducation(profile) {
		score += 5
		reasons = append(reasons, ReasonAdvancedEducation)
	}

	switch profile.PastVisa {
	case models.PastVisaThreeUp:
		score += 5
		reasons = append(reasons, ReasonGoodTravel)
	case models.PastVisaNone:
		score -= 5
		reasons = append(reasons, ReasonNoTravel)
	}

	if countFailed(docs) > 0 {
		reasons = append(reasons, ReasonWeakDocuments)
	}

	score = clamp(score, 0, 100)

	return models.ScoreResult{
		Score:   score,
		Plain:   Band(score),
		Reasons: reasons,
	}
}

// Band maps a score to its qualitative label.
func Band(score int) string {
	switch {
	case score >= 75:
		return models.BandHighlyLikely
	case score >= 60:
		return models.BandLikely
	case score >= 45:
		return models.BandBorderline
	default:
		return models.BandUnlikely
	}
}

// IsBand reports whether s is one of the four band labels.
func IsBand(s string) bool {
	switch s {
	case models.BandHighlyLikely, models.BandLikely, models.BandBorderline, models.BandUnlikely:
		return true
	}
	return false
}

func hasAdvancedEducation(p models.ApplicantProfile) bool {
	return p.Education == models.EducationMasters || p.Education == models.EducationPhD
}

func countFailed(docs []models.DocumentAssessment) int {
	failed := 0
	for _, d := range docs {
		if !d.OK {
			failed++
		}
	}
	return failed
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
