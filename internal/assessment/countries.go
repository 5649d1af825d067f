package assessment

import "visa-workers/internal/models"

type countryOffset struct {
	name   string
	flag   string
	reason string
	offset int
}

// The destination declared on the profile is not consulted; every applicant is
// compared against the same three countries.
var comparedCountries = []countryOffset{
	{name: "Canada", flag: "🇨🇦", reason: "Clear study and work pathways for your profile", offset: 3},
	{name: "UK", flag: "🇬🇧", reason: "Stricter financial evidence requirements", offset: -8},
	{name: "Australia", flag: "🇦🇺", reason: "Favourable for students and skilled workers", offset: 5},
}

// CompareCountries returns per-country scores as fixed offsets of the aggregate score.
func CompareCountries(score int) []models.CountryAssessment {
	out := make([]models.CountryAssessment, 0, len(comparedCountries))
	for _, c := range comparedCountries {
		out = append(out, models.CountryAssessment{
			Name:   c.name,
			Score:  clamp(score+c.offset, 0, 100),
			Flag:   c.flag,
			Reason: c.reason,
		})
	}
	return out
}
