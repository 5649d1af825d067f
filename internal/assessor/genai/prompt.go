package genai

import (
	"fmt"
	"strings"

	"visa-workers/internal/models"
)

const promptHeader = `You are a visa eligibility analyst. Assess the applicant below and answer with a
single JSON object and nothing else. The object must have these keys:
  "score"     integer 0-100
  "plain"     one of "Highly likely", "Likely", "Borderline", "Unlikely"
  "reasons"   array of short strings
  "docs"      exactly three {"name", "ok", "note"} items: passport, bank statement, offer letter
  "twin"      {"name", "confidence", "traits"} with exactly two traits
  "countries" array of {"name", "score", "flag", "reason"}
  "risk"      exactly four {"label", "value"} items labelled "Finances", "Docs",
              "Travel History" and "Purpose", values 0-100 where higher is riskier`

func buildPrompt(profile models.ApplicantProfile, docs []models.DocumentAssessment) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\nApplicant:\n")

	writeField(&b, "Name", profile.Name)
	writeField(&b, "Age", profile.Age)
	writeField(&b, "Passport country", profile.PassportCountry)
	writeField(&b, "Destination", profile.DestCountry)
	writeField(&b, "Purpose", profile.Purpose)
	fmt.Fprintf(&b, "- Declared funds: %d\n", profile.Funds)
	writeField(&b, "Education", profile.Education)
	writeField(&b, "Previous visas", profile.PastVisa)

	b.WriteString("\nDocument pre-checks:\n")
	for _, d := range docs {
		status := "ok"
		if !d.OK {
			status = "failed"
		}
		fmt.Fprintf(&b, "- %s: %s (%s)\n", d.Name, status, d.Note)
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		value = "not provided"
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}
