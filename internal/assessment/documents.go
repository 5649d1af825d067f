// Package assessment is the deterministic visa validation and scoring engine.
// Every function is pure: no I/O, no logging, no shared state.
package assessment

import (
	"path/filepath"
	"strings"

	"visa-workers/internal/models"
)

const (
	// minDocumentKB is the smallest size, in whole kilobytes, accepted for an upload.
	minDocumentKB = 30

	impactUnsupportedType = -20
	impactTooSmall        = -15
	impactPassport        = 15
	impactBank            = 20
	impactOffer           = 15
	impactGeneric         = 5
)

const (
	NoteUnsupportedType = "unsupported file type"
	NoteTooSmall        = "too small / possibly corrupted"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type roleRule struct {
	name   string
	note   string
	impact int
}

var roleRules = map[models.DocumentRole]roleRule{
	models.RolePassport: {name: "Passport", note: "Passport looks valid", impact: impactPassport},
	models.RoleBank:     {name: "Bank Statement", note: "Bank statement provided", impact: impactBank},
	models.RoleOffer:    {name: "Offer Letter", note: "Offer / admission letter provided", impact: impactOffer},
}

var genericRule = roleRule{name: "Document", note: "Document accepted", impact: impactGeneric}

// ValidateDocument checks one descriptor against the static rules for its role.
// Only the declared extension and byte size are inspected.
func ValidateDocument(d models.DocumentDescriptor) models.DocumentAssessment {
	rule, ok := roleRules[d.Role]
	if !ok {
		rule = genericRule
	}

	if !allowedExtensions[extension(d.OriginalName)] {
		return models.DocumentAssessment{
			Name:        rule.name,
			OK:          false,
			Note:        NoteUnsupportedType,
			ScoreImpact: impactUnsupportedType,
		}
	}

	if d.SizeBytes/1024 < minDocumentKB {
		return models.DocumentAssessment{
			Name:        rule.name,
			OK:          false,
			Note:        NoteTooSmall,
			ScoreImpact: impactTooSmall,
		}
	}

	return models.DocumentAssessment{
		Name:        rule.name,
		OK:          true,
		Note:        rule.note,
		ScoreImpact: rule.impact,
	}
}

func extension(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}
