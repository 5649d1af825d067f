// internal/workers/visa/assess-visa-application/models.go
package assessvisaapplication

import (
	"encoding/json"

	"visa-workers/internal/common/validation"
	"visa-workers/internal/models"
)

type Input struct {
	Profile   json.RawMessage      `json:"profile,omitempty"`
	Documents models.DocumentSlots `json:"documents"`
	Assessor  string               `json:"assessor,omitempty"`
}

func (i *Input) toAnalysisInput() models.AnalysisInput {
	return models.AnalysisInput{
		Profile:   i.Profile,
		Documents: i.Documents,
		Assessor:  i.Assessor,
	}
}

type Output struct {
	AssessmentID   string                 `json:"assessmentId"`
	VisaScore      int                    `json:"visaScore"`
	VisaBand       string                 `json:"visaBand"`
	VisaAssessment *models.AnalysisResult `json:"visaAssessment"`
	AssessedBy     string                 `json:"assessedBy"`
	Fallback       bool                   `json:"assessorFallback"`
}

// The profile itself is checked by the assessor so that a malformed profile
// surfaces as its own error code.
var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["documents"],
  "properties": {
    "documents": {
      "type": "object",
      "properties": {
        "passport": {"$ref": "#/definitions/upload"},
        "bank":     {"$ref": "#/definitions/upload"},
        "offer":    {"$ref": "#/definitions/upload"}
      }
    },
    "assessor": {"type": ["string", "null"]}
  },
  "definitions": {
    "upload": {
      "type": ["object", "null"],
      "properties": {
        "originalName": {"type": "string"},
        "sizeBytes":    {"type": "integer", "minimum": 0}
      }
    }
  }
}`)
