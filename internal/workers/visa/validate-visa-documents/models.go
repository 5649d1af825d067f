// internal/workers/visa/validate-visa-documents/models.go
package validatevisadocuments

import (
	"visa-workers/internal/common/validation"
	"visa-workers/internal/models"
)

type Input struct {
	Documents models.DocumentSlots `json:"documents"`
}

type Output struct {
	DocumentsValid  bool                        `json:"documentsValid"`
	DocumentChecks  []models.DocumentAssessment `json:"documentChecks"`
	FailedDocuments []string                    `json:"failedDocuments"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["documents"],
  "properties": {
    "documents": {
      "type": "object",
      "additionalProperties": {
        "type": ["object", "null"],
        "properties": {
          "originalName": {"type": "string"},
          "sizeBytes":    {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`)
