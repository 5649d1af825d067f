// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"visa-workers/internal/assessor"
	commonerrors "visa-workers/internal/common/errors"
	"visa-workers/internal/common/logger"
	"visa-workers/internal/common/validation"
	"visa-workers/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	AssessmentIDHeader = "X-Assessment-ID"

	defaultMaxBodyBytes int64 = 1 << 20
)

// Service is the assessment surface used by the HTTP API. *assessor.Service implements it.
type Service interface {
	Assess(ctx context.Context, input models.AnalysisInput) (*assessor.Assessment, error)
	ValidateDocuments(slots models.DocumentSlots) ([]models.DocumentAssessment, error)
}

type Handler struct {
	service      Service
	logger       logger.Logger
	maxBodyBytes int64
}

func NewHandler(service Service, log logger.Logger, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{
		service:      service,
		logger:       log.With(map[string]interface{}{"component": "api"}),
		maxBodyBytes: maxBodyBytes,
	}
}

// Register mounts the visa endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/visa", func(r chi.Router) {
		r.Post("/analyze", h.HandleAnalyze)
		r.Post("/documents/validate", h.HandleValidateDocuments)
	})
}

type validateDocumentsRequest struct {
	Documents models.DocumentSlots `json:"documents"`
}

type validateDocumentsResponse struct {
	DocumentsValid bool                        `json:"documentsValid"`
	Docs           []models.DocumentAssessment `json:"docs"`
}

var requestSchema = validation.MustCompile(`{
  "type": "object",
  "properties": {
    "documents": {
      "type": ["object", "null"],
      "additionalProperties": {
        "type": ["object", "null"],
        "properties": {
          "originalName": {"type": "string"},
          "sizeBytes":    {"type": "integer", "minimum": 0}
        }
      }
    },
    "assessor": {"type": ["string", "null"]}
  }
}`)

// HandleAnalyze handles POST /api/v1/visa/analyze.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	var input models.AnalysisInput
	if err := h.decode(w, r, &input); err != nil {
		h.logger.Warn("rejected analyze request", map[string]interface{}{
			"requestId": requestID,
			"error":     err.Error(),
		})
		writeError(w, err)
		return
	}

	a, err := h.service.Assess(ctx, input)
	if err != nil {
		if stdErr, ok := commonerrors.AsStandardError(err); ok {
			if id, ok := stdErr.Metadata["assessmentId"].(string); ok {
				w.Header().Set(AssessmentIDHeader, id)
			}
		}
		writeError(w, err)
		return
	}

	h.logger.Info("analyze request served", map[string]interface{}{
		"requestId":    requestID,
		"assessmentId": a.ID,
		"assessor":     a.Assessor,
		"fallback":     a.Fallback,
	})

	w.Header().Set(AssessmentIDHeader, a.ID)
	writeJSON(w, http.StatusOK, a.Result)
}

// HandleValidateDocuments handles POST /api/v1/visa/documents/validate.
func (h *Handler) HandleValidateDocuments(w http.ResponseWriter, r *http.Request) {
	var req validateDocumentsRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	docs, err := h.service.ValidateDocuments(req.Documents)
	if err != nil {
		writeError(w, err)
		return
	}

	valid := true
	for _, d := range docs {
		valid = valid && d.OK
	}
	writeJSON(w, http.StatusOK, validateDocumentsResponse{DocumentsValid: valid, Docs: docs})
}

// decode reads at most maxBodyBytes, checks the body against requestSchema
// and unmarshals it into v.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		return commonerrors.NewInputParsingFailedError(err)
	}

	result, err := requestSchema.ValidateJSON(body)
	if err != nil {
		return commonerrors.NewInputParsingFailedError(err)
	}
	if !result.Valid {
		return commonerrors.NewInputParsingFailedError(result)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return commonerrors.NewInputParsingFailedError(err)
	}
	return nil
}
