// internal/workers/visa/validate-visa-documents/handler.go
package validatevisadocuments

import (
	"context"
	"encoding/json"

	commonerrors "visa-workers/internal/common/errors"
	"visa-workers/internal/common/logger"
	"visa-workers/internal/common/metrics"
	"visa-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "validate-visa-documents"

// Validator checks the three document slots. *assessor.Service implements it.
type Validator interface {
	ValidateDocuments(slots models.DocumentSlots) ([]models.DocumentAssessment, error)
}

type Handler struct {
	config       *Config
	validator    Validator
	errorHandler *commonerrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, validator Validator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		validator:    validator,
		errorHandler: commonerrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := parseInput(job.Variables)
	if err != nil {
		h.handleError(client, job, timer, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.handleError(client, job, timer, err)
		return
	}

	if h.completeJob(client, job, output) {
		timer.Done("")
		return
	}
	timer.Done("COMPLETE_FAILED")
}

// Execute runs the document checks. A document that fails its checks is not an
// error; only missing slots are.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	checks, err := h.validator.ValidateDocuments(input.Documents)
	if err != nil {
		return nil, err
	}

	failed := []string{}
	for _, c := range checks {
		if !c.OK {
			failed = append(failed, c.Name)
		}
	}

	h.logger.Info("documents validated", map[string]interface{}{
		"checked": len(checks),
		"failed":  len(failed),
	})

	return &Output{
		DocumentsValid:  len(failed) == 0,
		DocumentChecks:  checks,
		FailedDocuments: failed,
	}, nil
}

func parseInput(variables string) (*Input, error) {
	result, err := inputSchema.ValidateJSON([]byte(variables))
	if err != nil {
		return nil, commonerrors.NewInputParsingFailedError(err)
	}
	if !result.Valid {
		return nil, commonerrors.NewInputParsingFailedError(result)
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, commonerrors.NewInputParsingFailedError(err)
	}
	return &input, nil
}

func (h *Handler) handleError(client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) {
	stdErr := commonerrors.Normalize(err)
	timer.Done(string(stdErr.Code))
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) bool {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return false
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return false
	}
	return true
}
