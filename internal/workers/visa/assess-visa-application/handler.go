// internal/workers/visa/assess-visa-application/handler.go
package assessvisaapplication

import (
	"context"
	"encoding/json"

	"visa-workers/internal/assessor"
	commonerrors "visa-workers/internal/common/errors"
	"visa-workers/internal/common/logger"
	"visa-workers/internal/common/metrics"
	"visa-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "assess-visa-application"

// Service runs an assessment. *assessor.Service implements it.
type Service interface {
	Assess(ctx context.Context, input models.AnalysisInput) (*assessor.Assessment, error)
}

type Handler struct {
	config       *Config
	service      Service
	errorHandler *commonerrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, service Service, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      service,
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

// Execute assesses one application and shapes the job output.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	a, err := h.service.Assess(ctx, input.toAnalysisInput())
	if err != nil {
		return nil, err
	}

	h.logger.Info("assessment completed", map[string]interface{}{
		"assessmentId": a.ID,
		"assessor":     a.Assessor,
		"fallback":     a.Fallback,
		"score":        a.Result.Score,
	})

	return &Output{
		AssessmentID:   a.ID,
		VisaScore:      a.Result.Score,
		VisaBand:       a.Result.Plain,
		VisaAssessment: a.Result,
		AssessedBy:     a.Assessor,
		Fallback:       a.Fallback,
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
