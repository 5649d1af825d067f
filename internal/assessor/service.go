package assessor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"visa-workers/internal/assessment"
	commonerrors "visa-workers/internal/common/errors"
	"visa-workers/internal/common/logger"
	"visa-workers/internal/common/metrics"
	"visa-workers/internal/common/observability"
	"visa-workers/internal/models"

	"github.com/google/uuid"
)

// Assessment is the outcome of one Service.Assess call.
type Assessment struct {
	ID       string
	Assessor string
	Fallback bool
	Result   *models.AnalysisResult
}

type Options struct {
	Default         string
	FallbackToLocal bool
	Observability   *observability.Observability
	Logger          logger.Logger
}

// Service routes requests to a named assessor. The local assessor is always registered.
type Service struct {
	assessors   map[string]Assessor
	local       Assessor
	defaultName string
	fallback    bool
	obs         *observability.Observability
	logger      logger.Logger
}

func NewService(opts Options, assessors ...Assessor) (*Service, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	s := &Service{
		assessors: make(map[string]Assessor),
		fallback:  opts.FallbackToLocal,
		obs:       opts.Observability,
		logger:    log.With(map[string]interface{}{"component": "assessor"}),
	}

	for _, a := range assessors {
		s.assessors[a.Name()] = a
	}
	if _, ok := s.assessors[NameLocal]; !ok {
		s.assessors[NameLocal] = NewLocal()
	}
	s.local = s.assessors[NameLocal]

	s.defaultName = normalizeName(opts.Default)
	if s.defaultName == "" {
		s.defaultName = NameLocal
	}
	if _, ok := s.assessors[s.defaultName]; !ok {
		return nil, fmt.Errorf("default assessor %q is not registered", s.defaultName)
	}

	return s, nil
}

// Names lists the registered assessors.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.assessors))
	for name := range s.assessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the assessor used when a request names none.
func (s *Service) Default() string { return s.defaultName }

// Assess runs the requested (or default) assessor. Errors are always *StandardError.
func (s *Service) Assess(ctx context.Context, input models.AnalysisInput) (*Assessment, error) {
	id := uuid.NewString()

	name := normalizeName(input.Assessor)
	if name == "" {
		name = s.defaultName
	}

	a, ok := s.assessors[name]
	if !ok {
		stdErr := commonerrors.NewUnknownAssessorError(name).WithMetadata("assessmentId", id)
		metrics.AssessmentFailures.WithLabelValues("unknown", string(stdErr.Code)).Inc()
		return nil, stdErr
	}

	log := s.logger.With(map[string]interface{}{
		"assessmentId": id,
		"assessor":     name,
	})

	result, err := s.run(ctx, a, input)
	if err == nil {
		s.recordSuccess(ctx, log, name, result)
		return &Assessment{ID: id, Assessor: name, Result: result}, nil
	}

	stdErr := Normalize(name, err).WithMetadata("assessmentId", id)
	s.recordFailure(log, name, stdErr)

	if s.fallback && name != NameLocal && stdErr.Retryable {
		log.Warn("falling back to local assessor", map[string]interface{}{"errorCode": string(stdErr.Code)})
		metrics.AssessorFallbacks.WithLabelValues(name).Inc()
		s.obs.RecordAssessment(ctx, name, observability.OutcomeFallback, 0)

		result, lerr := s.run(ctx, s.local, input)
		if lerr != nil {
			localErr := Normalize(NameLocal, lerr).WithMetadata("assessmentId", id)
			s.recordFailure(log, NameLocal, localErr)
			return nil, localErr
		}
		s.recordSuccess(ctx, log, NameLocal, result)
		return &Assessment{ID: id, Assessor: NameLocal, Fallback: true, Result: result}, nil
	}

	return nil, stdErr
}

func (s *Service) run(ctx context.Context, a Assessor, input models.AnalysisInput) (*models.AnalysisResult, error) {
	start := time.Now()
	result, err := a.Assess(ctx, input)

	outcome := observability.OutcomeSuccess
	if err != nil {
		outcome = observability.OutcomeFailure
	}
	s.obs.RecordAssessment(ctx, a.Name(), outcome, time.Since(start))

	return result, err
}

func (s *Service) recordSuccess(ctx context.Context, log logger.Logger, name string, result *models.AnalysisResult) {
	metrics.AssessmentsTotal.WithLabelValues(name, result.Plain).Inc()
	s.obs.RecordScore(ctx, name, result.Score)

	log.Info("assessment completed", map[string]interface{}{
		"score": result.Score,
		"band":  result.Plain,
	})
}

func (s *Service) recordFailure(log logger.Logger, name string, stdErr *commonerrors.StandardError) {
	metrics.AssessmentFailures.WithLabelValues(name, string(stdErr.Code)).Inc()

	fields := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	}
	if stdErr.Retryable {
		log.Error("assessment failed", fields)
		return
	}
	log.Warn("assessment rejected", fields)
}

// ValidateDocuments runs only the document checks. Score impacts are stripped.
func (s *Service) ValidateDocuments(slots models.DocumentSlots) ([]models.DocumentAssessment, error) {
	docs, err := assessment.ValidateDocuments(slots)
	if err != nil {
		return nil, Normalize(NameLocal, err)
	}

	for _, d := range docs {
		metrics.DocumentChecks.WithLabelValues(d.Name, strconv.FormatBool(d.OK)).Inc()
	}
	return assessment.StripImpacts(docs), nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
