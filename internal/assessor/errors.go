package assessor

import (
	"context"
	"errors"

	"visa-workers/internal/assessment"
	commonerrors "visa-workers/internal/common/errors"
)

// Normalize maps an assessment error to a StandardError. name is the assessor
// that produced it.
func Normalize(name string, err error) *commonerrors.StandardError {
	if stdErr, ok := commonerrors.AsStandardError(err); ok {
		return stdErr
	}

	var missing *assessment.MissingDocumentsError
	switch {
	case errors.As(err, &missing):
		roles := make([]string, len(missing.Roles))
		for i, r := range missing.Roles {
			roles[i] = string(r)
		}
		return commonerrors.NewDocumentsMissingError(err).WithMetadata("missingDocuments", roles)
	case errors.Is(err, assessment.ErrMissingDocuments):
		return commonerrors.NewDocumentsMissingError(err)
	case errors.Is(err, assessment.ErrMalformedProfile):
		return commonerrors.NewProfileMalformedError(err)
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return commonerrors.NewAssessorTimeoutError(name, err)
	case errors.Is(err, ErrInvalidResponse):
		return commonerrors.NewAssessorResponseInvalidError(name, err)
	case errors.Is(err, ErrFailed), errors.Is(err, context.Canceled):
		return commonerrors.NewAssessorFailedError(name, err)
	default:
		return commonerrors.NewInternalError(err)
	}
}
