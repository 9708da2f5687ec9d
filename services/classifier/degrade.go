package classifier

import (
	"github.com/pkg/errors"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/internal/enum"
	mserrors "github.com/customeros/mailsorter/internal/errors"
)

const (
	reasonRateLimited = "Classification skipped: classifier rate limit exceeded (HTTP 429)"
	reasonMalformed   = "Classification failed: classifier response could not be parsed"
	reasonUnavailable = "Classification failed: classifier service unavailable"
	reasonUnknown     = "Classification error occurred"
)

// Degrade maps a classification failure to the fallback verdict stored in place of a real one.
func Degrade(err error) *dto.Verdict {
	reasoning := reasonUnknown
	switch {
	case errors.Is(err, mserrors.ErrRateLimited):
		reasoning = reasonRateLimited
	case errors.Is(err, mserrors.ErrMalformedResponse):
		reasoning = reasonMalformed
	case errors.Is(err, mserrors.ErrClassifierUnavailable):
		reasoning = reasonUnavailable
	}

	return &dto.Verdict{
		Category:   enum.CategoryOther,
		Confidence: 0,
		Reasoning:  reasoning,
		Priority:   enum.PriorityMedium,
		Degraded:   true,
	}
}
