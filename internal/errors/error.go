package errors

import "github.com/pkg/errors"

var (
	// run errors
	ErrConnection    = errors.New("mailbox connection failed")
	ErrRunInProgress = errors.New("pipeline run already in progress")

	// message errors
	ErrParse = errors.New("message parse failed")

	// classifier errors
	ErrClassifierNotConfigured = errors.New("classifier api key is not configured")
	ErrClassifierUnavailable   = errors.New("classifier unavailable")
	ErrRateLimited             = errors.New("classifier rate limit exceeded")
	ErrMalformedResponse       = errors.New("classifier response malformed")
	ErrInvalidCategory         = errors.New("classifier returned invalid category")

	// storage errors
	ErrDuplicateKey = errors.New("email with this message id already exists")
)

// IsRunFatal reports whether err must abort the whole pipeline run.
func IsRunFatal(err error) bool {
	return errors.Is(err, ErrConnection) || errors.Is(err, ErrClassifierNotConfigured)
}
