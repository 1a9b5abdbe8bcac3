package games

import (
	"errors"
	"fmt"
)

// ErrCredentialsMissing is returned when the upstream client id or secret
// is not configured. This is a deployment problem, not a caller problem.
var ErrCredentialsMissing = errors.New("upstream client credentials are not configured")

// ValidationError reports malformed or out-of-range caller input. It is
// raised before any upstream call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TokenRequestError is returned when the identity provider rejects the
// client-credentials exchange. Token requests are never retried.
type TokenRequestError struct {
	Status int
	Body   string
}

func (e *TokenRequestError) Error() string {
	return fmt.Sprintf("token request failed (%d): %s", e.Status, e.Body)
}

// UpstreamError is a terminal non-2xx response from the game database:
// a 429 or 5xx after retry exhaustion, or any other non-2xx immediately.
// The upstream status is preserved for operability.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.Status, e.Body)
}
