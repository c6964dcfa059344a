package llm

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownModel       = errors.New("unknown model")
	ErrInvalidCredential  = errors.New("model gateway rejected the API key")
	ErrRateLimited        = errors.New("model gateway rate limit exceeded")
	ErrServiceUnavailable = errors.New("model gateway unavailable")
	ErrUpstream           = errors.New("model gateway error")
	ErrMalformedResponse  = errors.New("invalid response format from model")
)

// UpstreamError is a failed gateway call. Kind is one of the sentinel errors
// above so callers can match with errors.Is; Status is the upstream status text
// or the transport failure.
type UpstreamError struct {
	Kind       error
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return ""
	}
	kind := e.Kind
	if kind == nil {
		kind = ErrUpstream
	}
	if e.Status == "" {
		return kind.Error()
	}
	return fmt.Sprintf("%s: %s", kind.Error(), e.Status)
}

func (e *UpstreamError) Unwrap() error {
	if e == nil || e.Kind == nil {
		return ErrUpstream
	}
	return e.Kind
}

func kindForStatus(code int) error {
	switch code {
	case 401:
		return ErrInvalidCredential
	case 429:
		return ErrRateLimited
	case 503:
		return ErrServiceUnavailable
	default:
		return ErrUpstream
	}
}
