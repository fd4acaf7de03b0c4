package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidTarget   = fmt.Errorf("target must start with http:// or https://")

	// Stream and transport errors
	ErrStreamClosed       = fmt.Errorf("stream closed")
	ErrStreamFailed       = fmt.Errorf("stream failed")
	ErrUnexpectedStatus   = fmt.Errorf("unexpected response status")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Server errors
	ErrMissingParameters = fmt.Errorf("missing parameters")
	ErrNotFound          = fmt.Errorf("not found")
	ErrRateLimited       = fmt.Errorf("rate limit exceeded")

	// Persistence errors
	ErrSessionNotFound = fmt.Errorf("session not found")
	ErrSettingNotFound = fmt.Errorf("setting not found")
)
