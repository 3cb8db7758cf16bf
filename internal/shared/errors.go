package shared

import "fmt"

var (
	// Configuration errors
	ErrValidation    = fmt.Errorf("invalid configuration")
	ErrMissingConfig = fmt.Errorf("configuration not found")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoCredentials    = fmt.Errorf("no credentials provided")
	ErrTokenExchange    = fmt.Errorf("token exchange failed")

	// Catalog errors
	ErrNotFound  = fmt.Errorf("media not found")
	ErrTransport = fmt.Errorf("catalog unreachable")

	// Playback errors
	ErrUnsupportedMedia = fmt.Errorf("unsupported media")
	ErrNoBaseURL        = fmt.Errorf("external base URL not configured")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
