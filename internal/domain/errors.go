package domain

import "strings"

// ErrorKind classifies a failed fetch for retry decisions and user-facing
// messaging. Kinds are derived from the error's message text, matching the
// wording the news client attaches per upstream status class.
type ErrorKind string

const (
	ErrKindRateLimit ErrorKind = "RATE_LIMIT"
	ErrKindAuth      ErrorKind = "AUTH_ERROR"
	ErrKindServer    ErrorKind = "SERVER_ERROR"
	ErrKindNetwork   ErrorKind = "NETWORK_ERROR"
	ErrKindUnknown   ErrorKind = "UNKNOWN_ERROR"
)

// Retryable reports whether retrying can plausibly succeed. Auth failures
// need an API key or credential fix, not another attempt.
func (k ErrorKind) Retryable() bool {
	return k != ErrKindAuth
}

// ClassifyError buckets an error by message text, first match wins.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrKindUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return ErrKindRateLimit
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "401"):
		return ErrKindAuth
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "500"):
		return ErrKindServer
	case strings.Contains(msg, "connect") || strings.Contains(msg, "network") || strings.Contains(msg, "fetch"):
		return ErrKindNetwork
	default:
		return ErrKindUnknown
	}
}
