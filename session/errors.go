package session

import (
	"errors"
	"fmt"
)

// Error codes classifying failures out of the session layer.
const (
	// CodeMissingCredential means the consumer key or secret is absent from
	// the store. This is a configuration error and is never retried.
	CodeMissingCredential = "missing_credential"
	// CodeUpstreamAuth means one of the OAuth endpoints failed (network or
	// non-2xx). Recovery happens through the token fallback chain only.
	CodeUpstreamAuth = "upstream_auth"
	// CodeAuthRetryExhausted means a second 401 arrived after the one
	// invalidate-and-retry cycle.
	CodeAuthRetryExhausted = "auth_retry_exhausted"
	// CodeUnsupportedContentType means a 2xx response carried a content type
	// that is neither JSON nor XML.
	CodeUnsupportedContentType = "unsupported_content_type"
	// CodeTransport means a DNS/TCP/TLS/IO failure on an API call.
	CodeTransport = "transport"
	// CodeUsage means the caller passed something unusable (for example a
	// GET input that cannot become a query string).
	CodeUsage = "usage"
)

// Error is a classified session failure.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// CodeOf extracts the session error code from err, or "" if err is not a
// session error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func errMissingCredential(key, namespace string) *Error {
	return &Error{
		Code:    CodeMissingCredential,
		Message: fmt.Sprintf("secret %s@%s not found", key, namespace),
	}
}

func errUpstreamAuth(msg string, cause error) *Error {
	return &Error{Code: CodeUpstreamAuth, Message: msg, Cause: cause}
}

func errAuthRetryExhausted() *Error {
	return &Error{Code: CodeAuthRetryExhausted, Message: "authentication failed after re-authentication retry"}
}

func errUnsupportedContentType(ct string) *Error {
	return &Error{Code: CodeUnsupportedContentType, Message: fmt.Sprintf("api responded with unknown content type %s", ct)}
}

func errTransport(cause error) *Error {
	return &Error{Code: CodeTransport, Message: "transport error", Cause: cause}
}

func errUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg}
}

// APIError is the structured error envelope returned by the API on non-2xx
// responses other than 401.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}
