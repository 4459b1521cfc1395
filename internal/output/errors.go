package output

import (
	"errors"

	"github.com/casualjim/etrade/session"
)

// ExitCodeFor classifies err into an exit code. Unknown errors count as API
// failures.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	var apiErr *session.APIError
	if errors.As(err, &apiErr) {
		return ExitAPI
	}

	switch session.CodeOf(err) {
	case session.CodeUsage:
		return ExitUsage
	case session.CodeMissingCredential:
		return ExitConfig
	case session.CodeUpstreamAuth, session.CodeAuthRetryExhausted:
		return ExitAuth
	case session.CodeTransport:
		return ExitNetwork
	case session.CodeUnsupportedContentType:
		return ExitAPI
	default:
		return ExitAPI
	}
}

// Hint returns a one-line suggestion for recoverable error classes, or "".
func Hint(err error) string {
	switch session.CodeOf(err) {
	case session.CodeMissingCredential:
		return "Run: etradectl auth init --key <consumer-key> --secret <consumer-secret>"
	case session.CodeAuthRetryExhausted:
		return "Run: etradectl auth login"
	default:
		return ""
	}
}
