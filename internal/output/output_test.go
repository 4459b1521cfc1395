package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casualjim/etrade/session"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", &session.Error{Code: session.CodeUsage}, ExitUsage},
		{"missing credential", &session.Error{Code: session.CodeMissingCredential}, ExitConfig},
		{"upstream auth", &session.Error{Code: session.CodeUpstreamAuth}, ExitAuth},
		{"retry exhausted", &session.Error{Code: session.CodeAuthRetryExhausted}, ExitAuth},
		{"transport", &session.Error{Code: session.CodeTransport}, ExitNetwork},
		{"content type", &session.Error{Code: session.CodeUnsupportedContentType}, ExitAPI},
		{"api error", &session.APIError{Code: 100, Message: "bad request"}, ExitAPI},
		{"wrapped api error", fmt.Errorf("listing orders: %w", &session.APIError{Code: 100}), ExitAPI},
		{"plain error", errors.New("boom"), ExitAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}

func TestHint(t *testing.T) {
	assert.Contains(t, Hint(&session.Error{Code: session.CodeMissingCredential}), "auth init")
	assert.Contains(t, Hint(&session.Error{Code: session.CodeAuthRetryExhausted}), "auth login")
	assert.Empty(t, Hint(errors.New("boom")))
}

func TestWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf, JSON: true}

	require.NoError(t, w.Result(map[string]string{"status": "ok"}, func(io.Writer) error {
		t.Fatal("text renderer must not run in JSON mode")
		return nil
	}))
	assert.JSONEq(t, `{"status":"ok"}`, buf.String())
}

func TestWriterText(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf}

	require.NoError(t, w.Result(nil, func(out io.Writer) error {
		_, err := fmt.Fprintln(out, "two accounts")
		return err
	}))
	assert.Equal(t, "two accounts\n", buf.String())
}

func TestWriterTextFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf}

	// No text renderer means JSON even in text mode.
	require.NoError(t, w.Result(map[string]int{"count": 2}, nil))
	assert.JSONEq(t, `{"count":2}`, buf.String())
}

func TestErrRendering(t *testing.T) {
	var buf bytes.Buffer
	Err(&buf, &session.Error{Code: session.CodeMissingCredential, Message: "secret apikey@etradesandbox not found"})

	out := buf.String()
	assert.Contains(t, out, "error: secret apikey@etradesandbox not found")
	assert.Contains(t, out, "hint: Run: etradectl auth init")
}
