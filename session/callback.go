package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// CallbackProvider obtains the verifier PIN during the interactive
// authorization handoff. Implementations deliver the authorize URL to the
// user and return the code they supply; VerifierCode may block indefinitely
// waiting for human input.
type CallbackProvider interface {
	VerifierCode(ctx context.Context, authorizeURL string) (string, error)
}

// OOB is the out-of-band terminal prompt: it prints the authorize URL to
// stderr and reads the PIN from stdin.
type OOB struct {
	// In and Out default to stdin and stderr.
	In  io.Reader
	Out io.Writer
}

// VerifierCode prompts the user and reads one line.
func (o OOB) VerifierCode(ctx context.Context, authorizeURL string) (string, error) {
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	in := o.In
	if in == nil {
		in = os.Stdin
	}

	if _, err := fmt.Fprintf(out, "please visit and accept the license: %s\ninput pin: \n", authorizeURL); err != nil {
		return "", err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// VerifierFunc adapts a function to the CallbackProvider interface.
type VerifierFunc func(ctx context.Context, authorizeURL string) (string, error)

// VerifierCode calls f.
func (f VerifierFunc) VerifierCode(ctx context.Context, authorizeURL string) (string, error) {
	return f(ctx, authorizeURL)
}
