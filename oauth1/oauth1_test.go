package oauth1

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSigner(nonce string, ts int64) *Signer {
	return &Signer{
		Clock: func() time.Time { return time.Unix(ts, 0) },
		Nonce: func() string { return nonce },
	}
}

func TestHeaderGoldenSignature(t *testing.T) {
	// Reference vector: GET https://host/path?b=2&a=1 with fixed nonce and
	// timestamp. The signature value was computed independently against the
	// reference HMAC-SHA1 algorithm.
	s := fixedSigner("fixed-nonce", 1234567890)

	params := url.Values{}
	params.Set("b", "2")
	params.Set("a", "1")

	header := s.Header(
		Credentials{Key: "ck", Secret: "cs"},
		&Credentials{Key: "tk", Secret: "ts"},
		Request{Method: "GET", URL: "https://host/path", Params: params},
	)

	assert.Contains(t, header, `oauth_signature="dSJKJGkc6z9cFlO4d8ZAthyQSSc%3D"`)
	assert.True(t, strings.HasPrefix(header, "OAuth "))
}

func TestHeaderRequestTokenStep(t *testing.T) {
	// No token yet: the header must omit oauth_token and sign with an empty
	// token secret, and the oob callback must be included and signed.
	s := fixedSigner("abc123", 1700000000)

	header := s.Header(
		Credentials{Key: "consumer-key", Secret: "consumer-secret"},
		nil,
		Request{Method: "GET", URL: "https://api.etrade.com/oauth/request_token", Callback: "oob"},
	)

	assert.NotContains(t, header, "oauth_token=")
	assert.Contains(t, header, `oauth_callback="oob"`)
	assert.Contains(t, header, `oauth_signature="iH8E%2BQp%2BavqUGFwX0G2SKOKlCdc%3D"`)
}

func TestHeaderVerifierStep(t *testing.T) {
	s := fixedSigner("abc123", 1700000000)

	header := s.Header(
		Credentials{Key: "consumer-key", Secret: "consumer-secret"},
		&Credentials{Key: "req-token", Secret: "req-secret"},
		Request{Method: "GET", URL: "https://api.etrade.com/oauth/access_token", Verifier: "54321"},
	)

	assert.Contains(t, header, `oauth_verifier="54321"`)
	assert.Contains(t, header, `oauth_token="req-token"`)
	assert.Contains(t, header, `oauth_signature="YIYBz%2Ftciewkxi2AfyiO%2FHrTu64%3D"`)
}

func TestHeaderFields(t *testing.T) {
	s := fixedSigner("n", 42)

	header := s.Header(Credentials{Key: "k", Secret: "s"}, nil, Request{Method: "get", URL: "https://example.com/x"})
	require.True(t, strings.HasPrefix(header, "OAuth "))

	// Fields are comma separated key="value" pairs, sorted by name.
	fields := strings.Split(strings.TrimPrefix(header, "OAuth "), ", ")
	var names []string
	for _, f := range fields {
		k, _, ok := strings.Cut(f, "=")
		require.True(t, ok, "malformed field %q", f)
		names = append(names, k)
	}
	assert.Equal(t, []string{
		"oauth_consumer_key",
		"oauth_nonce",
		"oauth_signature",
		"oauth_signature_method",
		"oauth_timestamp",
	}, names)
	assert.Contains(t, header, `oauth_timestamp="42"`)
}

func TestSignatureStableUnderParamOrder(t *testing.T) {
	s := fixedSigner("n", 1000)
	consumer := Credentials{Key: "k", Secret: "s"}
	token := &Credentials{Key: "t", Secret: "ts"}

	a := url.Values{}
	a.Set("symbol", "GOOG")
	a.Add("view", "COMPLETE")
	a.Add("count", "5")

	b := url.Values{}
	b.Add("count", "5")
	b.Set("view", "COMPLETE")
	b.Set("symbol", "GOOG")

	h1 := s.Header(consumer, token, Request{Method: "GET", URL: "https://host/p", Params: a})
	h2 := s.Header(consumer, token, Request{Method: "GET", URL: "https://host/p", Params: b})
	assert.Equal(t, h1, h2)
}

func TestEncode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abcABC123", "abcABC123"},
		{"-._~", "-._~"},
		{"a b", "a%20b"},
		{"100%", "100%25"},
		{"a+b=c&d", "a%2Bb%3Dc%26d"},
		{"https://host/path", "https%3A%2F%2Fhost%2Fpath"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, encode(tt.in), "encode(%q)", tt.in)
	}
}

func TestBaseStringDeduplicatesPairs(t *testing.T) {
	params := url.Values{}
	params.Add("a", "1")
	params.Add("a", "1") // exact duplicate collapses
	params.Add("a", "2") // same key, different value survives

	base := baseString("GET", "https://host/p", map[string]string{}, params)
	assert.Equal(t, "GET&https%3A%2F%2Fhost%2Fp&a%3D1%26a%3D2", base)
}
