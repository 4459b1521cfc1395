package session

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/casualjim/etrade/internal/version"
	"github.com/casualjim/etrade/oauth1"
)

// Queryer converts a typed request into URL query parameters. GET inputs
// must be a url.Values or implement this interface.
type Queryer interface {
	Query() (url.Values, error)
}

type contentKind int

const (
	contentJSON contentKind = iota
	contentXML
	contentOther
)

// classifyContent resolves the response content type once. A missing header
// is treated as JSON, matching the upstream API's behavior.
func classifyContent(h http.Header) (contentKind, string) {
	ct := h.Get("Content-Type")
	if ct == "" {
		return contentJSON, "application/json"
	}
	media, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return contentOther, ct
	}
	switch media {
	case "application/json":
		return contentJSON, media
	case "application/xml", "text/xml":
		return contentXML, media
	default:
		return contentOther, media
	}
}

// errorData is the XML error envelope the API returns on failed calls.
type errorData struct {
	XMLName xml.Name `xml:"Error"`
	Code    int      `xml:"code"`
	Message string   `xml:"message"`
}

// Send is the single path to the API. It resolves credentials, signs and
// issues the request, and decodes the response into out (which may be nil
// when the body is irrelevant). On a 401 it invalidates every cached token
// and retries exactly once; a second 401 fails with an auth_retry_exhausted
// error and the call is never attempted a third time.
func (s *Session) Send(ctx context.Context, method, path string, input any, cb CallbackProvider, out any) error {
	resp, err := s.doSend(ctx, method, path, input, cb)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		s.log.Debug("auth error, retrying with invalidated session")
		drain(resp)
		if err := s.Invalidate(); err != nil {
			return err
		}
		resp, err = s.doSend(ctx, method, path, input, cb)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return errAuthRetryExhausted()
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errTransport(err)
	}

	if resp.StatusCode/100 != 2 {
		var edata errorData
		if err := xml.Unmarshal(body, &edata); err != nil {
			return &APIError{Code: resp.StatusCode, Message: fmt.Sprintf("request failed with status %d", resp.StatusCode)}
		}
		return &APIError{Code: edata.Code, Message: edata.Message}
	}

	if out == nil {
		return nil
	}

	kind, media := classifyContent(resp.Header)
	switch kind {
	case contentJSON:
		return json.Unmarshal(body, out)
	case contentXML:
		return xml.Unmarshal(body, out)
	default:
		return errUnsupportedContentType(media)
	}
}

// doSend performs one signed request and returns the raw response.
func (s *Session) doSend(ctx context.Context, method, path string, input any, cb CallbackProvider) (*http.Response, error) {
	consumer, err := s.consumer()
	if err != nil {
		return nil, err
	}
	access, err := s.accessToken(ctx, cb)
	if err != nil {
		return nil, err
	}

	uri := s.base() + path

	params, err := queryParams(method, input)
	if err != nil {
		return nil, err
	}

	token := oauthCreds(access)
	authorization := s.signer.Header(oauthCreds(consumer), &token, oauth1.Request{
		Method: method,
		URL:    uri,
		Params: params,
	})

	fullURI := uri
	if len(params) > 0 {
		fullURI = uri + "?" + params.Encode()
	}

	var bodyReader io.Reader
	if method != http.MethodGet && input != nil {
		data, err := json.Marshal(input)
		if err != nil {
			return nil, errUsage(fmt.Sprintf("encoding request body: %s", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURI, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", authorization)
	req.Header.Set("User-Agent", version.UserAgent())
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.log.Debug("sending request", "method", method, "url", fullURI)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errTransport(err)
	}
	s.log.Debug("received response", "status", resp.StatusCode)
	return resp, nil
}

// queryParams derives the signed parameter set for a GET. Encoding through
// url.Values and back guarantees a stable, duplicate-free ordering, which
// the signature depends on. Non-GET inputs become JSON bodies and contribute
// no parameters.
func queryParams(method string, input any) (url.Values, error) {
	if method != http.MethodGet || input == nil {
		return nil, nil
	}
	switch v := input.(type) {
	case url.Values:
		reparsed, err := url.ParseQuery(v.Encode())
		if err != nil {
			return nil, errUsage(fmt.Sprintf("encoding query: %s", err))
		}
		return reparsed, nil
	case Queryer:
		values, err := v.Query()
		if err != nil {
			return nil, errUsage(fmt.Sprintf("encoding query: %s", err))
		}
		return values, nil
	default:
		return nil, errUsage(fmt.Sprintf("GET input must be url.Values or implement Queryer, got %T", input))
	}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
