// Package session implements the E*TRADE authentication lifecycle and the
// request dispatcher every API surface goes through. Lifecycle state lives
// entirely in the credential store, so a process can restart at any point in
// the flow and pick up where it left off.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/casualjim/etrade"
	"github.com/casualjim/etrade/oauth1"
	"github.com/casualjim/etrade/secrets"
)

const (
	sandboxNamespace = "etradesandbox"
	liveNamespace    = "etrade"

	sandboxURL = "https://apisb.etrade.com"
	liveURL    = "https://api.etrade.com"
)

// Store keys, one namespace per mode. At most one request token and one
// access token live under a namespace at any time.
const (
	apiKey              = "apikey"
	secretKey           = "secret"
	accessTokenKey      = "access_token_key"
	accessTokenSecret   = "access_token_secret"
	requestTokenKey     = "request_token_key"
	requestTokenSecret  = "request_token_secret"
	requestTokenCreated = "request_token_ts"
)

// Endpoints holds the three OAuth endpoints and the interactive authorize
// page. Overridable for tests.
type Endpoints struct {
	RequestTokenURL     string
	AccessTokenURL      string
	RenewAccessTokenURL string
	AuthorizeBase       string
}

// DefaultEndpoints returns the production OAuth endpoints. The OAuth
// endpoints are the same for sandbox and live; only the API base URL differs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		RequestTokenURL:     "https://api.etrade.com/oauth/request_token",
		AccessTokenURL:      "https://api.etrade.com/oauth/access_token",
		RenewAccessTokenURL: "https://api.etrade.com/oauth/renew_access_token",
		AuthorizeBase:       "https://us.etrade.com/e/t/etws/authorize",
	}
}

func (e Endpoints) authorizeURL(consumerKey, requestToken string) string {
	return fmt.Sprintf("%s?key=%s&token=%s", e.AuthorizeBase, url.QueryEscape(consumerKey), url.QueryEscape(requestToken))
}

// usEastern is the business time zone for the request-token day-boundary
// check. Falls back to a fixed offset when the tz database is unavailable.
var usEastern = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}()

// Session resolves credentials, signs outbound requests, and performs the
// one-shot invalidate-and-retry on 401. Safe for concurrent use: the
// resolve-or-refresh step is serialized so concurrent callers share a single
// re-authentication instead of each prompting the user.
type Session struct {
	store  secrets.Store
	mode   etrade.Mode
	client *http.Client
	signer *oauth1.Signer
	urls   Endpoints
	log    *slog.Logger
	now    func() time.Time

	// baseURL overrides the mode-derived API base, for tests.
	baseURL string

	// mu guards the token resolution path.
	mu sync.Mutex
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.client = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock injects the time source used for the request-token day check and
// the OAuth timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
		s.signer.Clock = now
	}
}

// WithNonce injects the OAuth nonce source.
func WithNonce(nonce func() string) Option {
	return func(s *Session) { s.signer.Nonce = nonce }
}

// WithEndpoints overrides the OAuth endpoints.
func WithEndpoints(e Endpoints) Option {
	return func(s *Session) { s.urls = e }
}

// WithBaseURL overrides the mode-derived API base URL.
func WithBaseURL(u string) Option {
	return func(s *Session) { s.baseURL = u }
}

// New creates a Session for the given mode backed by store.
func New(mode etrade.Mode, store secrets.Store, opts ...Option) *Session {
	s := &Session{
		store: store,
		mode:  mode,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		signer: &oauth1.Signer{},
		urls:   DefaultEndpoints(),
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the session's operating mode.
func (s *Session) Mode() etrade.Mode { return s.mode }

func (s *Session) base() string {
	if s.baseURL != "" {
		return s.baseURL
	}
	if s.mode == etrade.Live {
		return liveURL
	}
	return sandboxURL
}

func (s *Session) namespace() string {
	if s.mode == etrade.Live {
		return liveNamespace
	}
	return sandboxNamespace
}

// today is the current calendar date in US Eastern time; request tokens are
// only reusable while this matches their issue date.
func (s *Session) today() string {
	return s.now().In(usEastern).Format("2006-01-02")
}

// Initialize seeds the consumer key and secret into the store.
func (s *Session) Initialize(key, secret string) error {
	if err := s.store.Put(s.namespace(), apiKey, key); err != nil {
		return err
	}
	return s.store.Put(s.namespace(), secretKey, secret)
}

// consumer loads the consumer credentials. Missing halves are fatal
// configuration errors.
func (s *Session) consumer() (etrade.Credentials, error) {
	key, ok, err := s.store.Get(s.namespace(), apiKey)
	if err != nil {
		return etrade.Credentials{}, err
	}
	if !ok {
		return etrade.Credentials{}, errMissingCredential(apiKey, s.namespace())
	}
	secret, ok, err := s.store.Get(s.namespace(), secretKey)
	if err != nil {
		return etrade.Credentials{}, err
	}
	if !ok {
		return etrade.Credentials{}, errMissingCredential(secretKey, s.namespace())
	}
	return etrade.Credentials{Key: key, Secret: secret}, nil
}

// Invalidate removes the access token, request token, and request-token
// issue date. Best effort: every deletion is attempted and the first failure
// is reported. Idempotent.
func (s *Session) Invalidate() error {
	s.log.Debug("invalidating credentials")
	var first error
	for _, key := range []string{
		accessTokenKey,
		accessTokenSecret,
		requestTokenSecret,
		requestTokenKey,
		requestTokenCreated,
	} {
		if err := s.store.Del(s.namespace(), key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// requestToken returns the cached request token when it was issued today
// (US Eastern), otherwise fetches a fresh one and caches it with today's
// date.
func (s *Session) requestToken(ctx context.Context, consumer etrade.Credentials) (etrade.Credentials, error) {
	s.log.Debug("getting a request token")

	tok, tokOK, err := s.store.Get(s.namespace(), requestTokenKey)
	if err != nil {
		return etrade.Credentials{}, err
	}
	sec, secOK, err := s.store.Get(s.namespace(), requestTokenSecret)
	if err != nil {
		return etrade.Credentials{}, err
	}
	created, createdOK, err := s.store.Get(s.namespace(), requestTokenCreated)
	if err != nil {
		return etrade.Credentials{}, err
	}

	if tokOK && secOK && createdOK && created == s.today() {
		s.log.Debug("using cached request token")
		return etrade.Credentials{Key: tok, Secret: sec}, nil
	}

	s.log.Debug("getting a new request token")
	header := s.signer.Header(oauthCreds(consumer), nil, oauth1.Request{
		Method:   http.MethodGet,
		URL:      s.urls.RequestTokenURL,
		Callback: "oob",
	})
	creds, err := s.tokenCall(ctx, s.urls.RequestTokenURL, header)
	if err != nil {
		return etrade.Credentials{}, err
	}

	if err := s.store.Put(s.namespace(), requestTokenKey, creds.Key); err != nil {
		return etrade.Credentials{}, err
	}
	if err := s.store.Put(s.namespace(), requestTokenSecret, creds.Secret); err != nil {
		return etrade.Credentials{}, err
	}
	if err := s.store.Put(s.namespace(), requestTokenCreated, s.today()); err != nil {
		return etrade.Credentials{}, err
	}
	return creds, nil
}

// accessToken returns a usable access token. A cached token is trusted
// without a network call; staleness surfaces later as a 401. Otherwise the
// fallback chain runs: request token, renewal attempt, then the full
// interactive flow.
func (s *Session) accessToken(ctx context.Context, cb CallbackProvider) (etrade.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	consumer, err := s.consumer()
	if err != nil {
		return etrade.Credentials{}, err
	}

	tok, tokOK, err := s.store.Get(s.namespace(), accessTokenKey)
	if err != nil {
		return etrade.Credentials{}, err
	}
	sec, secOK, err := s.store.Get(s.namespace(), accessTokenSecret)
	if err != nil {
		return etrade.Credentials{}, err
	}
	if tokOK && secOK {
		s.log.Debug("using cached access token")
		return etrade.Credentials{Key: tok, Secret: sec}, nil
	}

	requestToken, err := s.requestToken(ctx, consumer)
	if err != nil {
		s.log.Debug("restarting full flow because request token has an error")
		return s.fullAccessTokenFlow(ctx, consumer, cb)
	}

	if access, err := s.renewAccessToken(ctx, consumer, requestToken); err == nil {
		s.log.Debug("using renewed access token")
		return access, nil
	}
	return s.fullAccessTokenFlow(ctx, consumer, cb)
}

// Authenticate ensures a usable access token exists, running the interactive
// flow through cb when needed. API calls do this lazily; Authenticate exists
// so a login command can drive the flow up front.
func (s *Session) Authenticate(ctx context.Context, cb CallbackProvider) error {
	_, err := s.accessToken(ctx, cb)
	return err
}

// fullAccessTokenFlow is the interactive path: wipe cached tokens, get a
// fresh request token, hand the authorize URL to the callback, and exchange
// the PIN for an access token.
func (s *Session) fullAccessTokenFlow(ctx context.Context, consumer etrade.Credentials, cb CallbackProvider) (etrade.Credentials, error) {
	if err := s.Invalidate(); err != nil {
		return etrade.Credentials{}, err
	}

	requestToken, err := s.requestToken(ctx, consumer)
	if err != nil {
		return etrade.Credentials{}, err
	}

	authURL := s.urls.authorizeURL(consumer.Key, requestToken.Key)
	pin, err := cb.VerifierCode(ctx, authURL)
	if err != nil {
		return etrade.Credentials{}, err
	}

	return s.createAccessToken(ctx, consumer, requestToken, pin)
}

func (s *Session) createAccessToken(ctx context.Context, consumer, requestToken etrade.Credentials, pin string) (etrade.Credentials, error) {
	s.log.Debug("getting an access token")
	token := oauthCreds(requestToken)
	header := s.signer.Header(oauthCreds(consumer), &token, oauth1.Request{
		Method:   http.MethodGet,
		URL:      s.urls.AccessTokenURL,
		Verifier: pin,
	})
	access, err := s.tokenCall(ctx, s.urls.AccessTokenURL, header)
	if err != nil {
		return etrade.Credentials{}, err
	}
	return access, s.storeAccessToken(access)
}

func (s *Session) renewAccessToken(ctx context.Context, consumer, requestToken etrade.Credentials) (etrade.Credentials, error) {
	s.log.Debug("renewing an access token")
	token := oauthCreds(requestToken)
	header := s.signer.Header(oauthCreds(consumer), &token, oauth1.Request{
		Method: http.MethodGet,
		URL:    s.urls.RenewAccessTokenURL,
	})
	access, err := s.tokenCall(ctx, s.urls.RenewAccessTokenURL, header)
	if err != nil {
		return etrade.Credentials{}, err
	}
	return access, s.storeAccessToken(access)
}

func (s *Session) storeAccessToken(access etrade.Credentials) error {
	if err := s.store.Put(s.namespace(), accessTokenKey, access.Key); err != nil {
		return err
	}
	return s.store.Put(s.namespace(), accessTokenSecret, access.Secret)
}

// tokenCall performs a signed GET against one of the OAuth endpoints and
// parses the URL-encoded credential response. Any failure, transport or
// non-2xx, classifies as an upstream auth error; recovery is the caller's
// fallback chain, never a retry of the same call.
func (s *Session) tokenCall(ctx context.Context, endpoint, authorization string) (etrade.Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return etrade.Credentials{}, err
	}
	req.Header.Set("Authorization", authorization)

	resp, err := s.client.Do(req)
	if err != nil {
		return etrade.Credentials{}, errUpstreamAuth(fmt.Sprintf("calling %s", endpoint), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, resp.Body)
		return etrade.Credentials{}, errUpstreamAuth(fmt.Sprintf("%s returned status %d", endpoint, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return etrade.Credentials{}, errUpstreamAuth("reading token response", err)
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return etrade.Credentials{}, errUpstreamAuth("parsing token response", err)
	}
	key := values.Get("oauth_token")
	secret := values.Get("oauth_token_secret")
	if key == "" || secret == "" {
		return etrade.Credentials{}, errUpstreamAuth("token response missing oauth_token or oauth_token_secret", nil)
	}
	return etrade.Credentials{Key: key, Secret: secret}, nil
}

// Status reports which credentials are currently stored for the session's
// namespace.
type Status struct {
	Consumer         bool   `json:"consumer"`
	RequestToken     bool   `json:"request_token"`
	RequestTokenDate string `json:"request_token_date,omitempty"`
	AccessToken      bool   `json:"access_token"`
}

// CredentialStatus inspects the store without touching the network.
func (s *Session) CredentialStatus() (Status, error) {
	var st Status

	_, hasKey, err := s.store.Get(s.namespace(), apiKey)
	if err != nil {
		return st, err
	}
	_, hasSecret, err := s.store.Get(s.namespace(), secretKey)
	if err != nil {
		return st, err
	}
	st.Consumer = hasKey && hasSecret

	_, hasReq, err := s.store.Get(s.namespace(), requestTokenKey)
	if err != nil {
		return st, err
	}
	st.RequestToken = hasReq
	if created, ok, err := s.store.Get(s.namespace(), requestTokenCreated); err != nil {
		return st, err
	} else if ok {
		st.RequestTokenDate = created
	}

	_, hasAccess, err := s.store.Get(s.namespace(), accessTokenKey)
	if err != nil {
		return st, err
	}
	st.AccessToken = hasAccess

	return st, nil
}

func oauthCreds(c etrade.Credentials) oauth1.Credentials {
	return oauth1.Credentials{Key: c.Key, Secret: c.Secret}
}
