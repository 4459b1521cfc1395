package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casualjim/etrade"
	"github.com/casualjim/etrade/internal/config"
	"github.com/casualjim/etrade/internal/output"
	"github.com/casualjim/etrade/secrets"
	"github.com/casualjim/etrade/session"
)

// testApp builds an App over an in-memory store and an optional fake API.
func testApp(t *testing.T, handler http.HandlerFunc, jsonOut bool) (*App, *secrets.Memstore, *bytes.Buffer) {
	t.Helper()

	store := secrets.NewMemstore()
	opts := []session.Option{
		session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		opts = append(opts, session.WithBaseURL(srv.URL))
	}

	var buf bytes.Buffer
	app := &App{
		Config:   config.Default(),
		Session:  session.New(etrade.Sandbox, store, opts...),
		Out:      &output.Writer{Out: &buf, JSON: jsonOut},
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Callback: session.OOB{},
	}
	return app, store, &buf
}

func run(t *testing.T, app *App, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(WithApp(context.Background(), app))
}

func TestAuthInitStoresConsumerCredentials(t *testing.T) {
	app, store, _ := testApp(t, nil, false)

	err := run(t, app, NewAuthCmd(), "init", "--key", "consumer-key", "--secret", "consumer-secret")
	require.NoError(t, err)

	v, ok, err := store.Get("etradesandbox", "apikey")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "consumer-key", v)
}

func TestAuthInitRequiresFlags(t *testing.T) {
	app, _, _ := testApp(t, nil, false)

	err := run(t, app, NewAuthCmd(), "init", "--key", "consumer-key")
	assert.Error(t, err)
}

func TestAuthStatusJSON(t *testing.T) {
	app, store, buf := testApp(t, nil, true)
	require.NoError(t, store.Put("etradesandbox", "apikey", "k"))
	require.NoError(t, store.Put("etradesandbox", "secret", "s"))
	require.NoError(t, store.Put("etradesandbox", "access_token_key", "tok"))

	require.NoError(t, run(t, app, NewAuthCmd(), "status"))
	assert.Contains(t, buf.String(), `"consumer": true`)
	assert.Contains(t, buf.String(), `"access_token": true`)
}

func TestAuthStatusText(t *testing.T) {
	app, _, buf := testApp(t, nil, false)

	require.NoError(t, run(t, app, NewAuthCmd(), "status"))
	assert.Contains(t, buf.String(), "consumer:      no")
	assert.Contains(t, buf.String(), "access token:  no")
}

func TestAuthLogoutClearsTokens(t *testing.T) {
	app, store, _ := testApp(t, nil, false)
	require.NoError(t, store.Put("etradesandbox", "access_token_key", "tok"))
	require.NoError(t, store.Put("etradesandbox", "apikey", "k"))

	require.NoError(t, run(t, app, NewAuthCmd(), "logout"))

	_, ok, err := store.Get("etradesandbox", "access_token_key")
	require.NoError(t, err)
	assert.False(t, ok)

	// Consumer credentials survive a logout.
	_, ok, err = store.Get("etradesandbox", "apikey")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccountsListRendersTable(t *testing.T) {
	app, store, buf := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"AccountListResponse":{"Accounts":{"Account":[
			{"accountId":"840104290","accountIdKey":"abc","accountName":"Brokerage","accountType":"INDIVIDUAL","accountStatus":"ACTIVE"}
		]}}}`)
	}, false)
	require.NoError(t, store.Put("etradesandbox", "apikey", "k"))
	require.NoError(t, store.Put("etradesandbox", "secret", "s"))
	require.NoError(t, store.Put("etradesandbox", "access_token_key", "tok"))
	require.NoError(t, store.Put("etradesandbox", "access_token_secret", "sec"))

	require.NoError(t, run(t, app, NewAccountsCmd(), "list"))
	assert.Contains(t, buf.String(), "840104290")
	assert.Contains(t, buf.String(), "ACTIVE")
}

func TestAccountsListMissingCredential(t *testing.T) {
	app, _, _ := testApp(t, nil, false)

	err := run(t, app, NewAccountsCmd(), "list")
	require.Error(t, err)
	assert.Equal(t, session.CodeMissingCredential, session.CodeOf(err))
	assert.Equal(t, output.ExitConfig, output.ExitCodeFor(err))
}

func TestOrdersCancelRejectsBadID(t *testing.T) {
	app, _, _ := testApp(t, nil, false)

	err := run(t, app, NewOrdersCmd(), "cancel", "acctkey", "not-a-number")
	assert.Error(t, err)
}

func TestMarketQuoteRendersTable(t *testing.T) {
	app, store, buf := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/market/quote/AAPL", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"QuoteResponse":{"quoteData":[
			{"All":{"lastTrade":187.0,"bid":186.9,"ask":187.1,"totalVolume":53000000},
			 "Product":{"symbol":"AAPL","securityType":"EQ"}}
		]}}`)
	}, false)
	require.NoError(t, store.Put("etradesandbox", "apikey", "k"))
	require.NoError(t, store.Put("etradesandbox", "secret", "s"))
	require.NoError(t, store.Put("etradesandbox", "access_token_key", "tok"))
	require.NoError(t, store.Put("etradesandbox", "access_token_secret", "sec"))

	require.NoError(t, run(t, app, NewMarketCmd(), "quote", "AAPL"))
	assert.Contains(t, buf.String(), "AAPL")
	assert.Contains(t, buf.String(), "187.00")
}

func TestConfigSetLeavesEnvValuesOut(t *testing.T) {
	app, _, _ := testApp(t, nil, false)
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("ETRADE_CONFIG", path)
	t.Setenv("ETRADE_FORMAT", "json")
	app.Config.Format = "json"
	app.Config.Sources["format"] = string(config.SourceEnv)

	require.NoError(t, run(t, app, NewConfigCmd(), "set", "mode", "live"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode: live")
	assert.NotContains(t, string(data), "format")
}
