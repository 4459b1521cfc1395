package accounts

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casualjim/etrade"
	"github.com/casualjim/etrade/secrets"
	"github.com/casualjim/etrade/session"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := secrets.NewMemstore()
	require.NoError(t, store.Put("etradesandbox", "apikey", "consumer-key"))
	require.NoError(t, store.Put("etradesandbox", "secret", "consumer-secret"))
	require.NoError(t, store.Put("etradesandbox", "access_token_key", "tok"))
	require.NoError(t, store.Put("etradesandbox", "access_token_secret", "sec"))

	s := session.New(etrade.Sandbox, store,
		session.WithBaseURL(srv.URL),
		session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return New(s)
}

func TestList(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/list", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"AccountListResponse":{"Accounts":{"Account":[
			{"accountId":"840104290","accountIdKey":"JIdOIAcSpwR1Jva7RQBoKg","accountMode":"MARGIN",
			 "accountDesc":"INDIVIDUAL","accountName":"Individual Brokerage","accountType":"INDIVIDUAL",
			 "institutionType":"BROKERAGE","accountStatus":"ACTIVE"}
		]}}}`)
	})

	accts, err := api.List(context.Background(), session.OOB{})
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, "840104290", accts[0].AccountID)
	assert.Equal(t, "JIdOIAcSpwR1Jva7RQBoKg", accts[0].AccountIDKey)
	assert.Equal(t, "ACTIVE", accts[0].AccountStatus)
}

func TestBalance(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/JIdOIAcSpwR1Jva7RQBoKg/balance", r.URL.Path)
		assert.Equal(t, "BROKERAGE", r.URL.Query().Get("instType"))
		assert.Equal(t, "true", r.URL.Query().Get("realTimeNAV"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"BalanceResponse":{
			"accountId":"840104290","accountType":"INDIVIDUAL","optionLevel":"LEVEL_2",
			"accountDescription":"Individual Brokerage",
			"Computed":{"cashAvailableForInvestment":1204.11,"netCash":1204.11,
				"RealTimeValues":{"totalAccountValue":15340.5,"netMv":14136.39}}
		}}`)
	})

	bal, err := api.Balance(context.Background(), "JIdOIAcSpwR1Jva7RQBoKg",
		BalanceRequest{RealTimeNAV: true}, session.OOB{})
	require.NoError(t, err)
	assert.Equal(t, "840104290", bal.AccountID)
	assert.InDelta(t, 1204.11, bal.Computed.NetCash, 1e-9)
	assert.InDelta(t, 15340.5, bal.Computed.RealTimeValues.TotalAccountValue, 1e-9)
}

func TestBalanceMissingEnvelope(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{}`)
	})

	_, err := api.Balance(context.Background(), "key", BalanceRequest{}, session.OOB{})
	assert.Error(t, err)
}

func TestBalanceRequestDefaults(t *testing.T) {
	v, err := BalanceRequest{}.Query()
	require.NoError(t, err)
	assert.Equal(t, "BROKERAGE", v.Get("instType"))
	assert.Empty(t, v.Get("realTimeNAV"))
}

func TestPortfolio(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/JIdOIAcSpwR1Jva7RQBoKg/portfolio", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("count"))
		assert.Equal(t, "true", r.URL.Query().Get("totalsRequired"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"PortfolioResponse":{
			"totals":{"totalMarketValue":14136.39,"todaysGainLoss":-302.91},
			"AccountPortfolio":[{"accountId":"840104290","totalNoOfPages":1,
				"Position":[{"positionId":10071629,"Product":{"symbol":"AAPL","securityType":"EQ"},
					"quantity":10,"marketValue":1890.5,"pricePaid":145.2}]}]
		}}`)
	})

	p, err := api.Portfolio(context.Background(), "JIdOIAcSpwR1Jva7RQBoKg",
		PortfolioRequest{Count: 50, TotalsRequired: true}, session.OOB{})
	require.NoError(t, err)
	require.NotNil(t, p.Totals)
	assert.InDelta(t, 14136.39, p.Totals.TotalMarketValue, 1e-9)
	require.Len(t, p.AccountPortfolio, 1)
	require.Len(t, p.AccountPortfolio[0].Position, 1)
	assert.Equal(t, "AAPL", p.AccountPortfolio[0].Position[0].Product.Symbol)
	assert.InDelta(t, 10, p.AccountPortfolio[0].Position[0].Quantity, 1e-9)
}

func TestPortfolioRequestQuery(t *testing.T) {
	v, err := PortfolioRequest{
		Count:         25,
		SortBy:        "DAYS_GAIN",
		SortOrder:     etrade.SortDesc,
		MarketSession: etrade.MarketSessionRegular,
		LotsRequired:  true,
		View:          "PERFORMANCE",
	}.Query()
	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"count":         {"25"},
		"sortBy":        {"DAYS_GAIN"},
		"sortOrder":     {"DESC"},
		"marketSession": {"REGULAR"},
		"lotsRequired":  {"true"},
		"view":          {"PERFORMANCE"},
	}, v)
}
