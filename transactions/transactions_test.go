package transactions

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
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

func TestListRequestQuery(t *testing.T) {
	v, err := ListRequest{
		StartDate: "01012024",
		EndDate:   "01312024",
		SortOrder: etrade.SortDesc,
		Count:     50,
	}.Query()
	require.NoError(t, err)
	assert.Equal(t, "01012024", v.Get("startDate"))
	assert.Equal(t, "DESC", v.Get("sortOrder"))
	assert.Equal(t, "50", v.Get("count"))
	assert.Empty(t, v.Get("marker"))
}

func TestList(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/acctkey/transactions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"TransactionListResponse":{"transactionCount":1,"moreTransactions":false,
			"Transaction":[{"transactionId":18165100001734,"accountId":"840104290",
				"transactionDate":1707156000000,"amount":-1865.25,"description":"Bought 10 AAPL @ 186.50",
				"Brokerage":{"transactionType":"Bought","quantity":10,"price":186.5,
					"product":{"symbol":"AAPL","securityType":"EQ"}}}]}}`)
	})

	resp, err := api.List(context.Background(), "acctkey", ListRequest{}, session.OOB{})
	require.NoError(t, err)
	require.Len(t, resp.Transaction, 1)
	txn := resp.Transaction[0]
	assert.Equal(t, int64(18165100001734), txn.TransactionID)
	assert.InDelta(t, -1865.25, txn.Amount, 1e-9)
	require.NotNil(t, txn.Brokerage)
	assert.Equal(t, "AAPL", txn.Brokerage.Product.Symbol)
}

func TestDetailWithStoreID(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/acctkey/transactions/18165100001734", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("storeId"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"TransactionDetailsResponse":{"transactionId":18165100001734,"amount":-1865.25}}`)
	})

	txn, err := api.Detail(context.Background(), "acctkey", "18165100001734", "0", session.OOB{})
	require.NoError(t, err)
	assert.Equal(t, int64(18165100001734), txn.TransactionID)
}
