// Package transactions wraps the account transaction endpoints.
package transactions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/casualjim/etrade"
	"github.com/casualjim/etrade/session"
)

// API is the transactions surface.
type API struct {
	session *session.Session
}

// New creates the transactions surface on top of a session.
func New(s *session.Session) *API {
	return &API{session: s}
}

// ListRequest filters a transaction listing.
type ListRequest struct {
	StartDate string // MMDDYYYY
	EndDate   string // MMDDYYYY
	SortOrder string
	Marker    string
	Count     int
}

// Query implements session.Queryer.
func (r ListRequest) Query() (url.Values, error) {
	v := url.Values{}
	if r.StartDate != "" {
		v.Set("startDate", r.StartDate)
	}
	if r.EndDate != "" {
		v.Set("endDate", r.EndDate)
	}
	if r.SortOrder != "" {
		v.Set("sortOrder", r.SortOrder)
	}
	if r.Marker != "" {
		v.Set("marker", r.Marker)
	}
	if r.Count > 0 {
		v.Set("count", strconv.Itoa(r.Count))
	}
	return v, nil
}

// Transaction is one booked transaction.
type Transaction struct {
	TransactionID   int64      `json:"transactionId"`
	AccountID       string     `json:"accountId"`
	TransactionDate int64      `json:"transactionDate"`
	PostDate        int64      `json:"postDate"`
	Amount          float64    `json:"amount"`
	Description     string     `json:"description,omitempty"`
	Brokerage       *Brokerage `json:"Brokerage,omitempty"`
}

// Brokerage carries the trade-level fields of a transaction.
type Brokerage struct {
	TransactionType    string         `json:"transactionType"`
	Product            etrade.Product `json:"product"`
	Quantity           float64        `json:"quantity"`
	Price              float64        `json:"price"`
	SettlementCurrency string         `json:"settlementCurrency"`
	PaymentCurrency    string         `json:"paymentCurrency"`
	Fee                float64        `json:"fee"`
	Memo               string         `json:"memo"`
	OrderNo            string         `json:"orderNo"`
}

// ListResponse is one page of transactions.
type ListResponse struct {
	PageMarker       string        `json:"pageMarker"`
	MoreTransactions bool          `json:"moreTransactions"`
	TransactionCount int           `json:"transactionCount"`
	TotalCount       int           `json:"totalCount"`
	Transaction      []Transaction `json:"Transaction"`
}

// List returns transactions for an account.
func (a *API) List(ctx context.Context, accountIDKey string, req ListRequest, cb session.CallbackProvider) (*ListResponse, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/transactions", accountIDKey)
	if err := a.session.Send(ctx, "GET", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["TransactionListResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing TransactionListResponse")
	}
	var out ListResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Detail fetches one transaction. storeID may be empty.
func (a *API) Detail(ctx context.Context, accountIDKey, transactionID, storeID string, cb session.CallbackProvider) (*Transaction, error) {
	var input any
	if storeID != "" {
		input = url.Values{"storeId": []string{storeID}}
	}
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/transactions/%s", accountIDKey, transactionID)
	if err := a.session.Send(ctx, "GET", path, input, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["TransactionDetailsResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing TransactionDetailsResponse")
	}
	var out Transaction
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
