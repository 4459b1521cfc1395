// Package orders wraps the order endpoints: listing, preview, placement,
// change, and cancellation.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/casualjim/etrade"
	"github.com/casualjim/etrade/session"
)

// API is the orders surface.
type API struct {
	session *session.Session
}

// New creates the orders surface on top of a session.
func New(s *session.Session) *API {
	return &API{session: s}
}

// Order status filter values.
const (
	StatusOpen            = "OPEN"
	StatusExecuted        = "EXECUTED"
	StatusRejected        = "REJECTED"
	StatusCancelled       = "CANCELLED"
	StatusExpired         = "EXPIRED"
	StatusCancelRequested = "CANCEL_REQUESTED"
	StatusPartial         = "PARTIAL"
	StatusIndividualFills = "INDIVIDUAL_FILLS"
)

// ListRequest filters an order listing.
type ListRequest struct {
	Marker          string
	Count           int
	Status          string
	FromDate        string // MMDDYYYY
	ToDate          string // MMDDYYYY
	Symbol          []string
	SecurityType    string
	TransactionType string
	MarketSession   string
}

// Query implements session.Queryer.
func (r ListRequest) Query() (url.Values, error) {
	v := url.Values{}
	if r.Marker != "" {
		v.Set("marker", r.Marker)
	}
	if r.Count > 0 {
		v.Set("count", strconv.Itoa(r.Count))
	}
	if r.Status != "" {
		v.Set("status", r.Status)
	}
	if r.FromDate != "" {
		v.Set("fromDate", r.FromDate)
	}
	if r.ToDate != "" {
		v.Set("toDate", r.ToDate)
	}
	if len(r.Symbol) > 0 {
		v.Set("symbol", strings.Join(r.Symbol, ","))
	}
	if r.SecurityType != "" {
		v.Set("securityType", r.SecurityType)
	}
	if r.TransactionType != "" {
		v.Set("transactionType", r.TransactionType)
	}
	if r.MarketSession != "" {
		v.Set("marketSession", r.MarketSession)
	}
	return v, nil
}

// ListResponse is one page of orders.
type ListResponse struct {
	Marker   string          `json:"marker"`
	Next     string          `json:"next"`
	Order    []Order         `json:"Order"`
	Messages etrade.Messages `json:"Messages"`
}

// Order is one order with its detail legs and events.
type Order struct {
	OrderID         int64    `json:"orderId"`
	Details         string   `json:"details"`
	OrderType       string   `json:"orderType"`
	TotalOrderValue float64  `json:"totalOrderValue"`
	TotalCommission float64  `json:"totalCommission"`
	OrderDetail     []Detail `json:"OrderDetail"`
}

// Detail is one leg of an order.
type Detail struct {
	OrderNumber         int          `json:"orderNumber"`
	AccountID           string       `json:"accountId"`
	PreviewTime         int64        `json:"previewTime"`
	PlacedTime          int64        `json:"placedTime"`
	ExecutedTime        int64        `json:"executedTime"`
	OrderValue          float64      `json:"orderValue"`
	Status              string       `json:"status,omitempty"`
	OrderType           string       `json:"orderType,omitempty"`
	OrderTerm           string       `json:"orderTerm,omitempty"`
	PriceType           string       `json:"priceType,omitempty"`
	LimitPrice          float64      `json:"limitPrice"`
	StopPrice           float64      `json:"stopPrice"`
	MarketSession       string       `json:"marketSession,omitempty"`
	AllOrNone           bool         `json:"allOrNone"`
	Instrument          []Instrument `json:"Instrument"`
	EstimatedCommission float64      `json:"estimatedCommission"`
	EstimatedFees       float64      `json:"estimatedFees"`
	NetPrice            float64      `json:"netPrice"`
}

// Instrument is the product and quantities for one leg.
type Instrument struct {
	Product               etrade.Product `json:"Product"`
	SymbolDescription     string         `json:"symbolDescription"`
	OrderAction           string         `json:"orderAction,omitempty"`
	QuantityType          string         `json:"quantityType,omitempty"`
	Quantity              float64        `json:"quantity"`
	CancelQuantity        float64        `json:"cancelQuantity"`
	OrderedQuantity       float64        `json:"orderedQuantity"`
	FilledQuantity        float64        `json:"filledQuantity"`
	AverageExecutionPrice float64        `json:"averageExecutionPrice"`
	EstimatedCommission   float64        `json:"estimatedCommission"`
	EstimatedFees         float64        `json:"estimatedFees"`
	Bid                   float64        `json:"bid"`
	Ask                   float64        `json:"ask"`
	LastPrice             float64        `json:"lastprice"`
	Currency              string         `json:"currency,omitempty"`
}

// List returns orders for an account.
func (a *API) List(ctx context.Context, accountIDKey string, req ListRequest, cb session.CallbackProvider) (*ListResponse, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/orders", accountIDKey)
	if err := a.session.Send(ctx, "GET", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["OrdersResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing OrdersResponse")
	}
	var out ListResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PreviewRequest describes an order to be previewed or placed.
type PreviewRequest struct {
	OrderType     string   `json:"orderType,omitempty"`
	ClientOrderID string   `json:"clientOrderId"`
	Order         []Detail `json:"Order"`
}

// PreviewID ties a preview to a subsequent place call.
type PreviewID struct {
	PreviewID  int64  `json:"previewId"`
	CashMargin string `json:"cashMargin,omitempty"`
}

// PreviewResponse is the result of an order preview.
type PreviewResponse struct {
	MessageList     etrade.Messages `json:"messageList"`
	TotalOrderValue float64         `json:"totalOrderValue"`
	TotalCommission float64         `json:"totalCommission"`
	Order           []Detail        `json:"Order"`
	PreviewIDs      []PreviewID     `json:"PreviewIds"`
	PreviewTime     int64           `json:"previewTime"`
	AccountID       string          `json:"accountId"`
}

// Preview submits an order for preview without placing it.
func (a *API) Preview(ctx context.Context, accountIDKey string, req PreviewRequest, cb session.CallbackProvider) (*PreviewResponse, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/orders/preview", accountIDKey)
	if err := a.session.Send(ctx, "POST", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["PreviewOrderResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing PreviewOrderResponse")
	}
	var out PreviewResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlaceRequest places a previously previewed order.
type PlaceRequest struct {
	OrderType     string      `json:"orderType,omitempty"`
	ClientOrderID string      `json:"clientOrderId"`
	Order         []Detail    `json:"Order"`
	PreviewIDs    []PreviewID `json:"PreviewIds,omitempty"`
}

// PlaceResponse confirms a placed order.
type PlaceResponse struct {
	MessageList     etrade.Messages `json:"messageList"`
	TotalOrderValue float64         `json:"totalOrderValue"`
	TotalCommission float64         `json:"totalCommission"`
	OrderID         int64           `json:"orderId"`
	Order           []Detail        `json:"Order"`
	AccountID       string          `json:"accountId"`
	PlacedTime      int64           `json:"placedTime"`
	ClientOrderID   string          `json:"clientOrderId"`
}

// Place submits a previewed order.
func (a *API) Place(ctx context.Context, accountIDKey string, req PlaceRequest, cb session.CallbackProvider) (*PlaceResponse, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/orders/place", accountIDKey)
	if err := a.session.Send(ctx, "POST", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["PlaceOrderResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing PlaceOrderResponse")
	}
	var out PlaceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelRequest cancels an open order.
type CancelRequest struct {
	OrderID int64 `json:"orderId"`
}

// CancelResponse confirms a cancellation.
type CancelResponse struct {
	AccountID  string          `json:"accountId"`
	OrderID    int64           `json:"orderId"`
	CancelTime int64           `json:"cancelTime"`
	Messages   etrade.Messages `json:"Messages"`
}

// Cancel requests cancellation of an open order.
func (a *API) Cancel(ctx context.Context, accountIDKey string, req CancelRequest, cb session.CallbackProvider) (*CancelResponse, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/orders/cancel", accountIDKey)
	if err := a.session.Send(ctx, "PUT", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["CancelOrderResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing CancelOrderResponse")
	}
	var out CancelResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePreview previews a modification of an existing open order.
func (a *API) ChangePreview(ctx context.Context, accountIDKey string, orderID int64, req PreviewRequest, cb session.CallbackProvider) (*PreviewResponse, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/orders/%d/change/preview", accountIDKey, orderID)
	if err := a.session.Send(ctx, "PUT", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["PreviewOrderResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing PreviewOrderResponse")
	}
	var out PreviewResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Change submits a previewed modification of an existing open order.
func (a *API) Change(ctx context.Context, accountIDKey string, orderID int64, req PlaceRequest, cb session.CallbackProvider) (*PlaceResponse, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/orders/%d/change/place", accountIDKey, orderID)
	if err := a.session.Send(ctx, "PUT", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["PlaceOrderResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing PlaceOrderResponse")
	}
	var out PlaceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
