// Package accounts wraps the account endpoints: listing, balances, and
// portfolio positions. All calls go through session.Send.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/casualjim/etrade"
	"github.com/casualjim/etrade/session"
)

// API is the accounts surface.
type API struct {
	session *session.Session
}

// New creates the accounts surface on top of a session.
func New(s *session.Session) *API {
	return &API{session: s}
}

// Account is one brokerage account.
type Account struct {
	InstNo          int32  `json:"instNo,omitempty"`
	AccountID       string `json:"accountId"`
	AccountIDKey    string `json:"accountIdKey"`
	AccountMode     string `json:"accountMode"`
	AccountDesc     string `json:"accountDesc"`
	AccountName     string `json:"accountName"`
	AccountType     string `json:"accountType"`
	InstitutionType string `json:"institutionType"`
	AccountStatus   string `json:"accountStatus"`
	ClosedDate      int64  `json:"closedDate"`
}

type accountListResponse struct {
	Response struct {
		Accounts struct {
			Account []Account `json:"Account"`
		} `json:"Accounts"`
	} `json:"AccountListResponse"`
}

// List returns every account visible to the authenticated user.
func (a *API) List(ctx context.Context, cb session.CallbackProvider) ([]Account, error) {
	var resp accountListResponse
	if err := a.session.Send(ctx, "GET", "/v1/accounts/list", nil, cb, &resp); err != nil {
		return nil, err
	}
	return resp.Response.Accounts.Account, nil
}

// Balance is the account balance summary.
type Balance struct {
	AccountID          string          `json:"accountId"`
	InstitutionType    string          `json:"institutionType,omitempty"`
	AsOfDate           int64           `json:"asOfDate,omitempty"`
	AccountType        string          `json:"accountType"`
	OptionLevel        string          `json:"optionLevel"`
	AccountDescription string          `json:"accountDescription"`
	QuoteMode          int32           `json:"quoteMode,omitempty"`
	DayTraderStatus    string          `json:"dayTraderStatus,omitempty"`
	AccountMode        string          `json:"accountMode,omitempty"`
	Computed           ComputedBalance `json:"Computed"`
}

// ComputedBalance carries the derived cash and margin figures.
type ComputedBalance struct {
	CashAvailableForInvestment float64        `json:"cashAvailableForInvestment"`
	CashAvailableForWithdrawal float64        `json:"cashAvailableForWithdrawal"`
	NetCash                    float64        `json:"netCash"`
	CashBalance                float64        `json:"cashBalance"`
	SettledCashForInvestment   float64        `json:"settledCashForInvestment"`
	UnSettledCashForInvestment float64        `json:"unSettledCashForInvestment"`
	MarginBuyingPower          float64        `json:"marginBuyingPower,omitempty"`
	CashBuyingPower            float64        `json:"cashBuyingPower,omitempty"`
	AccountBalance             float64        `json:"accountBalance,omitempty"`
	RealTimeValues             RealTimeValues `json:"RealTimeValues"`
}

// RealTimeValues is the real-time account valuation.
type RealTimeValues struct {
	TotalAccountValue float64 `json:"totalAccountValue"`
	NetMv             float64 `json:"netMv"`
	NetMvLong         float64 `json:"netMvLong"`
	NetMvShort        float64 `json:"netMvShort,omitempty"`
}

// BalanceRequest selects what a balance call returns.
type BalanceRequest struct {
	InstType    string
	RealTimeNAV bool
	AccountType string
}

// Query implements session.Queryer.
func (r BalanceRequest) Query() (url.Values, error) {
	v := url.Values{}
	instType := r.InstType
	if instType == "" {
		instType = "BROKERAGE"
	}
	v.Set("instType", instType)
	if r.RealTimeNAV {
		v.Set("realTimeNAV", "true")
	}
	if r.AccountType != "" {
		v.Set("accountType", r.AccountType)
	}
	return v, nil
}

// Balance fetches the balance for an account.
func (a *API) Balance(ctx context.Context, accountIDKey string, req BalanceRequest, cb session.CallbackProvider) (*Balance, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/balance", accountIDKey)
	if err := a.session.Send(ctx, "GET", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["BalanceResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing BalanceResponse")
	}
	var balance Balance
	if err := json.Unmarshal(raw, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// PortfolioRequest filters and sorts a portfolio listing.
type PortfolioRequest struct {
	Count          int
	SortBy         string
	SortOrder      string
	MarketSession  string
	TotalsRequired bool
	LotsRequired   bool
	View           string
}

// Query implements session.Queryer.
func (r PortfolioRequest) Query() (url.Values, error) {
	v := url.Values{}
	if r.Count > 0 {
		v.Set("count", strconv.Itoa(r.Count))
	}
	if r.SortBy != "" {
		v.Set("sortBy", r.SortBy)
	}
	if r.SortOrder != "" {
		v.Set("sortOrder", r.SortOrder)
	}
	if r.MarketSession != "" {
		v.Set("marketSession", r.MarketSession)
	}
	if r.TotalsRequired {
		v.Set("totalsRequired", "true")
	}
	if r.LotsRequired {
		v.Set("lotsRequired", "true")
	}
	if r.View != "" {
		v.Set("view", r.View)
	}
	return v, nil
}

// Portfolio is the positions listing for one or more accounts.
type Portfolio struct {
	Totals           *PortfolioTotals   `json:"totals,omitempty"`
	AccountPortfolio []AccountPortfolio `json:"AccountPortfolio"`
}

// PortfolioTotals summarizes gains and market value across positions.
type PortfolioTotals struct {
	TodaysGainLoss    float64 `json:"todaysGainLoss"`
	TodaysGainLossPct float64 `json:"todaysGainLossPct"`
	TotalMarketValue  float64 `json:"totalMarketValue"`
	TotalGainLoss     float64 `json:"totalGainLoss"`
	TotalGainLossPct  float64 `json:"totalGainLossPct"`
	TotalPricePaid    float64 `json:"totalPricePaid"`
	CashBalance       float64 `json:"cashBalance"`
}

// AccountPortfolio is one account's page of positions.
type AccountPortfolio struct {
	AccountID      string     `json:"accountId"`
	Next           string     `json:"next"`
	TotalNoOfPages int32      `json:"totalNoOfPages"`
	NextPageNo     string     `json:"nextPageNo"`
	Position       []Position `json:"Position"`
}

// Position is a single holding.
type Position struct {
	PositionID        int64          `json:"positionId"`
	AccountID         string         `json:"accountId"`
	Product           etrade.Product `json:"Product"`
	SymbolDescription string         `json:"symbolDescription"`
	DateAcquired      int64          `json:"dateAcquired"`
	PricePaid         float64        `json:"pricePaid"`
	Price             float64        `json:"price"`
	Commissions       float64        `json:"commissions"`
	OtherFees         float64        `json:"otherFees"`
	Quantity          float64        `json:"quantity"`
	PositionIndicator string         `json:"positionIndicator"`
	PositionType      string         `json:"positionType"`
	DaysGain          float64        `json:"daysGain"`
	DaysGainPct       float64        `json:"daysGainPct"`
	MarketValue       float64        `json:"marketValue"`
	TotalCost         float64        `json:"totalCost"`
	TotalGain         float64        `json:"totalGain"`
	TotalGainPct      float64        `json:"totalGainPct"`
	PctOfPortfolio    float64        `json:"pctOfPortfolio"`
	CostPerShare      float64        `json:"costPerShare"`
}

// Portfolio fetches the positions for an account.
func (a *API) Portfolio(ctx context.Context, accountIDKey string, req PortfolioRequest, cb session.CallbackProvider) (*Portfolio, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/accounts/%s/portfolio", accountIDKey)
	if err := a.session.Send(ctx, "GET", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["PortfolioResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing PortfolioResponse")
	}
	var portfolio Portfolio
	if err := json.Unmarshal(raw, &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}
