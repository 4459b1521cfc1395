// Package market wraps the market data endpoints: quotes, symbol lookup,
// option chains, and option expiration dates. All calls go through
// session.Send.
package market

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

// API is the market data surface.
type API struct {
	session *session.Session
}

// New creates the market data surface on top of a session.
func New(s *session.Session) *API {
	return &API{session: s}
}

// Quote detail flag values.
const (
	DetailAll         = "ALL"
	DetailFundamental = "FUNDAMENTAL"
	DetailIntraday    = "INTRADAY"
	DetailOptions     = "OPTIONS"
	DetailWeek52      = "WEEK_52"
	DetailMutualFund  = "MF_DETAIL"
)

// Option chain type values.
const (
	ChainCall    = "CALL"
	ChainPut     = "PUT"
	ChainCallPut = "CALLPUT"
)

// Option category values.
const (
	CategoryStandard = "STANDARD"
	CategoryAll      = "ALL"
	CategoryMini     = "MINI"
)

// Strike price selection values.
const (
	PriceNearTheMoney = "ATNM"
	PriceAll          = "ALL"
)

// Expiration cycle values.
const (
	ExpiryUnspecified = "UNSPECIFIED"
	ExpiryDaily       = "DAILY"
	ExpiryWeekly      = "WEEKLY"
	ExpiryMonthly     = "MONTHLY"
	ExpiryQuarterly   = "QUARTERLY"
	ExpiryVIX         = "VIX"
	ExpiryAll         = "ALL"
	ExpiryMonthEnd    = "MONTHEND"
)

// QuotesRequest selects what a quote call returns.
type QuotesRequest struct {
	DetailFlag           string
	RequireEarningsDate  bool
	OverrideSymbolCount  bool
	SkipMiniOptionsCheck bool
}

// Query implements session.Queryer.
func (r QuotesRequest) Query() (url.Values, error) {
	v := url.Values{}
	if r.DetailFlag != "" {
		v.Set("detailFlag", r.DetailFlag)
	}
	if r.RequireEarningsDate {
		v.Set("requireEarningsDate", "true")
	}
	if r.OverrideSymbolCount {
		v.Set("overrideSymbolCount", "true")
	}
	if r.SkipMiniOptionsCheck {
		v.Set("skipMiniOptionsCheck", "true")
	}
	return v, nil
}

// QuotesResponse is the quote data for the requested symbols.
type QuotesResponse struct {
	QuoteData   []Quote         `json:"quoteData"`
	MessageList etrade.Messages `json:"messageList"`
}

// Quote is the quote for one symbol, with the sections selected by the
// detail flag.
type Quote struct {
	All            *AllQuoteDetails         `json:"All,omitempty"`
	DateTime       string                   `json:"dateTime"`
	DateTimeUTC    int64                    `json:"dateTimeUTC"`
	QuoteStatus    string                   `json:"quoteStatus,omitempty"`
	AHFlags        string                   `json:"ahFlags,omitempty"`
	ErrorMessage   string                   `json:"errorMessage,omitempty"`
	Fundamental    *FundamentalQuoteDetails `json:"fundamental,omitempty"`
	Intraday       *IntradayQuoteDetails    `json:"intraday,omitempty"`
	Option         *OptionQuoteDetails      `json:"option,omitempty"`
	Product        etrade.Product           `json:"Product"`
	Week52         *Week52QuoteDetails      `json:"week52,omitempty"`
	MutualFund     *MutualFundDetails       `json:"MutualFund,omitempty"`
	TimeZone       string                   `json:"timeZone,omitempty"`
	DSTFlag        bool                     `json:"dstFlag"`
	HasMiniOptions bool                     `json:"hasMiniOptions"`
}

// AllQuoteDetails is the full quote section.
type AllQuoteDetails struct {
	AdjustedFlag          bool    `json:"adjustedFlag"`
	AnnualDividend        float64 `json:"annualDividend"`
	Ask                   float64 `json:"ask"`
	AskSize               int64   `json:"askSize"`
	AskTime               string  `json:"askTime,omitempty"`
	Bid                   float64 `json:"bid"`
	BidExchange           string  `json:"bidExchange,omitempty"`
	BidSize               int64   `json:"bidSize"`
	BidTime               string  `json:"bidTime,omitempty"`
	ChangeClose           float64 `json:"changeClose"`
	ChangeClosePercentage float64 `json:"changeClosePercentage"`
	CompanyName           string  `json:"companyName"`
	DirLast               string  `json:"dirLast,omitempty"`
	Dividend              float64 `json:"dividend"`
	EPS                   float64 `json:"eps"`
	EstEarnings           float64 `json:"estEarnings"`
	ExDividendDate        int64   `json:"exDividendDate"`
	High                  float64 `json:"high"`
	High52                float64 `json:"high52"`
	LastTrade             float64 `json:"lastTrade"`
	Low                   float64 `json:"low"`
	Low52                 float64 `json:"low52"`
	Open                  float64 `json:"open"`
	OpenInterest          int64   `json:"openInterest"`
	PreviousClose         float64 `json:"previousClose"`
	PreviousDayVolume     int64   `json:"previousDayVolume"`
	PrimaryExchange       string  `json:"primaryExchange,omitempty"`
	SymbolDescription     string  `json:"symbolDescription"`
	TotalVolume           int64   `json:"totalVolume"`
	MarketCap             float64 `json:"marketCap"`
	SharesOutstanding     float64 `json:"sharesOutstanding"`
	NextEarningDate       string  `json:"nextEarningDate,omitempty"`
	Beta                  float64 `json:"beta"`
	Yield                 float64 `json:"yield"`
	DeclaredDividend      float64 `json:"declaredDividend"`
	DividendPayableDate   int64   `json:"dividendPayableDate"`
	PE                    float64 `json:"pe"`
	Week52LowDate         int64   `json:"week52LowDate"`
	Week52HiDate          int64   `json:"week52HiDate"`
	IntrinsicValue        float64 `json:"intrinsicValue"`
	TimePremium           float64 `json:"timePremium"`
	OptionMultiplier      float64 `json:"optionMultiplier"`
	ContractSize          float64 `json:"contractSize"`
	ExpirationDate        int64   `json:"expirationDate"`
	TimeOfLastTrade       int64   `json:"timeOfLastTrade"`
	AverageVolume         int64   `json:"averageVolume"`
}

// FundamentalQuoteDetails is the fundamentals quote section.
type FundamentalQuoteDetails struct {
	CompanyName       string  `json:"companyName"`
	EPS               float64 `json:"eps"`
	EstEarnings       float64 `json:"estEarnings"`
	High52            float64 `json:"high52"`
	LastTrade         float64 `json:"lastTrade"`
	Low52             float64 `json:"low52"`
	SymbolDescription string  `json:"symbolDescription"`
	Volume10Day       int64   `json:"volume10Day"`
}

// IntradayQuoteDetails is the intraday quote section.
type IntradayQuoteDetails struct {
	Ask                   float64 `json:"ask"`
	Bid                   float64 `json:"bid"`
	ChangeClose           float64 `json:"changeClose"`
	ChangeClosePercentage float64 `json:"changeClosePercentage"`
	CompanyName           string  `json:"companyName"`
	High                  float64 `json:"high"`
	LastTrade             float64 `json:"lastTrade"`
	Low                   float64 `json:"low"`
	TotalVolume           int64   `json:"totalVolume"`
}

// OptionQuoteDetails is the options quote section.
type OptionQuoteDetails struct {
	Ask               float64       `json:"ask"`
	AskSize           int64         `json:"askSize"`
	Bid               float64       `json:"bid"`
	BidSize           int64         `json:"bidSize"`
	CompanyName       string        `json:"companyName"`
	DaysToExpiration  int64         `json:"daysToExpiration"`
	LastTrade         float64       `json:"lastTrade"`
	OpenInterest      int64         `json:"openInterest"`
	OSIKey            string        `json:"osiKey,omitempty"`
	IntrinsicValue    float64       `json:"intrinsicValue"`
	TimePremium       float64       `json:"timePremium"`
	OptionMultiplier  float64       `json:"optionMultiplier"`
	ContractSize      float64       `json:"contractSize"`
	SymbolDescription string        `json:"symbolDescription"`
	OptionGreeks      *OptionGreeks `json:"OptionGreeks,omitempty"`
}

// Week52QuoteDetails is the 52-week quote section.
type Week52QuoteDetails struct {
	AnnualDividend    float64 `json:"annualDividend"`
	CompanyName       string  `json:"companyName"`
	High52            float64 `json:"high52"`
	LastTrade         float64 `json:"lastTrade"`
	Low52             float64 `json:"low52"`
	Perf12Months      float64 `json:"perf12Months"`
	PreviousClose     float64 `json:"previousClose"`
	SymbolDescription string  `json:"symbolDescription"`
	TotalVolume       int64   `json:"totalVolume"`
}

// MutualFundDetails is the mutual fund quote section.
type MutualFundDetails struct {
	SymbolDescription string  `json:"symbolDescription"`
	CUSIP             string  `json:"cusip,omitempty"`
	FundFamily        string  `json:"fundFamily"`
	FundName          string  `json:"fundName"`
	ChangeClose       float64 `json:"changeClose"`
	PreviousClose     float64 `json:"previousClose"`
	NetAssetValue     float64 `json:"netAssetValue"`
	PublicOfferPrice  float64 `json:"publicOfferPrice"`
	NetExpenseRatio   float64 `json:"netExpenseRatio"`
	GrossExpenseRatio float64 `json:"grossExpenseRatio"`
	TimeOfLastTrade   int64   `json:"timeOfLastTrade"`
	High52            float64 `json:"high52"`
	Low52             float64 `json:"low52"`
	ExchangeName      string  `json:"exchangeName,omitempty"`
}

// OptionGreeks are the risk sensitivities of an option quote.
type OptionGreeks struct {
	Rho          float64 `json:"rho"`
	Vega         float64 `json:"vega"`
	Theta        float64 `json:"theta"`
	Delta        float64 `json:"delta"`
	Gamma        float64 `json:"gamma"`
	IV           float64 `json:"iv"`
	CurrentValue bool    `json:"currentValue"`
}

// Quotes fetches quotes for up to 25 symbols (50 with OverrideSymbolCount).
func (a *API) Quotes(ctx context.Context, symbols []string, req QuotesRequest, cb session.CallbackProvider) (*QuotesResponse, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/market/quote/%s", strings.Join(symbols, ","))
	if err := a.session.Send(ctx, "GET", path, req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["QuoteResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing QuoteResponse")
	}
	var out QuotesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupResult is one symbol match.
type LookupResult struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Lookup searches for securities matching the given text.
func (a *API) Lookup(ctx context.Context, search string, cb session.CallbackProvider) ([]LookupResult, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/market/lookup/%s", url.PathEscape(search))
	if err := a.session.Send(ctx, "GET", path, nil, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["LookupResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing LookupResponse")
	}
	var out struct {
		Data []LookupResult `json:"Data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ChainsRequest selects an option chain. SkipAdjusted defaults to true when
// left nil.
type ChainsRequest struct {
	Symbol          string
	ExpiryYear      int
	ExpiryMonth     int
	ExpiryDay       int
	StrikePriceNear float64
	NoOfStrikes     int
	IncludeWeekly   bool
	SkipAdjusted    *bool
	ChainType       string
	PriceType       string
	OptionCategory  string
}

// Query implements session.Queryer.
func (r ChainsRequest) Query() (url.Values, error) {
	if r.Symbol == "" {
		return nil, fmt.Errorf("option chains require a symbol")
	}
	v := url.Values{}
	v.Set("symbol", r.Symbol)
	if r.ExpiryYear > 0 {
		v.Set("expiryYear", strconv.Itoa(r.ExpiryYear))
	}
	if r.ExpiryMonth > 0 {
		v.Set("expiryMonth", strconv.Itoa(r.ExpiryMonth))
	}
	if r.ExpiryDay > 0 {
		v.Set("expiryDay", strconv.Itoa(r.ExpiryDay))
	}
	if r.StrikePriceNear > 0 {
		v.Set("strikePriceNear", strconv.FormatFloat(r.StrikePriceNear, 'f', -1, 64))
	}
	if r.NoOfStrikes > 0 {
		v.Set("noOfStrikes", strconv.Itoa(r.NoOfStrikes))
	}
	if r.IncludeWeekly {
		v.Set("includeWeekly", "true")
	}
	skipAdjusted := true
	if r.SkipAdjusted != nil {
		skipAdjusted = *r.SkipAdjusted
	}
	v.Set("skipAdjusted", strconv.FormatBool(skipAdjusted))
	if r.ChainType != "" {
		v.Set("chainType", r.ChainType)
	}
	if r.PriceType != "" {
		v.Set("priceType", r.PriceType)
	}
	if r.OptionCategory != "" {
		v.Set("optionCategory", r.OptionCategory)
	}
	return v, nil
}

// ChainsResponse is one option chain.
type ChainsResponse struct {
	OptionPairs []ChainPair     `json:"OptionPair"`
	TimeStamp   int64           `json:"timeStamp"`
	QuoteType   string          `json:"quoteType"`
	NearPrice   float64         `json:"nearPrice"`
	SelectedED  *ExpirationDate `json:"SelectedED,omitempty"`
}

// ChainPair is the call and put at one strike.
type ChainPair struct {
	Call     *OptionDetails `json:"Call,omitempty"`
	Put      *OptionDetails `json:"Put,omitempty"`
	PairType string         `json:"pairType,omitempty"`
}

// OptionDetails is one option contract in a chain.
type OptionDetails struct {
	OptionCategory   string        `json:"optionCategory,omitempty"`
	OptionRootSymbol string        `json:"optionRootSymbol"`
	TimeStamp        int64         `json:"timeStamp"`
	AdjustedFlag     bool          `json:"adjustedFlag"`
	DisplaySymbol    string        `json:"displaySymbol"`
	OptionType       string        `json:"optionType"`
	StrikePrice      float64       `json:"strikePrice"`
	Symbol           string        `json:"symbol"`
	Bid              float64       `json:"bid"`
	Ask              float64       `json:"ask"`
	BidSize          int64         `json:"bidSize"`
	AskSize          int64         `json:"askSize"`
	InTheMoney       string        `json:"inTheMoney"`
	Volume           int64         `json:"volume"`
	OpenInterest     int64         `json:"openInterest"`
	NetChange        float64       `json:"netChange"`
	LastPrice        float64       `json:"lastPrice"`
	QuoteDetail      string        `json:"quoteDetail,omitempty"`
	OSIKey           string        `json:"osiKey"`
	OptionGreeks     *OptionGreeks `json:"OptionGreeks,omitempty"`
}

// OptionChains fetches the option chain for a symbol.
func (a *API) OptionChains(ctx context.Context, req ChainsRequest, cb session.CallbackProvider) (*ChainsResponse, error) {
	var envelope map[string]json.RawMessage
	if err := a.session.Send(ctx, "GET", "/v1/market/optionchains", req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["OptionChainResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing OptionChainResponse")
	}
	var out ChainsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExpireDatesRequest selects the expiration dates for a symbol.
type ExpireDatesRequest struct {
	Symbol     string
	ExpiryType string
}

// Query implements session.Queryer.
func (r ExpireDatesRequest) Query() (url.Values, error) {
	if r.Symbol == "" {
		return nil, fmt.Errorf("expiration dates require a symbol")
	}
	v := url.Values{}
	v.Set("symbol", r.Symbol)
	if r.ExpiryType != "" {
		v.Set("expiryType", r.ExpiryType)
	}
	return v, nil
}

// ExpirationDate is one option expiration.
type ExpirationDate struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	ExpiryType string `json:"expiryType,omitempty"`
}

// OptionExpireDates fetches the option expiration dates for a symbol.
func (a *API) OptionExpireDates(ctx context.Context, req ExpireDatesRequest, cb session.CallbackProvider) ([]ExpirationDate, error) {
	var envelope map[string]json.RawMessage
	if err := a.session.Send(ctx, "GET", "/v1/market/optionexpiredate", req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["OptionExpireDateResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing OptionExpireDateResponse")
	}
	var out struct {
		ExpirationDate []ExpirationDate `json:"ExpirationDate"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.ExpirationDate, nil
}
