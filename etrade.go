// Package etrade provides shared types for the E*TRADE client library:
// the operating mode (sandbox vs live), credential pairs, and the handful
// of enums and records the API surfaces have in common.
package etrade

import "fmt"

// Mode selects the API environment. It determines both the base URL every
// request is sent to and the namespace credentials are stored under, so
// sandbox and live credentials never collide.
type Mode int

const (
	// Sandbox targets the E*TRADE sandbox environment.
	Sandbox Mode = iota
	// Live targets the production environment.
	Live
)

// ParseMode converts a string such as "sandbox" or "live" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "sandbox", "":
		return Sandbox, nil
	case "live", "prod", "production":
		return Live, nil
	default:
		return Sandbox, fmt.Errorf("unknown mode %q (want sandbox or live)", s)
	}
}

func (m Mode) String() string {
	if m == Live {
		return "live"
	}
	return "sandbox"
}

// Credentials is a key/secret pair. The same shape serves consumer
// credentials, request tokens, and access tokens.
type Credentials struct {
	Key    string
	Secret string
}

// Messages is the message list most API responses can carry.
type Messages struct {
	Message []Message `json:"Message,omitempty" xml:"Message"`
}

// IsEmpty reports whether the response carried no messages.
func (m Messages) IsEmpty() bool { return len(m.Message) == 0 }

// Message is a single informational or warning message from the API.
type Message struct {
	Description string `json:"description" xml:"description"`
	Code        int32  `json:"code" xml:"code"`
	Type        string `json:"type" xml:"type"` // WARNING, INFO, INFO_HOLD, ERROR
}

// Product identifies a tradable instrument.
type Product struct {
	Symbol          string  `json:"symbol" xml:"symbol"`
	SecurityType    string  `json:"securityType,omitempty" xml:"securityType"`
	SecuritySubType string  `json:"securitySubType,omitempty" xml:"securitySubType"`
	CallPut         string  `json:"callPut,omitempty" xml:"callPut"`
	ExpiryYear      int32   `json:"expiryYear,omitempty" xml:"expiryYear"`
	ExpiryMonth     int32   `json:"expiryMonth,omitempty" xml:"expiryMonth"`
	ExpiryDay       int32   `json:"expiryDay,omitempty" xml:"expiryDay"`
	StrikePrice     float64 `json:"strikePrice,omitempty" xml:"strikePrice"`
	ExpiryType      string  `json:"expiryType,omitempty" xml:"expiryType"`
}

// Security type values accepted by the API.
const (
	SecurityTypeEquity      = "EQ"
	SecurityTypeOption      = "OPTN"
	SecurityTypeMutualFund  = "MF"
	SecurityTypeMoneyMarket = "MMF"
)

// Market session values accepted by the API.
const (
	MarketSessionRegular  = "REGULAR"
	MarketSessionExtended = "EXTENDED"
)

// Sort order values accepted by the API.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)
