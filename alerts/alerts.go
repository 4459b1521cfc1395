// Package alerts wraps the user alert endpoints.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/casualjim/etrade/session"
)

// API is the alerts surface.
type API struct {
	session *session.Session
}

// New creates the alerts surface on top of a session.
func New(s *session.Session) *API {
	return &API{session: s}
}

// Alert categories and statuses accepted by the list filter.
const (
	CategoryStock   = "STOCK"
	CategoryAccount = "ACCOUNT"

	StatusRead    = "READ"
	StatusUnread  = "UNREAD"
	StatusDeleted = "DELETED"
)

// ListRequest filters an alert listing.
type ListRequest struct {
	Count     int
	Category  string
	Status    string
	Direction string
	Search    string
}

// Query implements session.Queryer.
func (r ListRequest) Query() (url.Values, error) {
	v := url.Values{}
	if r.Count > 0 {
		v.Set("count", strconv.Itoa(r.Count))
	}
	if r.Category != "" {
		v.Set("category", r.Category)
	}
	if r.Status != "" {
		v.Set("status", r.Status)
	}
	if r.Direction != "" {
		v.Set("direction", r.Direction)
	}
	if r.Search != "" {
		v.Set("search", r.Search)
	}
	return v, nil
}

// Alert is one alert summary.
type Alert struct {
	ID         int64  `json:"id"`
	CreateTime int64  `json:"createTime"`
	Subject    string `json:"subject"`
	Status     string `json:"status,omitempty"`
}

// ListResponse is the alert listing.
type ListResponse struct {
	TotalAlerts int64   `json:"totalAlerts"`
	Alerts      []Alert `json:"alerts"`
}

// List returns the user's alerts.
func (a *API) List(ctx context.Context, req ListRequest, cb session.CallbackProvider) (*ListResponse, error) {
	var envelope map[string]json.RawMessage
	if err := a.session.Send(ctx, "GET", "/v1/users/alerts", req, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["AlertsResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing AlertsResponse")
	}
	var out ListResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Details is the full content of one alert.
type Details struct {
	ID         int64  `json:"id"`
	CreateTime int64  `json:"createTime"`
	Subject    string `json:"subject"`
	MsgText    string `json:"msgText"`
	ReadTime   int64  `json:"readTime,omitempty"`
	DeleteTime int64  `json:"deleteTime,omitempty"`
	Symbol     string `json:"symbol,omitempty"`
	Next       string `json:"next"`
	Prev       string `json:"prev"`
}

// Detail fetches one alert's full text. When html is set, markup is kept
// in the message body.
func (a *API) Detail(ctx context.Context, alertID string, html bool, cb session.CallbackProvider) (*Details, error) {
	var input any
	if html {
		input = url.Values{"htmlTags": []string{"true"}}
	}
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/users/alerts/%s", alertID)
	if err := a.session.Send(ctx, "GET", path, input, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["AlertDetailsResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing AlertDetailsResponse")
	}
	var out Details
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteResponse reports the outcome of an alert deletion.
type DeleteResponse struct {
	Result       string `json:"result"`
	FailedAlerts struct {
		AlertID []int64 `json:"alertId"`
	} `json:"failedAlerts"`
}

// Delete removes an alert.
func (a *API) Delete(ctx context.Context, alertID string, cb session.CallbackProvider) (*DeleteResponse, error) {
	var envelope map[string]json.RawMessage
	path := fmt.Sprintf("/v1/users/alerts/%s", alertID)
	if err := a.session.Send(ctx, "DELETE", path, nil, cb, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope["AlertsResponse"]
	if !ok {
		return nil, fmt.Errorf("response missing AlertsResponse")
	}
	var out DeleteResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
