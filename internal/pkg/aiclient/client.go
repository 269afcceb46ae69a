// Package aiclient talks to the recommendation and prediction service.
// Every failure is reported as an *Error that matches ErrUnavailable so
// callers can fall back without inspecting transport details.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"
)

const defaultTimeout = 3 * time.Second

// maxBodySize caps how much of a response is read
const maxBodySize = 1 << 20

var ErrUnavailable = errors.New("ai service unavailable")

// Kind classifies a failed call
type Kind string

const (
	KindConfig  Kind = "config"
	KindTimeout Kind = "timeout"
	KindNetwork Kind = "network"
	KindHTTP    Kind = "http"
	KindDecode  Kind = "decode"
	KindRequest Kind = "request"
)

// Error describes a failed call to the AI service
type Error struct {
	Path   string
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("ai %s http error: status=%d: %v", e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("ai %s %s error: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrUnavailable
func (e *Error) Is(target error) bool { return target == ErrUnavailable }

// Client represents the AI service HTTP client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a new AI service client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Room is the room shape the assignment heuristic expects
type Room struct {
	ID          string  `json:"_id"`
	RoomNumber  string  `json:"roomNumber"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"isAvailable"`
}

// Preferences are the guest's stay preferences
type Preferences struct {
	PreferredFloor string   `json:"preferredFloor"`
	RoomLocation   string   `json:"roomLocation"`
	Interests      []string `json:"interests"`
}

// SmartAssign returns the id of the best room among available
func (c *Client) SmartAssign(ctx context.Context, available, all []Room, prefs *Preferences) (string, error) {
	in := struct {
		AvailableRooms  []Room       `json:"available_rooms"`
		AllRooms        []Room       `json:"all_rooms"`
		UserPreferences *Preferences `json:"user_preferences,omitempty"`
	}{available, all, prefs}

	var out struct {
		BestRoomID string `json:"best_room_id"`
	}
	if err := c.post(ctx, "/smart-assign", in, &out); err != nil {
		return "", err
	}
	if out.BestRoomID == "" {
		return "", &Error{Path: "/smart-assign", Kind: KindDecode, Err: errors.New("missing best_room_id")}
	}
	return out.BestRoomID, nil
}

// Predict returns the predicted number of bookings for a month (1-12)
func (c *Client) Predict(ctx context.Context, month int) (int, error) {
	var out struct {
		PredictedBookings *int `json:"predicted_bookings"`
	}
	if err := c.post(ctx, "/predict", map[string]int{"month_to_predict": month}, &out); err != nil {
		return 0, err
	}
	if out.PredictedBookings == nil {
		return 0, &Error{Path: "/predict", Kind: KindDecode, Err: errors.New("missing predicted_bookings")}
	}
	return *out.PredictedBookings, nil
}

// DemandInput describes next month's demand
type DemandInput struct {
	PredictedBookings int `json:"predicted_bookings_next_month"`
	ActiveBookings    int `json:"active_bookings_next_month"`
	TotalRooms        int `json:"total_rooms"`
}

// PriceSuggestion is a suggested price adjustment
type PriceSuggestion struct {
	Percent int    `json:"suggestion_percent"`
	Reason  string `json:"reason"`
}

// DynamicPriceSuggestion asks for a price adjustment for next month
func (c *Client) DynamicPriceSuggestion(ctx context.Context, in DemandInput) (*PriceSuggestion, error) {
	var out struct {
		Percent *int   `json:"suggestion_percent"`
		Reason  string `json:"reason"`
	}
	if err := c.post(ctx, "/dynamic-price-suggestion", in, &out); err != nil {
		return nil, err
	}
	if out.Percent == nil {
		return nil, &Error{Path: "/dynamic-price-suggestion", Kind: KindDecode, Err: errors.New("missing suggestion_percent")}
	}
	return &PriceSuggestion{Percent: *out.Percent, Reason: out.Reason}, nil
}

// Demand is a qualitative demand level
type Demand struct {
	Level  string `json:"level"`
	Reason string `json:"reason"`
}

// DemandLevel classifies next month's demand
func (c *Client) DemandLevel(ctx context.Context, in DemandInput) (*Demand, error) {
	var out Demand
	if err := c.post(ctx, "/demand-level", in, &out); err != nil {
		return nil, err
	}
	if out.Level == "" {
		return nil, &Error{Path: "/demand-level", Kind: KindDecode, Err: errors.New("missing level")}
	}
	return &out, nil
}

// TypeRecommendation suggests a room category for a party
type TypeRecommendation struct {
	RecommendedType string `json:"recommended_type"`
	Reason          string `json:"reason"`
}

// RecommendType asks which room category suits the party
func (c *Client) RecommendType(ctx context.Context, guests int, tripType string) (*TypeRecommendation, error) {
	in := struct {
		Guests   int    `json:"guests"`
		TripType string `json:"trip_type"`
	}{guests, tripType}

	var out TypeRecommendation
	if err := c.post(ctx, "/recommend", in, &out); err != nil {
		return nil, err
	}
	if out.RecommendedType == "" {
		return nil, &Error{Path: "/recommend", Kind: KindDecode, Err: errors.New("missing recommended_type")}
	}
	return &out, nil
}

// ChatMessage is one turn of a concierge conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply is the concierge answer
type ChatReply struct {
	Reply  string `json:"reply"`
	Intent string `json:"intent"`
}

// Chat forwards a concierge message with the server-side token
func (c *Client) Chat(ctx context.Context, message string, history []ChatMessage) (*ChatReply, error) {
	if history == nil {
		history = []ChatMessage{}
	}
	in := struct {
		Message string        `json:"message"`
		History []ChatMessage `json:"history"`
		Token   string        `json:"token"`
	}{message, history, c.token}

	var out ChatReply
	if err := c.post(ctx, "/chat", in, &out); err != nil {
		return nil, err
	}
	if out.Reply == "" {
		return nil, &Error{Path: "/chat", Kind: KindDecode, Err: errors.New("missing reply")}
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	if c == nil || c.http == nil {
		return &Error{Path: path, Kind: KindConfig, Err: errors.New("client is nil")}
	}
	if c.baseURL == "" {
		return &Error{Path: path, Kind: KindConfig, Err: errors.New("base_url is empty")}
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return &Error{Path: path, Kind: KindRequest, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Path: path, Kind: KindRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyRequestError(ctx, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return classifyRequestError(ctx, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Path: path, Kind: KindHTTP, Status: resp.StatusCode, Err: fmt.Errorf("body=%s", truncate(body, 200))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Path: path, Kind: KindDecode, Err: err}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

func classifyRequestError(ctx context.Context, path string, err error) error {
	if isTimeoutError(ctx, err) {
		return &Error{Path: path, Kind: KindTimeout, Err: err}
	}
	if isNetworkError(err) {
		return &Error{Path: path, Kind: KindNetwork, Err: err}
	}
	return &Error{Path: path, Kind: KindRequest, Err: err}
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	return false
}
