// Package barentswatch fetches live AIS positions for the registry rigs.
package barentswatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/schtekar/rigwatch/internal/model"
	"github.com/schtekar/rigwatch/internal/registry"
)

// Default BarentsWatch endpoints.
const (
	DefaultTokenURL = "https://id.barentswatch.no/connect/token"
	DefaultAISURL   = "https://live.ais.barentswatch.no/live/v1/latest/ais"
)

// Source tag recorded on messages from this feed.
const Source = "barentswatch"

// Client talks to the BarentsWatch token and live AIS endpoints.
type Client struct {
	httpc    *http.Client
	tokenURL string
	aisURL   string
}

// NewClient builds a client; empty URLs fall back to the defaults.
func NewClient(httpc *http.Client, tokenURL, aisURL string) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if aisURL == "" {
		aisURL = DefaultAISURL
	}
	return &Client{httpc: httpc, tokenURL: tokenURL, aisURL: aisURL}
}

// Token obtains an access token using the client-credentials grant.
func (c *Client) Token(ctx context.Context, clientID, clientSecret string) (string, error) {
	if clientID == "" || clientSecret == "" {
		return "", fmt.Errorf("missing BarentsWatch credentials")
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"scope":         {"ais"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token payload: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return payload.AccessToken, nil
}

// Message is one raw AIS message from the live feed.
type Message struct {
	MMSI      int64     `json:"mmsi"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	MsgTime   time.Time `json:"msgtime"`
}

// LatestPositions fetches AIS messages received since the given time.
func (c *Client) LatestPositions(ctx context.Context, token string, since time.Time) ([]Message, error) {
	u := c.aisURL + "?since=" + url.QueryEscape(since.UTC().Format("2006-01-02T15:04:05Z"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request ais feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var messages []Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, fmt.Errorf("decode ais payload: %w", err)
	}
	return messages, nil
}

// FilterLatestByRig keeps messages for registry rigs only, one per MMSI
// (the most recent). Messages without coordinates are dropped.
func FilterLatestByRig(messages []Message) []model.AISMessage {
	byMMSI := registry.ByMMSI()
	latest := make(map[int64]model.AISMessage)

	for _, msg := range messages {
		rigName, known := byMMSI[msg.MMSI]
		if !known || msg.Latitude == nil || msg.Longitude == nil || msg.MsgTime.IsZero() {
			continue
		}

		prev, seen := latest[msg.MMSI]
		if seen && !msg.MsgTime.After(prev.MsgTime) {
			continue
		}
		latest[msg.MMSI] = model.AISMessage{
			MMSI:      msg.MMSI,
			RigName:   rigName,
			Latitude:  *msg.Latitude,
			Longitude: *msg.Longitude,
			MsgTime:   msg.MsgTime,
			Source:    Source,
		}
	}

	out := make([]model.AISMessage, 0, len(latest))
	for _, msg := range latest {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MMSI < out[j].MMSI })
	return out
}
