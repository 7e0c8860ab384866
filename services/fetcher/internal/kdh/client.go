// Package kdh fetches historical AIS positions from Kystdatahuset, the
// secondary source used to fill gaps the live feed leaves for rigs outside
// BarentsWatch coverage.
package kdh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/schtekar/rigwatch/internal/model"
	"github.com/schtekar/rigwatch/internal/registry"
)

// Default Kystdatahuset endpoints.
const (
	DefaultAuthURL = "https://kystdatahuset.no/ws/api/auth/login"
	DefaultAISURL  = "https://kystdatahuset.no/ws/api/ais/positions/for-mmsis-time"
)

// Source tag recorded on messages from this feed.
const Source = "kystdatahuset"

// Days-ago windows tried per rig, freshest first. The feed lags, so the
// evening of two days ago is the newest interval that reliably has data.
var lookbackDays = []int{2, 3}

// Client talks to the Kystdatahuset auth and positions endpoints.
type Client struct {
	httpc   *http.Client
	authURL string
	aisURL  string
}

// NewClient builds a client; empty URLs fall back to the defaults.
func NewClient(httpc *http.Client, authURL, aisURL string) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if aisURL == "" {
		aisURL = DefaultAISURL
	}
	return &Client{httpc: httpc, authURL: authURL, aisURL: aisURL}
}

// Token authenticates with username/password and returns a JWT.
func (c *Client) Token(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("missing Kystdatahuset credentials")
	}

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("request auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			JWT string `json:"JWT"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode auth payload: %w", err)
	}
	if !payload.Success || payload.Data.JWT == "" {
		return "", fmt.Errorf("authentication rejected")
	}
	return payload.Data.JWT, nil
}

// Window returns the 18:00-23:59 UTC interval of the day daysAgo days back,
// in the compact format the positions endpoint expects.
func Window(now time.Time, daysAgo int) (start, end string) {
	d := now.UTC().AddDate(0, 0, -daysAgo)
	s := time.Date(d.Year(), d.Month(), d.Day(), 18, 0, 0, 0, time.UTC)
	e := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 0, 0, time.UTC)
	return s.Format("200601021504"), e.Format("200601021504")
}

// positions queries one MMSI over one window. Response rows are positional
// arrays: [mmsi, timestamp, lon, lat, speed, course, ...]. A success=false
// payload means no data for the window, not an error.
func (c *Client) positions(ctx context.Context, token string, mmsi int64, start, end string) ([][]any, error) {
	body, err := json.Marshal(map[string]any{
		"mmsiIds":  []int64{mmsi},
		"start":    start,
		"end":      end,
		"minSpeed": 0,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.aisURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request positions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload struct {
		Success bool    `json:"success"`
		Data    [][]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode positions payload: %w", err)
	}
	if !payload.Success {
		return nil, nil
	}
	return payload.Data, nil
}

// FetchPositions returns the first and last position per registry rig from
// the freshest lookback window that has data. Rigs without data in any
// window are skipped.
func (c *Client) FetchPositions(ctx context.Context, token string, now time.Time) ([]model.AISMessage, error) {
	byMMSI := registry.ByMMSI()
	mmsis := make([]int64, 0, len(byMMSI))
	for mmsi := range byMMSI {
		mmsis = append(mmsis, mmsi)
	}
	sort.Slice(mmsis, func(i, j int) bool { return mmsis[i] < mmsis[j] })

	var out []model.AISMessage
	for _, mmsi := range mmsis {
		for _, daysAgo := range lookbackDays {
			start, end := Window(now, daysAgo)
			rows, err := c.positions(ctx, token, mmsi, start, end)
			if err != nil {
				return nil, fmt.Errorf("positions for %d: %w", mmsi, err)
			}
			if len(rows) == 0 {
				continue
			}

			first, okFirst := rowMessage(rows[0], mmsi, byMMSI[mmsi])
			if okFirst {
				out = append(out, first)
			}
			if len(rows) > 1 {
				if last, ok := rowMessage(rows[len(rows)-1], mmsi, byMMSI[mmsi]); ok {
					out = append(out, last)
				}
			}
			break
		}
	}
	return out, nil
}

func rowMessage(row []any, mmsi int64, rigName string) (model.AISMessage, bool) {
	if len(row) < 4 {
		return model.AISMessage{}, false
	}
	ts, okTS := row[1].(string)
	lon, okLon := row[2].(float64)
	lat, okLat := row[3].(float64)
	if !okTS || !okLon || !okLat {
		return model.AISMessage{}, false
	}

	t, err := parseTimestamp(ts)
	if err != nil {
		return model.AISMessage{}, false
	}
	return model.AISMessage{
		MMSI:      mmsi,
		RigName:   rigName,
		Latitude:  lat,
		Longitude: lon,
		MsgTime:   t.UTC(),
		Source:    Source,
	}, true
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
