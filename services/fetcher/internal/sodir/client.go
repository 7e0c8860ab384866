// Package sodir fetches wellbore features from the SODIR FactMaps
// FeatureServer using OBJECTID-range pagination.
package sodir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/schtekar/rigwatch/internal/model"
)

// DefaultQueryURL targets layer 201 (all wellbores) in WGS84.
const DefaultQueryURL = "https://factmaps.sodir.no/api/rest/services/Factmaps/FactMapsWGS84/FeatureServer/201/query"

const outFields = "wlbWellboreName,wlbWell,wlbPurpose,wlbStatus,wlbEntryDate," +
	"wlbDrillingFacilityFixedOrMove,wlbDrillingFacility,wlbDrillingOperator," +
	"wlbWellType,wlbField,wlbFactPageUrl"

// Filtering rules for the wells document.
const (
	DaysLookback = 100
)

var excludedStatuses = map[string]bool{
	"WILL NEVER BE DRILLED": true,
}

// Client queries the SODIR FeatureServer. Page requests are paced by the
// limiter so a full crawl stays polite.
type Client struct {
	httpc    *http.Client
	queryURL string
	limiter  *rate.Limiter
}

// NewClient builds a client. A nil httpc falls back to http.DefaultClient;
// requestsPerSecond <= 0 disables pacing.
func NewClient(httpc *http.Client, queryURL string, requestsPerSecond float64) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if queryURL == "" {
		queryURL = DefaultQueryURL
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		httpc:    httpc,
		queryURL: queryURL,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Feature is one raw FeatureServer feature.
type Feature struct {
	Attributes Attributes `json:"attributes"`
	Geometry   *Geometry  `json:"geometry"`
}

// Attributes holds the requested wellbore fields.
type Attributes struct {
	WellboreName string          `json:"wlbWellboreName"`
	Well         string          `json:"wlbWell"`
	Purpose      string          `json:"wlbPurpose"`
	Status       string          `json:"wlbStatus"`
	EntryDate    json.RawMessage `json:"wlbEntryDate"`
	FixedOrMove  string          `json:"wlbDrillingFacilityFixedOrMove"`
	Facility     string          `json:"wlbDrillingFacility"`
	Operator     string          `json:"wlbDrillingOperator"`
	WellType     string          `json:"wlbWellType"`
	Field        string          `json:"wlbField"`
	FactPageURL  string          `json:"wlbFactPageUrl"`
}

// Geometry is a point geometry in WGS84.
type Geometry struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FetchObjectIDs returns all OBJECTIDs on the layer, sorted ascending.
func (c *Client) FetchObjectIDs(ctx context.Context) ([]int64, error) {
	params := url.Values{
		"where":         {"1=1"},
		"returnIdsOnly": {"true"},
		"f":             {"json"},
	}

	var payload struct {
		ObjectIDs []int64 `json:"objectIds"`
	}
	if err := c.query(ctx, params, &payload); err != nil {
		return nil, fmt.Errorf("fetch object ids: %w", err)
	}

	ids := payload.ObjectIDs
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// FetchFeatures retrieves all features by querying OBJECTID ranges of
// pageSize ids at a time.
func (c *Client) FetchFeatures(ctx context.Context, objectIDs []int64, pageSize int) ([]Feature, error) {
	if pageSize <= 0 {
		pageSize = 1000
	}

	features := make([]Feature, 0, len(objectIDs))
	for i := 0; i < len(objectIDs); i += pageSize {
		end := i + pageSize
		if end > len(objectIDs) {
			end = len(objectIDs)
		}
		batch := objectIDs[i:end]

		params := url.Values{
			"where":     {fmt.Sprintf("OBJECTID >= %d AND OBJECTID <= %d", batch[0], batch[len(batch)-1])},
			"outFields": {outFields},
			"outSR":     {"4326"},
			"f":         {"json"},
		}

		var payload struct {
			Features []Feature `json:"features"`
		}
		if err := c.query(ctx, params, &payload); err != nil {
			return nil, fmt.Errorf("fetch features %d-%d: %w", batch[0], batch[len(batch)-1], err)
		}
		features = append(features, payload.Features...)
	}
	return features, nil
}

func (c *Client) query(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request feature server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// ParseEntryDate interprets the wlbEntryDate attribute, which shows up as an
// ESRI epoch-milliseconds number, a YYYYMMDD number, or an ISO-like string.
// Missing or unparseable values return ok=false.
func ParseEntryDate(raw json.RawMessage) (time.Time, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == `""` || s == "0" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Epoch milliseconds are ~1.7e12; YYYYMMDD values are ~2e7.
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), true
		}
		if t, err := time.Parse("20060102", strconv.FormatInt(n, 10)); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return time.Time{}, false
	}
	if len(str) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", str[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FilterWells applies the document rules: geometry required, excluded
// statuses dropped, and only wells entered within the lookback window or
// not yet entered at all survive.
func FilterWells(features []Feature, now time.Time) []model.Well {
	cutoff := now.AddDate(0, 0, -DaysLookback)
	wells := make([]model.Well, 0, len(features))

	for _, f := range features {
		if f.Geometry == nil {
			continue
		}

		status := strings.ToUpper(f.Attributes.Status)
		if excludedStatuses[status] {
			continue
		}

		entryDate, entered := ParseEntryDate(f.Attributes.EntryDate)
		if entered && entryDate.Before(cutoff) {
			continue
		}

		entry := ""
		if entered {
			entry = entryDate.Format("2006-01-02")
		}

		wells = append(wells, model.Well{
			Name:        f.Attributes.WellboreName,
			Well:        f.Attributes.Well,
			Status:      status,
			EntryDate:   entry,
			RigName:     orUnknown(f.Attributes.Facility),
			RigType:     orUnknown(f.Attributes.FixedOrMove),
			Operator:    orUnknown(f.Attributes.Operator),
			WellType:    orUnknown(f.Attributes.WellType),
			Field:       orUnknown(f.Attributes.Field),
			FactPageURL: f.Attributes.FactPageURL,
			Lat:         model.NewCoord(f.Geometry.Y),
			Lon:         model.NewCoord(f.Geometry.X),
		})
	}
	return wells
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
