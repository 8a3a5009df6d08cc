package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable marks a failed lookup, as opposed to a lookup that succeeded
// with zero matches.
var ErrUnavailable = errors.New("geocode: service unavailable")

// Result is one address suggestion.
type Result struct {
	FormattedAddress string  `json:"formatted_address"`
	City             string  `json:"city"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client queries the Nominatim search API, biased to Israel with
// Hebrew-language results.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		State        string `json:"state"`
		County       string `json:"county"`
	} `json:"address"`
}

// Search returns up to five suggestions for the free-text query. An empty
// slice is a valid answer; ErrUnavailable wraps transport and decode
// failures.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", "5")
	q.Set("countrycodes", "il")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept-Language", "he")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	results := make([]Result, 0, len(places))
	for _, p := range places {
		results = append(results, Result{
			FormattedAddress: p.DisplayName,
			City:             cityOf(p),
			Lat:              parseCoord(p.Lat),
			Lng:              parseCoord(p.Lon),
		})
	}
	return results, nil
}

// cityOf picks the most specific locality available, falling back to the
// first segment of the display name when the address block names nothing.
func cityOf(p nominatimPlace) string {
	for _, candidate := range []string{
		p.Address.City,
		p.Address.Town,
		p.Address.Village,
		p.Address.Municipality,
		p.Address.State,
		p.Address.County,
	} {
		if candidate != "" {
			return candidate
		}
	}
	if i := strings.Index(p.DisplayName, ","); i >= 0 {
		return strings.TrimSpace(p.DisplayName[:i])
	}
	return strings.TrimSpace(p.DisplayName)
}

func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
