// Package geocode resolves listing locations to coordinates through the
// Google Maps Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anerudhh/Realistly-mvp/internal/config"
	"github.com/anerudhh/Realistly-mvp/internal/listing"
	"github.com/anerudhh/Realistly-mvp/internal/places"
)

// Location is a resolved geocoding result.
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	PlaceID          string  `json:"place_id"`
}

// Client calls the Maps geocoding endpoint. A nil result with a nil
// error means the service found nothing for the address; that is normal
// for vague listing locations, not a failure.
type Client struct {
	log        *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	callDelay  time.Duration
}

func NewClient(cfg config.GeocodingConfig, log *slog.Logger) *Client {
	return &Client{
		log:        log.With("component", "geocode_client"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		callDelay:  cfg.CallDelay,
	}
}

// Enabled reports whether the client has credentials to work with.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// CallDelay returns the configured pause between consecutive API calls.
func (c *Client) CallDelay() time.Duration {
	return c.callDelay
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		PlaceID          string `json:"place_id"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Lookup resolves a free-text address to coordinates.
func (c *Client) Lookup(ctx context.Context, address string) (*Location, error) {
	if address == "" || !c.Enabled() {
		return nil, nil
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	resp, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	if resp.Status != "OK" || len(resp.Results) == 0 {
		if resp.Status != "ZERO_RESULTS" {
			c.log.WarnContext(ctx, "geocoding returned no result",
				"status", resp.Status, "error_message", resp.ErrorMessage)
		}
		return nil, nil
	}

	r := resp.Results[0]
	return &Location{
		Latitude:         r.Geometry.Location.Lat,
		Longitude:        r.Geometry.Location.Lng,
		FormattedAddress: r.FormattedAddress,
		PlaceID:          r.PlaceID,
	}, nil
}

// ReverseLookup resolves coordinates to a formatted address.
func (c *Client) ReverseLookup(ctx context.Context, lat, lng float64) (*Location, error) {
	if !c.Enabled() {
		return nil, nil
	}

	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("key", c.apiKey)

	resp, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	if resp.Status != "OK" || len(resp.Results) == 0 {
		return nil, nil
	}

	r := resp.Results[0]
	return &Location{
		Latitude:         lat,
		Longitude:        lng,
		FormattedAddress: r.FormattedAddress,
		PlaceID:          r.PlaceID,
	}, nil
}

func (c *Client) get(ctx context.Context, q url.Values) (*geocodeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocode request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request returned status %d", httpResp.StatusCode)
	}

	var resp geocodeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding geocode response: %w", err)
	}
	return &resp, nil
}

// StandardizeAddress rewrites a listing location into a form the
// geocoder resolves reliably: known areas get their city and state
// appended, and everything gets an "India" suffix.
func StandardizeAddress(loc listing.FieldValue) string {
	s := locationString(loc)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	if !strings.Contains(lower, "india") {
		if _, city, ok := places.Match(s); ok && city != "" && !strings.Contains(lower, strings.ToLower(city)) {
			return s + ", " + city + ", India"
		}
		return s + ", India"
	}
	return s
}

// locationString flattens the tagged union into query text: area and
// city when structured, the raw string otherwise.
func locationString(loc listing.FieldValue) string {
	if loc.Scalar != "" {
		return strings.TrimSpace(loc.Scalar)
	}
	if len(loc.Structured) == 0 {
		return ""
	}

	var parts []string
	if area, ok := loc.Structured["area"].(string); ok && area != "" {
		parts = append(parts, area)
	}
	if city, ok := loc.Structured["city"].(string); ok && city != "" {
		parts = append(parts, city)
	}
	if len(parts) == 0 {
		return loc.Display()
	}
	return strings.Join(parts, ", ")
}

const earthRadiusKm = 6371

// Distance returns the great-circle distance between two coordinates in
// kilometres.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
