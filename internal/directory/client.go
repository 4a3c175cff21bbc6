// Package directory provides the HTTP client for the radio-browser.info API.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"radiobrowse/internal/cache"
	"radiobrowse/internal/station"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// DefaultLimit is used when a listing call doesn't specify how many
// stations it wants.
const DefaultLimit = 1000

// Client is the HTTP client for interacting with the radio-browser.info API.
type Client struct {
	client *resty.Client
	cache  *cache.Cache // nil disables listing caching
}

// NewClient creates a directory client against a discovered API server.
// listCache may be nil to disable caching of countries/languages listings.
func NewClient(listCache *cache.Cache) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(PickServer()).
			SetTimeout(requestTimeout).
			SetHeader("User-Agent", userAgent),
		cache: listCache,
	}
}

// SearchQuery describes a station search. Zero-valued fields are omitted;
// Limit defaults to DefaultLimit.
type SearchQuery struct {
	Name     string
	Country  string
	Language string
	Offset   int
	Limit    int
}

// TopStations fetches the top stations by vote count, deduplicated so each
// station name appears once at its highest bitrate.
func (c *Client) TopStations(ctx context.Context, limit int) ([]station.Station, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/json/stations/topvote/%d", limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top stations: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("api returned status %d: %s", resp.StatusCode(), resp.Status())
	}

	var stations []station.Station
	if err := json.Unmarshal(resp.Body(), &stations); err != nil {
		return nil, fmt.Errorf("failed to parse stations response: %w", err)
	}

	return station.DedupeByBitrate(stations), nil
}

// Search queries the directory by name, country, and/or language, ordered by
// votes descending, deduplicated by highest bitrate.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]station.Station, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	params := map[string]string{
		"offset":  strconv.Itoa(q.Offset),
		"limit":   strconv.Itoa(q.Limit),
		"order":   "votes",
		"reverse": "true",
	}
	if q.Name != "" {
		params["name"] = q.Name
	}
	if q.Country != "" {
		params["country"] = q.Country
	}
	if q.Language != "" {
		params["language"] = q.Language
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/json/stations/search")
	if err != nil {
		return nil, fmt.Errorf("failed to search stations: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("api returned status %d: %s", resp.StatusCode(), resp.Status())
	}

	var stations []station.Station
	if err := json.Unmarshal(resp.Body(), &stations); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return station.DedupeByBitrate(stations), nil
}

// Countries returns the sorted list of country names known to the directory.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	return c.namedListing(ctx, "countries", "/json/countries")
}

// Languages returns the sorted list of language names known to the directory.
func (c *Client) Languages(ctx context.Context) ([]string, error) {
	return c.namedListing(ctx, "languages", "/json/languages")
}

// namedListing fetches a {name,...} listing endpoint, with a disk cache in
// front of it — these lists barely change between runs.
func (c *Client) namedListing(ctx context.Context, key, path string) ([]string, error) {
	if c.cache != nil {
		var cached []string
		if c.cache.GetJSON(key, &cached) {
			log.Debug().Str("listing", key).Int("count", len(cached)).Msg("Listing loaded from cache")
			return cached, nil
		}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("api returned status %d: %s", resp.StatusCode(), resp.Status())
	}

	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", key, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)

	if c.cache != nil {
		if err := c.cache.SaveJSON(key, names); err != nil {
			log.Debug().Err(err).Str("listing", key).Msg("Failed to cache listing")
		}
	}

	return names, nil
}
