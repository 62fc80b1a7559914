// Package travelapi provides travelquotes.Provider implementations: a live
// HTTP client for the upstream travel-search API, a mock provider backed by
// static fixture data, and a fallback combinator that selects between them.
package travelapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/triphive/triphive-api/internal/domain"
	"github.com/triphive/triphive-api/internal/ports/out/travelquotes"
)

const dateFormat = "2006-01-02"

// Client talks to the upstream travel-search API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	maxRetries    uint64
	retryBaseWait time.Duration
}

type ClientOptions struct {
	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
	// MaxRetries bounds retries after the first attempt. Defaults to 2.
	MaxRetries uint64
	// RetryBaseWait is the first fibonacci backoff step. Defaults to 200ms.
	RetryBaseWait time.Duration
}

func NewClient(baseURL, apiKey string, opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 2
	}
	baseWait := opts.RetryBaseWait
	if baseWait <= 0 {
		baseWait = 200 * time.Millisecond
	}
	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		http:          httpClient,
		maxRetries:    maxRetries,
		retryBaseWait: baseWait,
	}
}

type flightDTO struct {
	Carrier     string `json:"carrier"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartAt    string `json:"departAt"`
	ReturnAt    string `json:"returnAt"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
}

type carHireDTO struct {
	Supplier         string `json:"supplier"`
	Vehicle          string `json:"vehicle"`
	PricePerDayCents int64  `json:"pricePerDayCents"`
	Currency         string `json:"currency"`
}

func (c *Client) SearchFlights(ctx context.Context, q travelquotes.FlightQuery) ([]domain.FlightQuote, error) {
	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("destination", q.Destination)
	params.Set("depart", q.Depart.UTC().Format(dateFormat))
	params.Set("return", q.Return.UTC().Format(dateFormat))

	var dtos []flightDTO
	if err := c.getJSON(ctx, "/v1/flights", params, &dtos); err != nil {
		return nil, err
	}

	out := make([]domain.FlightQuote, 0, len(dtos))
	for _, d := range dtos {
		fq := domain.FlightQuote{
			Carrier:     d.Carrier,
			Origin:      d.Origin,
			Destination: d.Destination,
			PriceCents:  d.PriceCents,
			Currency:    d.Currency,
			Source:      domain.QuoteSourceLive,
		}
		if t, err := time.Parse(time.RFC3339, d.DepartAt); err == nil {
			fq.DepartAt = t
		}
		if t, err := time.Parse(time.RFC3339, d.ReturnAt); err == nil {
			fq.ReturnAt = t
		}
		out = append(out, fq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriceCents < out[j].PriceCents })
	return out, nil
}

func (c *Client) SearchCarHire(ctx context.Context, q travelquotes.CarHireQuery) ([]domain.CarHireQuote, error) {
	params := url.Values{}
	params.Set("location", q.Location)
	params.Set("from", q.From.UTC().Format(dateFormat))
	params.Set("to", q.To.UTC().Format(dateFormat))

	var dtos []carHireDTO
	if err := c.getJSON(ctx, "/v1/car-hire", params, &dtos); err != nil {
		return nil, err
	}

	out := make([]domain.CarHireQuote, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, domain.CarHireQuote{
			Supplier:         d.Supplier,
			Vehicle:          d.Vehicle,
			PricePerDayCents: d.PricePerDayCents,
			Currency:         d.Currency,
			Source:           domain.QuoteSourceLive,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PricePerDayCents < out[j].PricePerDayCents })
	return out, nil
}

// getJSON performs a GET with fibonacci backoff. Transport errors and 5xx
// responses are retried; anything else fails immediately.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path + "?" + params.Encode()

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.retryBaseWait))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("upstream status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("upstream status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", travelquotes.ErrUnavailable, err)
	}
	return nil
}
