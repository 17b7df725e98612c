// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode talks to the Google Maps Geocoding and Places web services.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jcodagnone/placesbot/utils/httputils"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the root of the Google Maps web services.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// Options configures a Client.
type Options struct {
	// APIKey is the Google Maps API key
	APIKey string

	// BaseURL overrides DefaultBaseURL, mostly for tests
	BaseURL string

	// Language biases names and addresses in responses (e.g. "en")
	Language string

	// RequestsPerSecond caps outgoing calls, zero disables the limiter
	RequestsPerSecond float64

	// HTTP is the client used for requests, defaults to a 10s timeout client
	HTTP *http.Client
}

// Client is a thin client for the Geocoding, Find Place and Place Details APIs.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Google Maps client. It fails fast with
// ErrMissingAPIKey so no request is ever sent without credentials.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = httputils.NewClient(&httputils.ClientOptions{Timeout: 10 * time.Second})
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   opts.Language,
		httpClient: httpClient,
		limiter:    limiter,
	}, nil
}

// getJSON performs a GET on endpoint with params plus the API key and decodes
// the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Type: ErrorTypeTimeout, Message: "waiting for rate limiter", Err: err}
		}
	}

	params.Set("key", c.apiKey)

	if c.language != "" {
		params.Set("language", c.language)
	}

	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errType := ErrorTypeNetworkError
		if errors.Is(err, context.DeadlineExceeded) || IsTimeoutError(err) {
			errType = ErrorTypeTimeout
		}

		return &Error{Type: errType, Message: endpoint + " request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return ClassifyHTTPError(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Type: ErrorTypeUnknown, Message: "decoding response", Err: err}
	}

	return nil
}
