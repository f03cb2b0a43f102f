/**
 * @description
 * This package provides a client for fetching the SWIFT/BIC reference dataset
 * from a remote HTTP source at process start, as an alternative to reading a
 * local JSON file. It encapsulates the authenticated request, status handling
 * and response size limits.
 *
 * @dependencies
 * - context, fmt, io, net/http, time: Standard Go libraries.
 */
package bicdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDatasetBytes caps the response body; the full AllCountries dataset is a
// few megabytes, anything past this is a misconfigured endpoint.
const maxDatasetBytes = 64 << 20

// Client fetches the raw BIC dataset document.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new dataset client. apiKey may be empty for public sources.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchDataset downloads the dataset document and returns its raw JSON bytes.
// Parsing is left to the caller so the degrade-to-empty decision stays in one
// place at bootstrap.
func (c *Client) FetchDataset(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset source returned status %d: %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes))
	if err != nil {
		return nil, fmt.Errorf("read dataset body: %w", err)
	}
	return raw, nil
}
