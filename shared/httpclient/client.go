// Package httpclient holds the shared HTTP clients for outbound calls. Every
// external collaborator gets an explicit timeout; a deadline hit is translated
// to a typed timeout error by the caller via apperr.FromRequestError.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"moul.io/http2curl"
)

// Debug enables logging of outbound requests as curl commands.
var Debug bool

// MetadataClient is for metadata provider lookups (TMDB).
var MetadataClient = &http.Client{
	Timeout: 5 * time.Second,
}

// CatalogClient is for media catalog and download client calls, which can be
// slower on a busy NAS.
var CatalogClient = &http.Client{
	Timeout: 10 * time.Second,
}

// Do performs the request on the given client, logging it in debug mode.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	if client == nil {
		client = CatalogClient
	}
	if Debug {
		if command, err := http2curl.GetCurlCommand(req); err == nil {
			slog.Debug("outbound request", "curl", command.String())
		}
	}
	return client.Do(req)
}

// Get performs a GET with context and returns the response unread. The caller
// owns the body.
func Get(ctx context.Context, client *http.Client, apiURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return Do(client, req)
}

// BuildQueryURL builds a URL with query parameters.
func BuildQueryURL(baseURL string, params map[string]string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// DecodeJSON decodes a JSON response body and closes it.
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ReadBody reads and closes the response body, for error messages.
func ReadBody(resp *http.Response) []byte {
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return body
}
