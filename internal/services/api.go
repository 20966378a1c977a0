// API service for making raw HTTP requests to the Downbeats API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/downbeats/internal/models"
)

const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultAPIBaseURL = "http://localhost:8000/api"

	// ResourcePath is appended to the API base URL for every endpoint.
	ResourcePath = "/downbeats"
)

// APIService provides methods for making raw HTTP requests to {API_BASE_URL}/downbeats.
//
// It does not interpret status codes; see [DownbeatsService] for the typed contract.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service rooted at apiBaseURL + [ResourcePath].
func NewAPIService(apiBaseURL string, client *http.Client) *APIService {
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(apiBaseURL, "/") + ResourcePath,
		httpClient: client,
	}
}

// BaseURL returns the resolved endpoint root.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do sends a request to the specified path and returns the raw response.
//
// An error is returned only when the request cannot be built, sent, or read.
func (a *APIService) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*APIResponse, error) {
	fullURL := a.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil, "")
}

// Delete performs a DELETE request with no body.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodDelete, path, nil, "")
}

// Send encodes payload as multipart/form-data and sends it with the given method.
func (a *APIService) Send(ctx context.Context, method, path string, payload models.Payload) (*APIResponse, error) {
	body, contentType, err := EncodeForm(payload)
	if err != nil {
		return nil, err
	}
	return a.Do(ctx, method, path, body, contentType)
}
