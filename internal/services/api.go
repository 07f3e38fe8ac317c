// API service for making HTTP requests to the songlist server
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const DefaultBaseURL = "http://127.0.0.1:8000"

// APIService is a client for the songlist REST API and implements [Service].
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API client for the server at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// WithToken returns a copy of the client that sends token as a bearer credential.
func (a *APIService) WithToken(token string) *APIService {
	if token == "" {
		return a
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := *a.httpClient
	client.Transport = &oauth2.Transport{Source: source, Base: a.httpClient.Transport}

	return &APIService{baseURL: a.baseURL, httpClient: &client}
}

// BaseURL returns the server address the client talks to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// APIError is returned for a non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("api request failed with status %d: %s", e.StatusCode, e.Detail)
}

// Unwrap maps the status to the matching shared sentinel errors.
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	switch e.StatusCode {
	case http.StatusUnauthorized:
		errs = append(errs, shared.ErrNotAuthenticated)
	case http.StatusNotFound:
		errs = append(errs, shared.ErrSongNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		errs = append(errs, shared.ErrInvalidInput)
	case http.StatusServiceUnavailable:
		errs = append(errs, shared.ErrServiceUnavailable)
	}
	return errs
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	var jsonData any
	if err := json.Unmarshal(respBody, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// call sends in (when non-nil) as JSON and decodes a successful response into out.
func (a *APIService) call(ctx context.Context, method, path string, in, out any) error {
	var data []byte
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		data = encoded
	}

	resp, err := a.do(ctx, method, path, data)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(resp.Body, &body) == nil {
			apiErr.Detail = body.Detail
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login implements [Service].
func (a *APIService) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	var token models.TokenResponse
	if err := a.call(ctx, http.MethodPost, "/login", models.LoginRequest{Username: username, Password: password}, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Health implements [Service].
func (a *APIService) Health(ctx context.Context) error {
	return a.call(ctx, http.MethodGet, "/health", nil, nil)
}

// List implements [Service].
func (a *APIService) List(ctx context.Context, c models.Collection) ([]models.Song, error) {
	var songs []models.Song
	if err := a.call(ctx, http.MethodGet, "/"+c.String(), nil, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// Create implements [Service].
func (a *APIService) Create(ctx context.Context, c models.Collection, in models.SongInput) (*models.Song, error) {
	var song models.Song
	if err := a.call(ctx, http.MethodPost, "/"+c.String()+"/new", in, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// Update implements [Service].
func (a *APIService) Update(ctx context.Context, c models.Collection, patch models.SongPatch) (*models.Song, error) {
	var song models.Song
	if err := a.call(ctx, http.MethodPost, "/"+c.String()+"/update", patch, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// Move implements [Service].
func (a *APIService) Move(ctx context.Context, direction models.Direction, ids []string) (*models.BulkResult, error) {
	var result models.BulkResult
	req := models.MoveRequest{Direction: string(direction), IDs: ids}
	if err := a.call(ctx, http.MethodPost, "/move", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete implements [Service].
func (a *APIService) Delete(ctx context.Context, c models.Collection, ids []string) (*models.BulkResult, error) {
	var result models.BulkResult
	if err := a.call(ctx, http.MethodPost, "/"+c.String()+"/delete", models.DeleteRequest{IDs: ids}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
