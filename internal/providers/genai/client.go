// Package genai talks to the Generative Language REST API for Veo video
// generation: long-running submit, operation polling and file download.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"masterpiece/internal/infra"
)

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel      = "veo-3.1-fast-generate-preview"
	DefaultResolution = "720p"

	apiKeyHeader = "x-goog-api-key"
)

// Options controls how the client is configured. The API key is not part of
// it: callers pass the key active at call time.
type Options struct {
	BaseURL    string
	Model      string
	Resolution string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin REST facade. It performs no retries.
type Client struct {
	baseURL    string
	model      string
	resolution string
	httpClient *http.Client
	logger     *infra.Logger
}

// VideoRequest is a single image-to-video request.
type VideoRequest struct {
	Prompt      string
	Image       []byte
	MIMEType    string
	AspectRatio string
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	resolution := strings.TrimSpace(opts.Resolution)
	if resolution == "" {
		resolution = DefaultResolution
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		resolution: resolution,
		httpClient: client,
		logger:     logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateVideos starts a long-running generation and returns the pending
// operation.
func (c *Client) GenerateVideos(ctx context.Context, apiKey string, req VideoRequest) (*Operation, error) {
	payload := predictRequest{
		Instances: []predictInstance{{
			Prompt: req.Prompt,
			Image: &inlineImage{
				BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.Image),
				MIMEType:           req.MIMEType,
			},
		}},
		Parameters: predictParameters{
			AspectRatio: req.AspectRatio,
			Resolution:  c.resolution,
			SampleCount: 1,
		},
	}

	var op Operation
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.model))
	if err := c.invoke(ctx, http.MethodPost, path, apiKey, payload, &op); err != nil {
		return nil, err
	}
	if op.Name == "" {
		return nil, fmt.Errorf("genai: submit returned no operation name")
	}
	c.logger.Debug().
		Str("model", c.model).
		Str("operation", op.Name).
		Str("aspect_ratio", req.AspectRatio).
		Msg("genai: video operation started")
	return &op, nil
}

// GetOperation fetches the current state of a long-running operation.
func (c *Client) GetOperation(ctx context.Context, apiKey, name string) (*Operation, error) {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return nil, fmt.Errorf("genai: operation name is empty")
	}
	var op Operation
	if err := c.invoke(ctx, http.MethodGet, "/"+name, apiKey, nil, &op); err != nil {
		return nil, err
	}
	if op.Name == "" {
		op.Name = name
	}
	return &op, nil
}

// Download fetches a generated file. The key travels as a query parameter
// because result URIs are fetched like plain links.
func (c *Client) Download(ctx context.Context, apiKey, uri string) ([]byte, string, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	if apiKey != "" {
		q := req.URL.Query()
		q.Set("key", apiKey)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	// Redirects the client did not follow are failures too.
	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, "", &DownloadError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) invoke(ctx context.Context, method, path, apiKey string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke genai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode genai response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{HTTPStatus: resp.StatusCode}
	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = statusText(resp)
	}
	return apiErr
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(resp.Status)
}
