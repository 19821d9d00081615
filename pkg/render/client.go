// Package render provides a client for a headless-render service: an HTTP
// API that loads a page in a real browser, optionally runs an interaction
// script (fill a search box, click, wait for client-side rendering to
// settle) and returns the rendered markup and visible text.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for a locally hosted render service.
const defaultBaseURL = "http://localhost:3000"

// Client defines the render service operations.
type Client interface {
	// Render loads a page, runs the request's actions and returns the
	// settled page.
	Render(ctx context.Context, req Request) (*Response, error)
}

// Action is one browser interaction step.
type Action struct {
	Type     string `json:"type"` // write, click, press, wait
	Selector string `json:"selector,omitempty"`
	Text     string `json:"text,omitempty"`
	Key      string `json:"key,omitempty"`
	Millis   int    `json:"milliseconds,omitempty"`
}

// Write fills the element matching selector with text.
func Write(selector, text string) Action {
	return Action{Type: "write", Selector: selector, Text: text}
}

// Click clicks the element matching selector.
func Click(selector string) Action {
	return Action{Type: "click", Selector: selector}
}

// Press sends a key press (e.g. "Enter") to the focused element.
func Press(key string) Action {
	return Action{Type: "press", Key: key}
}

// Wait pauses the script for the given milliseconds.
func Wait(millis int) Action {
	return Action{Type: "wait", Millis: millis}
}

// Request is the body for POST /render.
type Request struct {
	URL           string   `json:"url"`
	Actions       []Action `json:"actions,omitempty"`
	WaitMillis    int      `json:"waitFor,omitempty"`
	TimeoutMillis int      `json:"timeout,omitempty"`
}

// Response is the render service's reply.
type Response struct {
	Success bool     `json:"success"`
	Data    PageData `json:"data"`
}

// PageData is one rendered page.
type PageData struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	HTML       string `json:"html"`
	Text       string `json:"text"`
	StatusCode int    `json:"statusCode"`
}

// APIError is returned when the service responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("render: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new render service client. Rendering is slow; the
// underlying client allows up to two minutes per call and callers bound it
// further with their context.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Render(ctx context.Context, req Request) (*Response, error) {
	var resp Response
	if err := c.post(ctx, "/render", req, &resp); err != nil {
		return nil, eris.Wrap(err, "render: render page")
	}
	return &resp, nil
}

func (c *httpClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "do request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
