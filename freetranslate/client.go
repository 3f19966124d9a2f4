// Package freetranslate talks to the free, keyless machine-translation
// endpoint and fans batches of sentences or words out to it.
//
// The endpoint answers with a nested JSON array whose first element lists
// translated segments; the translation of each segment is its first column:
//
//	[[["আমি ইংরেজি শিখছি।","I am learning English.",null,null,1]],null,"en"]
package freetranslate

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
)

// DefaultEndpoint is the public gtx endpoint.
const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

var (
	// ErrRateLimited is returned for HTTP 429.
	ErrRateLimited = errors.New("free translation rate limited")
	// ErrMalformedResponse is returned when the nested array does not have
	// the expected shape or yields no text.
	ErrMalformedResponse = errors.New("malformed free translation response")
)

// StatusError is a non-2xx, non-429 answer.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("free translation returned status %d: %s", e.Status, e.Body)
}

// Client translates single strings through the free endpoint.
type Client struct {
	// Endpoint defaults to DefaultEndpoint.
	Endpoint string
	// Source is the source language ("auto" when empty).
	Source string
	// Target is the target language ("bn" when empty).
	Target string
	// HTTP defaults to a client with a 15s timeout.
	HTTP *http.Client
}

// NewClient returns a client for source→target.
func NewClient(source, target string, httpClient *http.Client) *Client {
	return &Client{Source: source, Target: target, HTTP: httpClient}
}

func (c *Client) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return DefaultEndpoint
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// RequestURL builds the GET URL for text.
func (c *Client) RequestURL(text string) string {
	sl, tl := c.Source, c.Target
	if sl == "" {
		sl = "auto"
	}
	if tl == "" {
		tl = "bn"
	}
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sl)
	q.Set("tl", tl)
	q.Set("dt", "t")
	q.Set("q", text)
	return c.endpoint() + "?" + q.Encode()
}

// Translate returns the translation of text.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(text), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("free translation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Status: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return DecodeResponse(body)
}

// DecodeResponse joins the first column of every segment in data[0].
// Every nesting level is checked; anything unexpected is ErrMalformedResponse.
func DecodeResponse(body []byte) (string, error) {
	var data []any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(data) == 0 {
		return "", ErrMalformedResponse
	}
	segments, ok := data[0].([]any)
	if !ok {
		return "", ErrMalformedResponse
	}

	var sb strings.Builder
	for _, s := range segments {
		seg, ok := s.([]any)
		if !ok || len(seg) == 0 {
			continue
		}
		if text, ok := seg[0].(string); ok {
			sb.WriteString(text)
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrMalformedResponse
	}
	return out, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
