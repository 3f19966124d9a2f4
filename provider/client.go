package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client sends analysis requests to providers. The zero value is not
// usable; construct with NewClient.
type Client struct {
	// Providers is the descriptor table, normally DefaultProviders().
	Providers map[ID]Descriptor
	// Prompts resolves the system prompt per mode. Nil means built-ins.
	Prompts *Prompts
	// TargetCode is the target language code ("bn").
	TargetCode string
	// TargetName is the language name used in prompts ("Bangla").
	TargetName string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// HTTP overrides the per-provider client. Used by tests.
	HTTP   *http.Client
	Logger *zerolog.Logger
}

// NewClient returns a client over the built-in providers targeting Bangla.
func NewClient() *Client {
	return &Client{
		Providers:  DefaultProviders(),
		TargetCode: "bn",
		TargetName: "Bangla",
	}
}

// Descriptor returns the descriptor for id.
func (c *Client) Descriptor(id ID) (Descriptor, error) {
	d, ok := c.Providers[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	return d, nil
}

func (c *Client) log() *zerolog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// RequestAnalysis sends text to provider id and returns its answer with
// any Markdown fence removed. The answer is not parsed further. Failures
// are *HTTPError or *TransportError for transport problems and
// *EmptyResponseError when a 2xx carried no text. There are no retries.
func (c *Client) RequestAnalysis(ctx context.Context, text string, id ID, credential string, mode Mode) (string, error) {
	desc, err := c.Descriptor(id)
	if err != nil {
		return "", err
	}
	if desc.RequiresCredential && strings.TrimSpace(credential) == "" {
		return "", fmt.Errorf("%w for %s", ErrMissingCredential, desc.Name)
	}
	shape, err := shapeFor(desc.Shape)
	if err != nil {
		return "", err
	}

	req, err := shape.build(ctx, call{
		desc:         desc,
		credential:   credential,
		systemPrompt: c.Prompts.For(mode, c.TargetName),
		text:         text,
		mode:         mode,
		target:       c.TargetCode,
	})
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	start := time.Now()
	c.log().Debug().Str("provider", string(id)).Str("mode", string(mode)).Str("shape", desc.Shape.String()).Msg("sending request")

	resp, err := c.httpClient(desc).Do(req)
	if err != nil {
		return "", &TransportError{Provider: id, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", &TransportError{Provider: id, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.log().Debug().Str("provider", string(id)).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{Provider: id, Status: resp.StatusCode, Message: upstreamMessage(body)}
	}

	out, err := shape.parse(body)
	if err != nil {
		return "", &EmptyResponseError{Provider: id, Err: err}
	}
	out = strings.TrimSpace(StripCodeFence(out))
	if out == "" {
		return "", &EmptyResponseError{Provider: id}
	}
	return out, nil
}

func (c *Client) httpClient(desc Descriptor) *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return makeHTTPClient(c.Proxy, desc.Timeout)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// StripCodeFence returns the body of the first ``` or ```json fence in s,
// or s unchanged when there is none.
func StripCodeFence(s string) string {
	if m := markdownCodeBlock.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
