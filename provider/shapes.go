package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sahaj-english/sahaj/freetranslate"
)

// call is everything a shape needs to build one request.
type call struct {
	desc         Descriptor
	credential   string
	systemPrompt string
	text         string
	mode         Mode
	// target is the target language code for the free endpoint.
	target string
}

// userMessage is the instruction paired with the passage.
func (c call) userMessage() string {
	if c.mode == ModeTranslation {
		return "Translate this text:\n\n" + c.text
	}
	return "Analyze this passage:\n\n" + c.text
}

func (c call) temperature() float64 {
	if c.mode.Pipe() && c.desc.Temperature > 0.3 {
		return 0.3
	}
	return c.desc.Temperature
}

// requestShape builds a request and extracts the answer text for one
// wire format. parse returns "" when the expected path is absent.
type requestShape interface {
	build(ctx context.Context, c call) (*http.Request, error)
	parse(body []byte) (string, error)
}

func shapeFor(s Shape) (requestShape, error) {
	switch s {
	case ShapeChatCompletion:
		return chatShape{}, nil
	case ShapeGenerate:
		return generateShape{}, nil
	case ShapeFreeTranslate:
		return freeShape{}, nil
	}
	return nil, fmt.Errorf("no request shape for %v", s)
}

// ---------------------------------------------------------------------------
// Chat completion: choices[0].message.content
// ---------------------------------------------------------------------------

type chatShape struct{}

func (chatShape) build(ctx context.Context, c call) (*http.Request, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	body, err := json.Marshal(struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
		Stream      bool    `json:"stream"`
	}{
		Model: c.desc.Model,
		Messages: []msg{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: c.userMessage()},
		},
		Temperature: c.temperature(),
		MaxTokens:   c.desc.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.desc.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.credential)
	return req, nil
}

func (chatShape) parse(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// ---------------------------------------------------------------------------
// Generate: candidates[0].content.parts[0].text
// ---------------------------------------------------------------------------

type generateShape struct{}

func (generateShape) build(ctx context.Context, c call) (*http.Request, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	}
	// The generate API takes a single user part; the prompt leads it.
	body, err := json.Marshal(struct {
		Contents         []content `json:"contents"`
		GenerationConfig genConfig `json:"generationConfig"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: c.systemPrompt + "\n\n" + c.userMessage()}}},
		},
		GenerationConfig: genConfig{Temperature: c.temperature(), MaxOutputTokens: c.desc.MaxTokens},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.desc.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.credential)
	return req, nil
}

func (generateShape) parse(body []byte) (string, error) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// ---------------------------------------------------------------------------
// Free translate: nested array, first column per segment
// ---------------------------------------------------------------------------

type freeShape struct{}

func (freeShape) build(ctx context.Context, c call) (*http.Request, error) {
	fc := freetranslate.Client{Endpoint: c.desc.URL(), Target: c.target}
	return http.NewRequestWithContext(ctx, http.MethodGet, fc.RequestURL(c.text), nil)
}

func (freeShape) parse(body []byte) (string, error) {
	return freetranslate.DecodeResponse(body)
}
