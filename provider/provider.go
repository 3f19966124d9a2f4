// Package provider requests passage analyses from interchangeable
// translation backends: hosted LLM chat APIs, the Gemini generate API and
// the free machine-translation endpoint. Every backend is reduced to a
// single response string.
package provider

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

// ID identifies a provider.
type ID string

const (
	Groq            ID = "groq"
	OpenAI          ID = "openai"
	Together        ID = "together"
	HuggingFace     ID = "huggingface"
	Gemini          ID = "gemini"
	GoogleTranslate ID = "google-translate"
)

// ---------------------------------------------------------------------------
// Request shapes
// ---------------------------------------------------------------------------

// Shape selects how a request is built and a response read.
type Shape int

const (
	// ShapeChatCompletion is the OpenAI-compatible chat/completions API.
	ShapeChatCompletion Shape = iota
	// ShapeGenerate is Gemini generateContent.
	ShapeGenerate
	// ShapeFreeTranslate is the keyless nested-array GET endpoint.
	ShapeFreeTranslate
)

func (s Shape) String() string {
	switch s {
	case ShapeChatCompletion:
		return "chat-completion"
	case ShapeGenerate:
		return "generate"
	case ShapeFreeTranslate:
		return "free-translate"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// ---------------------------------------------------------------------------
// Modes
// ---------------------------------------------------------------------------

// Mode selects the prompt and therefore the output protocol.
type Mode string

const (
	// ModeAnalysis answers with the JSON breakdown schema.
	ModeAnalysis Mode = "analysis"
	// ModeTranslation answers with the pipe protocol.
	ModeTranslation Mode = "translation"
	// ModeStable answers with the pipe protocol, prompted with a worked example.
	ModeStable Mode = "stable"
	// ModeChunks answers with the JSON chunk schema.
	ModeChunks Mode = "chunks"
)

// Modes lists every mode.
var Modes = []Mode{ModeAnalysis, ModeTranslation, ModeStable, ModeChunks}

// ParseMode validates s.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid: analysis, translation, stable, chunks)", ErrUnknownMode, s)
}

// Pipe reports whether the mode answers with the pipe protocol.
func (m Mode) Pipe() bool {
	return m == ModeTranslation || m == ModeStable
}

// ---------------------------------------------------------------------------
// Descriptors
// ---------------------------------------------------------------------------

// Descriptor is the static description of a provider.
type Descriptor struct {
	ID   ID
	Name string
	// RequiresCredential is false only for the free endpoint.
	RequiresCredential bool
	// Endpoint is the request URL. "{model}" is replaced by Model.
	Endpoint    string
	Shape       Shape
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// URL returns Endpoint with the model substituted.
func (d Descriptor) URL() string {
	return strings.ReplaceAll(d.Endpoint, "{model}", d.Model)
}

// DefaultProviders returns the built-in provider table. The map is a fresh
// copy on every call.
func DefaultProviders() map[ID]Descriptor {
	return map[ID]Descriptor{
		Groq: {
			ID:                 Groq,
			Name:               "Groq",
			RequiresCredential: true,
			Endpoint:           "https://api.groq.com/openai/v1/chat/completions",
			Shape:              ShapeChatCompletion,
			Model:              "llama-3.3-70b-versatile",
			Temperature:        0.3,
			MaxTokens:          4096,
			Timeout:            60 * time.Second,
		},
		OpenAI: {
			ID:                 OpenAI,
			Name:               "OpenAI",
			RequiresCredential: true,
			Endpoint:           "https://api.openai.com/v1/chat/completions",
			Shape:              ShapeChatCompletion,
			Model:              "gpt-3.5-turbo",
			Temperature:        0.3,
			MaxTokens:          4000,
			Timeout:            60 * time.Second,
		},
		Together: {
			ID:                 Together,
			Name:               "Together AI",
			RequiresCredential: true,
			Endpoint:           "https://api.together.xyz/v1/chat/completions",
			Shape:              ShapeChatCompletion,
			Model:              "meta-llama/Llama-3-70b-chat-hf",
			Temperature:        0.3,
			MaxTokens:          4096,
			Timeout:            120 * time.Second,
		},
		HuggingFace: {
			ID:                 HuggingFace,
			Name:               "Hugging Face",
			RequiresCredential: true,
			Endpoint:           "https://router.huggingface.co/v1/chat/completions",
			Shape:              ShapeChatCompletion,
			Model:              "meta-llama/Llama-3.1-8B-Instruct",
			Temperature:        0.3,
			MaxTokens:          4096,
			Timeout:            120 * time.Second,
		},
		Gemini: {
			ID:                 Gemini,
			Name:               "Google Gemini",
			RequiresCredential: true,
			Endpoint:           "https://generativelanguage.googleapis.com/v1/models/{model}:generateContent",
			Shape:              ShapeGenerate,
			Model:              "gemini-2.0-flash",
			Temperature:        0.7,
			MaxTokens:          8096,
			Timeout:            120 * time.Second,
		},
		GoogleTranslate: {
			ID:       GoogleTranslate,
			Name:     "Google Translate (free)",
			Endpoint: "https://translate.googleapis.com/translate_a/single",
			Shape:    ShapeFreeTranslate,
			Timeout:  15 * time.Second,
		},
	}
}

// SortedIDs returns the IDs of providers in stable order.
func SortedIDs(providers map[ID]Descriptor) []ID {
	ids := make([]ID, 0, len(providers))
	for id := range providers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
