package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// System prompts
// ---------------------------------------------------------------------------

// StableSystemPrompt asks for the pipe protocol with a worked example.
const StableSystemPrompt = `You are an English-to-{{targetLang}} translation expert.
Your goal is to provide a structured analysis that is extremely stable and easy to parse.

TASK:
1. Translate the English passage line by line.
2. Provide a dictionary of all unique meaningful words/phrases in the passage with their {{targetLang}} meaning relative to this context.

OUTPUT FORMAT:
Your response MUST follow this exact structure:

[LINES]
English Line 1 ||| {{targetLang}} Translation 1
English Line 2 ||| {{targetLang}} Translation 2
...

[VOCAB]
word1 ||| {{targetLang}} meaning with pronunciation hint (if helpful)
word2 ||| {{targetLang}} meaning
...

RULES:
- Do NOT provide HTML or CSS.
- Do NOT provide conversational text.
- Use "|||" as the separator.
- Keep the {{targetLang}} natural and student-friendly.
- For [VOCAB], provide meanings that match the context of the passage.
- Ensure every line from the original English passage is translated.

Example:
[LINES]
I am learning English. ||| আমি ইংরেজি শিখছি।
It is very easy. ||| এটি খুব সহজ।

[VOCAB]
learning ||| শিখছি
English ||| ইংরেজি (ইংলিশ)
easy ||| সহজ`

// TranslationSystemPrompt asks for the pipe protocol without an example.
const TranslationSystemPrompt = `You are an English-to-{{targetLang}} translation expert.

TASK:
1. Translate each line of the given English text into natural {{targetLang}}.
2. Provide {{targetLang}} meanings for all unique meaningful words in the text.

OUTPUT FORMAT (STRICT):
[LINES]
English Line 1 ||| {{targetLang}} Translation 1
English Line 2 ||| {{targetLang}} Translation 2

[VOCAB]
word1 ||| {{targetLang}} meaning
word2 ||| {{targetLang}} meaning

RULES:
- Use "|||" as separator
- Keep {{targetLang}} natural and student-friendly
- Include all unique words (nouns, verbs, adjectives, adverbs)
- For context-dependent words, give meaning matching THIS text
- No extra commentary, just the translations`

// AnalysisSystemPrompt asks for the JSON breakdown schema.
const AnalysisSystemPrompt = `You are a strict data extraction engine.
Output MUST be valid JSON only. No markdown, no conversation.

SCHEMA:
{
  "sentences": [
    {
      "english": "Full sentence string",
      "vocab": [
        { "word": "word", "meaning": "{{targetLang}} meaning" }
      ],
      "literal_translation": "{{targetLang}} literal translation (Subject-Verb-Object structural mapping)",
      "fluent_translation": "{{targetLang}} fluent translation (Natural spoken {{targetLang}})"
    }
  ]
}

Ensure the JSON is minified or properly formatted, but it MUST be valid JSON.
Example for "I have a car":
literal: "আমার আছে একটি গাড়ি"
fluent: "আমার একটি গাড়ি আছে"`

// ChunksSystemPrompt asks for the JSON chunk schema.
const ChunksSystemPrompt = `You are a strict data extraction engine for language learners.
Output MUST be valid JSON only. No markdown, no conversation.

Split every sentence of the passage into short meaning chunks (phrases a
learner would read as one unit) and translate each chunk into {{targetLang}}.

SCHEMA:
{
  "sentences": [
    {
      "original": "Full English sentence",
      "translation": "Natural {{targetLang}} translation of the sentence",
      "chunks": [
        { "text": "English chunk", "meaning": "{{targetLang}} meaning", "grammar": "short grammar note (optional)", "color": "one of: blue, green, orange, purple, gray" }
      ]
    }
  ]
}

The chunks of a sentence, joined with spaces, MUST reproduce the original sentence.`

// ---------------------------------------------------------------------------
// Prompt set
// ---------------------------------------------------------------------------

// PromptsConfig is the on-disk prompts.json layout.
type PromptsConfig struct {
	Prompts map[string]string `json:"prompts"`
}

// Prompts resolves the system prompt for a mode. Overrides loaded from a
// file take precedence over the built-in prompts.
type Prompts struct {
	overrides map[Mode]string
}

// DefaultPrompts returns the built-in prompts keyed by mode.
func DefaultPrompts() map[Mode]string {
	return map[Mode]string{
		ModeStable:      StableSystemPrompt,
		ModeTranslation: TranslationSystemPrompt,
		ModeAnalysis:    AnalysisSystemPrompt,
		ModeChunks:      ChunksSystemPrompt,
	}
}

// LoadPrompts reads overrides from a prompts.json file. A missing file is
// not an error and yields the built-in prompts.
func LoadPrompts(path string) (*Prompts, error) {
	p := &Prompts{overrides: make(map[Mode]string)}
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var cfg PromptsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}
	for k, v := range cfg.Prompts {
		m, err := ParseMode(k)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if strings.TrimSpace(v) != "" {
			p.overrides[m] = v
		}
	}
	return p, nil
}

// WriteDefaultPrompts writes the built-in prompts to path as an editable
// prompts.json.
func WriteDefaultPrompts(path string) error {
	cfg := PromptsConfig{Prompts: make(map[string]string)}
	for m, v := range DefaultPrompts() {
		cfg.Prompts[string(m)] = v
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling default prompts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating prompts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing default prompts file: %w", err)
	}
	return nil
}

// For returns the prompt for mode with {{targetLang}} replaced.
func (p *Prompts) For(mode Mode, targetLang string) string {
	prompt := DefaultPrompts()[mode]
	if p != nil {
		if o, ok := p.overrides[mode]; ok {
			prompt = o
		}
	}
	if targetLang == "" {
		targetLang = "Bangla"
	}
	return strings.ReplaceAll(prompt, "{{targetLang}}", targetLang)
}
