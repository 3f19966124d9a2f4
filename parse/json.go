package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidJSON wraps syntax errors in a JSON analysis.
	ErrInvalidJSON = errors.New("invalid analysis JSON")
	// ErrMissingSentences is returned for valid JSON without a "sentences" array.
	ErrMissingSentences = errors.New("analysis JSON has no sentences array")
)

// Analysis is one of the two JSON analysis schemas: *BreakdownAnalysis or
// *ChunkAnalysis.
type Analysis interface {
	// Len is the number of sentences.
	Len() int
	isAnalysis()
}

// ---------------------------------------------------------------------------
// Breakdown schema (analysis mode)
// ---------------------------------------------------------------------------

// VocabItem is one glossed word of a sentence.
type VocabItem struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// SentenceBreakdown pairs a sentence with its vocabulary and two translations.
type SentenceBreakdown struct {
	English            string      `json:"english"`
	Vocab              []VocabItem `json:"vocab"`
	LiteralTranslation string      `json:"literal_translation"`
	FluentTranslation  string      `json:"fluent_translation"`
}

// BreakdownAnalysis is the english/vocab/literal/fluent schema.
type BreakdownAnalysis struct {
	Sentences []SentenceBreakdown `json:"sentences"`
}

func (a *BreakdownAnalysis) Len() int { return len(a.Sentences) }
func (*BreakdownAnalysis) isAnalysis() {}

// ---------------------------------------------------------------------------
// Chunk schema (chunks mode)
// ---------------------------------------------------------------------------

// Chunk is a phrase of a sentence with its meaning.
type Chunk struct {
	Text    string `json:"text"`
	Meaning string `json:"meaning"`
	Grammar string `json:"grammar,omitempty"`
	Color   string `json:"color,omitempty"`
}

// ChunkedSentence is a sentence split into meaning chunks.
type ChunkedSentence struct {
	Original    string  `json:"original"`
	Translation string  `json:"translation"`
	Chunks      []Chunk `json:"chunks"`
}

// ChunkAnalysis is the original/translation/chunks schema.
type ChunkAnalysis struct {
	Sentences []ChunkedSentence `json:"sentences"`
}

func (a *ChunkAnalysis) Len() int { return len(a.Sentences) }
func (*ChunkAnalysis) isAnalysis() {}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// ParseJSONAnalysis decodes text strictly. The schema is chosen by shape:
// any sentence carrying "chunks" or "original" selects ChunkAnalysis,
// anything else (including an empty list) is a BreakdownAnalysis.
func ParseJSONAnalysis(text string) (Analysis, error) {
	var envelope struct {
		Sentences *[]map[string]json.RawMessage `json:"sentences"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidJSON)
	}
	if envelope.Sentences == nil {
		return nil, ErrMissingSentences
	}

	if isChunkShape(*envelope.Sentences) {
		var a ChunkAnalysis
		if err := json.Unmarshal([]byte(text), &a); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return &a, nil
	}

	var a BreakdownAnalysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if a.Sentences == nil {
		a.Sentences = []SentenceBreakdown{}
	}
	return &a, nil
}

func isChunkShape(sentences []map[string]json.RawMessage) bool {
	for _, s := range sentences {
		if _, ok := s["chunks"]; ok {
			return true
		}
		if _, ok := s["original"]; ok {
			return true
		}
	}
	return false
}
