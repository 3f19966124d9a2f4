// Package analysis runs a passage through the whole pipeline: segmentation,
// the provider or the free batch translator, parsing, line reconciliation
// and the meaning cache.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sahaj-english/sahaj/cache"
	"github.com/sahaj-english/sahaj/freetranslate"
	"github.com/sahaj-english/sahaj/parse"
	"github.com/sahaj-english/sahaj/provider"
	"github.com/sahaj-english/sahaj/reconcile"
	"github.com/sahaj-english/sahaj/segment"
)

var (
	// ErrEmptyText is returned when there is nothing to analyze.
	ErrEmptyText = errors.New("no text to analyze")
	// ErrWrongMode is returned when a mode is sent to the wrong entry point.
	ErrWrongMode = errors.New("mode not supported here")
	// ErrNothingTranslated is returned when the free endpoint translated
	// none of the units of a non-empty passage.
	ErrNothingTranslated = errors.New("free translation returned nothing")
)

// minFreeVocabLength is the shortest word glossed on the free path.
const minFreeVocabLength = 3

// Request is one analysis request.
type Request struct {
	Text       string        `json:"text"`
	Provider   provider.ID   `json:"provider"`
	Credential string        `json:"-"`
	Mode       provider.Mode `json:"mode"`
}

// StableResult is the outcome of the pipe-protocol modes.
type StableResult struct {
	Provider   provider.ID       `json:"provider"`
	Lines      []reconcile.Line  `json:"lines"`
	Vocab      map[string]string `json:"vocab"`
	VocabOrder []string          `json:"vocabOrder"`
	// Dropped counts malformed protocol lines that were skipped.
	Dropped int `json:"dropped"`
	// Raw is the pipe protocol text the result was built from.
	Raw string `json:"raw"`
}

// Progress reports batch progress on the free path.
type Progress struct {
	Job   string `json:"job"` // "sentences" or "words"
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// Service wires the pipeline together. All fields are required except
// Logger.
type Service struct {
	Client    *provider.Client
	Sentences *freetranslate.Batcher
	Words     *freetranslate.Batcher
	Cache     *cache.MeaningCache
	Logger    *zerolog.Logger
}

// New builds a service whose free path goes through tr with default batch
// settings.
func New(client *provider.Client, tr freetranslate.Translator, c *cache.MeaningCache) *Service {
	return &Service{
		Client:    client,
		Sentences: freetranslate.NewSentenceBatcher(tr),
		Words:     freetranslate.NewWordBatcher(tr, c),
		Cache:     c,
	}
}

func (s *Service) log() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// WithProgress returns a copy of s whose free-path batches report to fn.
// fn may be called from different goroutines.
func (s *Service) WithProgress(fn func(Progress)) *Service {
	cp := *s
	cp.Sentences = s.Sentences.WithProgress(func(done, total int) {
		fn(Progress{Job: "sentences", Done: done, Total: total})
	})
	cp.Words = s.Words.WithProgress(func(done, total int) {
		fn(Progress{Job: "words", Done: done, Total: total})
	})
	return &cp
}

func (s *Service) validate(req *Request) (provider.Descriptor, error) {
	if strings.TrimSpace(req.Text) == "" {
		return provider.Descriptor{}, ErrEmptyText
	}
	if req.Mode == "" {
		req.Mode = provider.ModeStable
	}
	if req.Provider == "" {
		req.Provider = provider.GoogleTranslate
	}
	desc, err := s.Client.Descriptor(req.Provider)
	if err != nil {
		return desc, err
	}
	if desc.RequiresCredential && strings.TrimSpace(req.Credential) == "" {
		return desc, fmt.Errorf("%w for %s", provider.ErrMissingCredential, desc.Name)
	}
	return desc, nil
}

// ---------------------------------------------------------------------------
// Pipe modes
// ---------------------------------------------------------------------------

// Stable runs the stable or translation mode and returns reconciled lines
// and vocabulary. Vocabulary is merged into the cache.
func (s *Service) Stable(ctx context.Context, req Request) (*StableResult, error) {
	desc, err := s.validate(&req)
	if err != nil {
		return nil, err
	}
	if !req.Mode.Pipe() {
		return nil, fmt.Errorf("%w: %s", ErrWrongMode, req.Mode)
	}

	original := segment.Sentences(req.Text)

	var pr parse.PipeResult
	if desc.Shape == provider.ShapeFreeTranslate {
		pr, err = s.freePipe(ctx, original, req.Text)
		if err != nil {
			return nil, err
		}
	} else {
		raw, err := s.Client.RequestAnalysis(ctx, req.Text, req.Provider, req.Credential, req.Mode)
		if err != nil {
			return nil, err
		}
		pr = parse.ParsePipeSections(raw)
		if pr.Dropped > 0 {
			s.log().Warn().Str("provider", string(req.Provider)).Int("dropped", pr.Dropped).Msg("skipped malformed protocol lines")
		}
	}

	s.Cache.BulkPopulate(pr.Vocab)

	return &StableResult{
		Provider:   req.Provider,
		Lines:      reconcile.FromPairs(original, pr.Lines),
		Vocab:      pr.Vocab,
		VocabOrder: pr.VocabOrder,
		Dropped:    pr.Dropped,
		Raw:        parse.FormatPipeSections(pr),
	}, nil
}

// freePipe builds the pipe result from the free endpoint.
func (s *Service) freePipe(ctx context.Context, sentences []string, text string) (parse.PipeResult, error) {
	words := freeVocabWords(text)
	st, meanings := s.freeRun(ctx, sentences, words)

	pr := parse.PipeResult{Vocab: make(map[string]string)}
	for _, sent := range sentences {
		if t, ok := st.Lookup(sent); ok {
			pr.Lines = append(pr.Lines, parse.PipeLine{EN: sent, BN: t})
		}
	}
	for _, w := range words {
		if m, ok := meanings[w]; ok {
			pr.Vocab[w] = m
			pr.VocabOrder = append(pr.VocabOrder, w)
		}
	}

	if len(pr.Lines) == 0 && len(pr.Vocab) == 0 {
		if err := ctx.Err(); err != nil {
			return pr, err
		}
		return pr, ErrNothingTranslated
	}
	return pr, nil
}

func freeVocabWords(text string) []string {
	var out []string
	for _, w := range segment.Words(text) {
		if len([]rune(w)) >= minFreeVocabLength {
			out = append(out, w)
		}
	}
	return out
}

// freeRun translates sentences and words concurrently, each in its own
// batch run, and waits for both. Words already cached are not sent again;
// the returned meanings cover cached and fetched words.
func (s *Service) freeRun(ctx context.Context, sentences, words []string) (*freetranslate.Result, map[string]string) {
	meanings := make(map[string]string)
	var misses []string
	for _, w := range words {
		if m, ok := s.Cache.Get(w); ok {
			meanings[w] = m
			continue
		}
		misses = append(misses, w)
	}

	var (
		wg      sync.WaitGroup
		sentRes *freetranslate.Result
		wordRes *freetranslate.Result
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sentRes = s.Sentences.TranslateMany(ctx, sentences)
	}()
	go func() {
		defer wg.Done()
		wordRes = s.Words.TranslateMany(ctx, misses)
	}()
	wg.Wait()

	fetched := wordRes.Map()
	for k, v := range fetched {
		meanings[k] = v
	}
	s.Cache.BulkPopulate(fetched)
	s.log().Debug().
		Int("sentences", sentRes.Len()).
		Int("cached", len(words)-len(misses)).
		Int("fetched", len(fetched)).
		Msg("free translation done")

	return sentRes, meanings
}

// Lookup returns the meaning of a single word from the cache or the free
// endpoint.
func (s *Service) Lookup(ctx context.Context, word string) (string, bool) {
	return s.Words.GetOne(ctx, word)
}
