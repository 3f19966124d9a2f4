package freetranslate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahaj-english/sahaj/cache"
	"github.com/sahaj-english/sahaj/segment"
)

// Translator translates one unit of text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// ---------------------------------------------------------------------------
// Result
// ---------------------------------------------------------------------------

// Result holds the successful translations of a batch run. Units that
// failed are absent; stored values are never empty. Lookups are
// case-insensitive.
type Result struct {
	mu sync.RWMutex
	m  map[string]string
}

func newResult() *Result {
	return &Result{m: make(map[string]string)}
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (r *Result) set(unit, translation string) {
	r.mu.Lock()
	r.m[foldKey(unit)] = translation
	r.mu.Unlock()
}

// Lookup returns the translation for any case-equivalent form of unit.
func (r *Result) Lookup(unit string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.m[foldKey(unit)]
	return t, ok
}

// Len returns the number of translated units.
func (r *Result) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

// Map returns a copy keyed by the case-folded unit.
func (r *Result) Map() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.m))
	for k, v := range r.m {
		out[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// Batcher
// ---------------------------------------------------------------------------

// Defaults for the free endpoint, tuned to stay under its rate limit.
const (
	DefaultSentenceBatchSize = 5
	DefaultSentenceDelay     = 100 * time.Millisecond
	DefaultWordBatchSize     = 10
	DefaultWordDelay         = 200 * time.Millisecond
	DefaultRetryBackoff      = 1000 * time.Millisecond
	DefaultCallTimeout       = 15 * time.Second
)

// Batcher translates many units through a Translator in sequential batches.
// Units inside a batch run concurrently; a batch finishes only when all of
// its units have settled.
type Batcher struct {
	Translator Translator
	// BatchSize is the number of units in flight at once.
	BatchSize int
	// Delay is the pause between batches (not after the last one).
	Delay time.Duration
	// RetryBackoff is the wait before the single retry after a 429.
	RetryBackoff time.Duration
	// CallTimeout bounds each individual call.
	CallTimeout time.Duration
	// Cache backs GetOne. May be nil.
	Cache *cache.MeaningCache
	// Logger receives per-unit failures at debug level. May be nil.
	Logger *zerolog.Logger
	// OnBatch is called after every batch with the number of settled units.
	OnBatch func(done, total int)
}

// NewSentenceBatcher returns a batcher with sentence defaults (5 per batch,
// 100ms apart).
func NewSentenceBatcher(tr Translator) *Batcher {
	return &Batcher{
		Translator:   tr,
		BatchSize:    DefaultSentenceBatchSize,
		Delay:        DefaultSentenceDelay,
		RetryBackoff: DefaultRetryBackoff,
		CallTimeout:  DefaultCallTimeout,
	}
}

// NewWordBatcher returns a batcher with word defaults (10 per batch, 200ms
// apart) backed by c.
func NewWordBatcher(tr Translator, c *cache.MeaningCache) *Batcher {
	return &Batcher{
		Translator:   tr,
		BatchSize:    DefaultWordBatchSize,
		Delay:        DefaultWordDelay,
		RetryBackoff: DefaultRetryBackoff,
		CallTimeout:  DefaultCallTimeout,
		Cache:        c,
	}
}

func (b *Batcher) effectiveBatchSize() int {
	if b.BatchSize > 0 {
		return b.BatchSize
	}
	return DefaultSentenceBatchSize
}

func (b *Batcher) effectiveRetryBackoff() time.Duration {
	if b.RetryBackoff > 0 {
		return b.RetryBackoff
	}
	return DefaultRetryBackoff
}

func (b *Batcher) effectiveCallTimeout() time.Duration {
	if b.CallTimeout > 0 {
		return b.CallTimeout
	}
	return DefaultCallTimeout
}

func (b *Batcher) log() *zerolog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// WithProgress returns a shallow copy of b reporting to fn.
func (b *Batcher) WithProgress(fn func(done, total int)) *Batcher {
	cp := *b
	cp.OnBatch = fn
	return &cp
}

// TranslateMany translates items, dropping case-insensitive duplicates.
// It never fails as a whole: units that could not be translated are simply
// absent from the result. Cancelling ctx stops further batches; units of
// the current batch see the cancellation through their own context.
func (b *Batcher) TranslateMany(ctx context.Context, items []string) *Result {
	res := newResult()

	seen := make(map[string]bool, len(items))
	var unique []string
	for _, it := range items {
		k := foldKey(it)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, strings.TrimSpace(it))
	}

	size := b.effectiveBatchSize()
	total := len(unique)
	for start := 0; start < total; start += size {
		if ctx.Err() != nil {
			break
		}
		end := min(start+size, total)

		var wg sync.WaitGroup
		for _, unit := range unique[start:end] {
			wg.Add(1)
			go func(unit string) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						b.log().Debug().Interface("panic", r).Str("unit", unit).Msg("translator panicked")
					}
				}()
				tr, err := b.translateOne(ctx, unit)
				if err != nil {
					b.log().Debug().Err(err).Str("unit", unit).Msg("translation failed")
					return
				}
				res.set(unit, tr)
			}(unit)
		}
		wg.Wait()

		if b.OnBatch != nil {
			b.OnBatch(end, total)
		}
		if end < total && b.Delay > 0 {
			if err := sleep(ctx, b.Delay); err != nil {
				break
			}
		}
	}
	return res
}

// translateOne performs one call, retrying exactly once after a 429.
func (b *Batcher) translateOne(ctx context.Context, unit string) (string, error) {
	out, err := b.call(ctx, unit)
	if errors.Is(err, ErrRateLimited) {
		b.log().Debug().Str("unit", unit).Dur("backoff", b.effectiveRetryBackoff()).Msg("rate limited, retrying once")
		if err := sleep(ctx, b.effectiveRetryBackoff()); err != nil {
			return "", err
		}
		out, err = b.call(ctx, unit)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrMalformedResponse
	}
	return out, nil
}

func (b *Batcher) call(ctx context.Context, unit string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.effectiveCallTimeout())
	defer cancel()
	return b.Translator.Translate(callCtx, unit)
}

// GetOne returns the meaning of a single word, consulting and filling the
// cache. Words that normalize to one character or less are rejected. A
// cache miss issues exactly one call; a 429 is not retried.
func (b *Batcher) GetOne(ctx context.Context, word string) (string, bool) {
	key := segment.NormalizeKey(word)
	if len([]rune(key)) <= 1 {
		return "", false
	}
	if b.Cache != nil {
		if m, ok := b.Cache.Get(key); ok {
			return m, true
		}
	}

	m, err := b.call(ctx, key)
	if err == nil && strings.TrimSpace(m) == "" {
		err = ErrMalformedResponse
	}
	if err != nil {
		b.log().Debug().Err(err).Str("word", key).Msg("lookup failed")
		return "", false
	}
	if b.Cache != nil {
		b.Cache.Set(key, m)
	}
	return m, true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
