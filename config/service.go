package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahaj-english/sahaj/analysis"
	"github.com/sahaj-english/sahaj/cache"
	"github.com/sahaj-english/sahaj/freetranslate"
	"github.com/sahaj-english/sahaj/langmeta"
	"github.com/sahaj-english/sahaj/provider"
	"github.com/sahaj-english/sahaj/settings"
)

// Descriptors returns the built-in provider table with f's overrides
// applied.
func (f *File) Descriptors() map[provider.ID]provider.Descriptor {
	all := provider.DefaultProviders()
	for id, o := range f.Providers {
		d, ok := all[provider.ID(id)]
		if !ok {
			continue
		}
		if o.Model != "" {
			d.Model = o.Model
		}
		if o.Endpoint != "" {
			d.Endpoint = o.Endpoint
		}
		if o.Timeout > 0 {
			d.Timeout = o.Timeout
		}
		all[d.ID] = d
	}
	return all
}

// PromptsPath returns the prompt override file in effect.
func (f *File) PromptsPath() (string, error) {
	if f.PromptsFile != "" {
		return f.PromptsFile, nil
	}
	return settings.PromptsFilePath()
}

// NewService assembles the analysis pipeline described by f. The meaning
// cache is created here and shared by every request the service handles.
func (f *File) NewService(logger *zerolog.Logger) (*analysis.Service, error) {
	promptsPath, err := f.PromptsPath()
	if err != nil {
		return nil, err
	}
	prompts, err := provider.LoadPrompts(promptsPath)
	if err != nil {
		return nil, err
	}

	lang := langmeta.Resolve(f.TargetLang)
	if lang.Code == "" {
		return nil, fmt.Errorf("invalid target language %q", f.TargetLang)
	}

	client := provider.NewClient()
	client.Providers = f.Descriptors()
	client.Prompts = prompts
	client.TargetCode = lang.Code
	client.TargetName = lang.Name
	client.Proxy = f.Proxy
	client.Logger = logger

	opts := []cache.Option{cache.WithMaxEntries(f.Cache.MaxEntries)}
	if base, _, _ := strings.Cut(lang.Code, "-"); base == "bn" {
		opts = append(opts, cache.WithSeed(cache.CommonVocabulary()))
	}
	c := cache.New(opts...)

	free := client.Providers[provider.GoogleTranslate]
	tr := freetranslate.NewClient(f.SourceLang, lang.Code, &http.Client{Timeout: f.Batch.CallTimeout})
	tr.Endpoint = free.Endpoint

	svc := analysis.New(client, tr, c)
	svc.Logger = logger
	applyBatch(svc.Sentences, f.Batch.SentenceSize, f.Batch.SentenceDelay, f.Batch, logger)
	applyBatch(svc.Words, f.Batch.WordSize, f.Batch.WordDelay, f.Batch, logger)
	return svc, nil
}

func applyBatch(b *freetranslate.Batcher, size int, delay time.Duration, cfg Batch, logger *zerolog.Logger) {
	if size > 0 {
		b.BatchSize = size
	}
	if delay > 0 {
		b.Delay = delay
	}
	if cfg.RetryBackoff > 0 {
		b.RetryBackoff = cfg.RetryBackoff
	}
	if cfg.CallTimeout > 0 {
		b.CallTimeout = cfg.CallTimeout
	}
	b.Logger = logger
}
