package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sahaj-english/sahaj/cache"
	"github.com/sahaj-english/sahaj/freetranslate"
	"github.com/sahaj-english/sahaj/parse"
	"github.com/sahaj-english/sahaj/provider"
)

const passage = "I am learning English. It is very easy."

var freeAnswers = map[string]string{
	"I am learning English.": "আমি ইংরেজি শিখছি।",
	"It is very easy.":       "এটি খুব সহজ।",
	"learning":               "শিখছি",
	"english":                "ইংরেজি",
	"easy":                   "সহজ",
	"very":                   "খুব",
}

// freeEndpoint fakes the nested-array endpoint.
func freeEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		ans, ok := freeAnswers[q]
		if !ok {
			ans = "[" + q + "]"
		}
		json.NewEncoder(w).Encode([]any{[]any{[]any{ans, q, nil}}, nil, "en"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newService(t *testing.T, free *httptest.Server) *Service {
	t.Helper()
	client := provider.NewClient()
	d := client.Providers[provider.GoogleTranslate]
	d.Endpoint = free.URL
	client.Providers[provider.GoogleTranslate] = d

	tr := &freetranslate.Client{Endpoint: free.URL, Target: "bn", HTTP: free.Client()}
	svc := New(client, tr, cache.New())
	svc.Sentences.Delay = time.Millisecond
	svc.Words.Delay = time.Millisecond
	return svc
}

func TestStableFreeEndToEnd(t *testing.T) {
	svc := newService(t, freeEndpoint(t))

	res, err := svc.Stable(context.Background(), Request{Text: passage, Provider: provider.GoogleTranslate, Mode: provider.ModeStable})
	if err != nil {
		t.Fatalf("Stable: %v", err)
	}
	if len(res.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(res.Lines))
	}
	for i, l := range res.Lines {
		if l.Translation == nil || *l.Translation == "" {
			t.Errorf("line %d untranslated: %#v", i, l)
		}
	}
	if *res.Lines[1].Translation != "এটি খুব সহজ।" {
		t.Errorf("line 1 = %q", *res.Lines[1].Translation)
	}
	for _, w := range []string{"learning", "english", "easy"} {
		if res.Vocab[w] == "" {
			t.Errorf("vocab missing %q: %v", w, res.Vocab)
		}
	}
	if m, ok := svc.Cache.Get("English"); !ok || m != "ইংরেজি" {
		t.Errorf("cache not populated: %q %v", m, ok)
	}

	// Raw reparses to the same lines.
	again := parse.ParsePipeSections(res.Raw)
	if len(again.Lines) != 2 || again.Vocab["easy"] != "সহজ" {
		t.Errorf("raw does not round trip: %#v", again)
	}
}

func TestStableFreeSkipsCachedWords(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		mu.Lock()
		seen[q]++
		mu.Unlock()
		json.NewEncoder(w).Encode([]any{[]any{[]any{"x", q}}})
	}))
	defer srv.Close()

	svc := newService(t, srv)
	svc.Cache.Set("easy", "সহজ")

	res, err := svc.Stable(context.Background(), Request{Text: "It is easy.", Provider: provider.GoogleTranslate})
	if err != nil {
		t.Fatalf("Stable: %v", err)
	}
	if seen["easy"] != 0 {
		t.Error("cached word was fetched")
	}
	if res.Vocab["easy"] != "সহজ" {
		t.Errorf("cached meaning not used: %v", res.Vocab)
	}
}

func TestStableWithChatProvider(t *testing.T) {
	content := "[LINES]\nI am learning English ||| আমি ইংরেজি শিখছি।\nit is very easy ||| এটি খুব সহজ।\nstray\n\n[VOCAB]\nEasy ||| সহজ\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	defer srv.Close()

	svc := newService(t, freeEndpoint(t))
	d := svc.Client.Providers[provider.Groq]
	d.Endpoint = srv.URL
	svc.Client.Providers[provider.Groq] = d

	res, err := svc.Stable(context.Background(), Request{Text: passage, Provider: provider.Groq, Credential: "k", Mode: provider.ModeTranslation})
	if err != nil {
		t.Fatalf("Stable: %v", err)
	}
	for i, l := range res.Lines {
		if !l.Translated() {
			t.Errorf("line %d not reconciled: %q", i, l.Text)
		}
	}
	if res.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", res.Dropped)
	}
	if m, _ := svc.Cache.Get("easy"); m != "সহজ" {
		t.Errorf("vocab not cached: %q", m)
	}
}

func TestAnalyzeFree(t *testing.T) {
	svc := newService(t, freeEndpoint(t))

	a, err := svc.Analyze(context.Background(), Request{Text: passage, Provider: provider.GoogleTranslate, Mode: provider.ModeAnalysis})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	b, ok := a.(*parse.BreakdownAnalysis)
	if !ok || b.Len() != 2 {
		t.Fatalf("got %T %#v", a, a)
	}
	first := b.Sentences[0]
	if first.FluentTranslation != "আমি ইংরেজি শিখছি।" || first.LiteralTranslation != first.FluentTranslation {
		t.Errorf("translations = %#v", first)
	}
	var words []string
	for _, v := range first.Vocab {
		words = append(words, v.Word)
	}
	if len(words) != 2 || words[0] != "learning" || words[1] != "english" {
		t.Errorf("sentence vocab = %v", words)
	}

	a, err = svc.Analyze(context.Background(), Request{Text: passage, Provider: provider.GoogleTranslate, Mode: provider.ModeChunks})
	if err != nil {
		t.Fatalf("Analyze chunks: %v", err)
	}
	c, ok := a.(*parse.ChunkAnalysis)
	if !ok || c.Len() != 2 {
		t.Fatalf("got %T", a)
	}
	chunks := c.Sentences[1].Chunks
	if len(chunks) != 4 || chunks[3].Text != "easy." || chunks[3].Meaning != "সহজ" || chunks[3].Color != "gray" {
		t.Errorf("chunks = %#v", chunks)
	}
}

func TestAnalyzeWithGenerateProvider(t *testing.T) {
	answer := "```json\n{\"sentences\":[{\"english\":\"It is very easy.\",\"vocab\":[{\"word\":\"Easy\",\"meaning\":\"সহজ\"}],\"literal_translation\":\"এটা হয় খুব সহজ\",\"fluent_translation\":\"এটি খুব সহজ।\"}]}\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": answer}}}}},
		})
	}))
	defer srv.Close()

	svc := newService(t, freeEndpoint(t))
	d := svc.Client.Providers[provider.Gemini]
	d.Endpoint = srv.URL
	svc.Client.Providers[provider.Gemini] = d

	a, err := svc.Analyze(context.Background(), Request{Text: "It is very easy.", Provider: provider.Gemini, Credential: "k"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if _, ok := a.(*parse.BreakdownAnalysis); !ok {
		t.Fatalf("got %T", a)
	}
	if m, _ := svc.Cache.Get("easy"); m != "সহজ" {
		t.Errorf("vocab not cached: %q", m)
	}
}

func TestRequestValidation(t *testing.T) {
	svc := newService(t, freeEndpoint(t))
	ctx := context.Background()

	if _, err := svc.Stable(ctx, Request{Text: "  "}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty text: %v", err)
	}
	if _, err := svc.Stable(ctx, Request{Text: "Hi.", Provider: provider.OpenAI}); !errors.Is(err, provider.ErrMissingCredential) {
		t.Errorf("missing credential: %v", err)
	}
	if _, err := svc.Stable(ctx, Request{Text: "Hi.", Provider: "nope"}); !errors.Is(err, provider.ErrUnknownProvider) {
		t.Errorf("unknown provider: %v", err)
	}
	if _, err := svc.Stable(ctx, Request{Text: "Hi.", Mode: provider.ModeAnalysis}); !errors.Is(err, ErrWrongMode) {
		t.Errorf("wrong mode: %v", err)
	}
	if _, err := svc.Analyze(ctx, Request{Text: "Hi.", Mode: provider.ModeStable}); !errors.Is(err, ErrWrongMode) {
		t.Errorf("wrong mode: %v", err)
	}
}

func TestNothingTranslated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := newService(t, srv)
	if _, err := svc.Stable(context.Background(), Request{Text: passage}); !errors.Is(err, ErrNothingTranslated) {
		t.Fatalf("err = %v, want ErrNothingTranslated", err)
	}
}

func TestWithProgress(t *testing.T) {
	svc := newService(t, freeEndpoint(t))

	var mu sync.Mutex
	jobs := map[string]Progress{}
	tracked := svc.WithProgress(func(p Progress) {
		mu.Lock()
		jobs[p.Job] = p
		mu.Unlock()
	})

	if _, err := tracked.Stable(context.Background(), Request{Text: passage}); err != nil {
		t.Fatalf("Stable: %v", err)
	}
	if p := jobs["sentences"]; p.Done != 2 || p.Total != 2 {
		t.Errorf("sentences progress = %+v", p)
	}
	if p := jobs["words"]; p.Done != p.Total || p.Total == 0 {
		t.Errorf("words progress = %+v", p)
	}
	if svc.Sentences.OnBatch != nil {
		t.Error("WithProgress modified the original service")
	}
}

func TestLookup(t *testing.T) {
	svc := newService(t, freeEndpoint(t))
	if m, ok := svc.Lookup(context.Background(), "Easy!"); !ok || m != "সহজ" {
		t.Fatalf("Lookup = %q %v", m, ok)
	}
}

func TestRun(t *testing.T) {
	svc := newService(t, freeEndpoint(t))

	out, err := svc.Run(context.Background(), Request{Text: passage})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Mode != provider.ModeAnalysis || out.Provider != provider.GoogleTranslate || out.Stable != nil {
		t.Fatalf("defaults = %+v", out)
	}
	if out.Analysis == nil || out.Analysis.Len() != 2 {
		t.Fatalf("analysis = %#v", out.Analysis)
	}

	out, err = svc.Run(context.Background(), Request{Text: passage, Mode: provider.ModeStable})
	if err != nil {
		t.Fatalf("Run(stable): %v", err)
	}
	if out.Stable == nil || out.Analysis != nil || len(out.Stable.Lines) != 2 {
		t.Fatalf("stable outcome = %+v", out)
	}
}

func TestErrorClasses(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		invalid bool
		decode  bool
	}{
		{name: "empty", err: ErrEmptyText, invalid: true},
		{name: "credential", err: fmt.Errorf("%w for Groq", provider.ErrMissingCredential), invalid: true},
		{name: "mode", err: provider.ErrUnknownMode, invalid: true},
		{name: "bad json", err: fmt.Errorf("gemini: %w", parse.ErrInvalidJSON), decode: true},
		{name: "no sentences", err: parse.ErrMissingSentences, decode: true},
		{name: "nothing translated", err: ErrNothingTranslated},
		{name: "other", err: errors.New("boom")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsInvalidRequest(tc.err); got != tc.invalid {
				t.Errorf("IsInvalidRequest = %v, want %v", got, tc.invalid)
			}
			if got := IsDecode(tc.err); got != tc.decode {
				t.Errorf("IsDecode = %v, want %v", got, tc.decode)
			}
		})
	}
}
