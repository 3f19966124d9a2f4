package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahaj-english/sahaj/analysis"
	"github.com/sahaj-english/sahaj/cache"
	"github.com/sahaj-english/sahaj/freetranslate"
	"github.com/sahaj-english/sahaj/parse"
	"github.com/sahaj-english/sahaj/provider"
)

func newHandler(t *testing.T) *handler {
	t.Helper()
	free := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		json.NewEncoder(w).Encode([]any{[]any{[]any{"bn:" + q, q, nil}}, nil, "en"})
	}))
	t.Cleanup(free.Close)

	client := provider.NewClient()
	d := client.Providers[provider.GoogleTranslate]
	d.Endpoint = free.URL
	client.Providers[provider.GoogleTranslate] = d

	svc := analysis.New(client, &freetranslate.Client{Endpoint: free.URL, Target: "bn", HTTP: free.Client()}, cache.New())
	svc.Sentences.Delay = time.Millisecond
	svc.Words.Delay = time.Millisecond

	nop := zerolog.Nop()
	return &handler{svc: svc, provider: provider.GoogleTranslate, logger: &nop}
}

func TestHandleStable(t *testing.T) {
	h := newHandler(t)
	resp, err := h.handle(context.Background(), json.RawMessage(`{"passage":"It is easy. We like it.","mode":"stable"}`))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if resp.Error != "" || resp.Stable == nil || len(resp.Stable.Lines) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.RequestID == "" || resp.Mode != provider.ModeStable {
		t.Errorf("metadata = %+v", resp)
	}
}

func TestHandleAnalysisDefault(t *testing.T) {
	h := newHandler(t)
	resp, err := h.handle(context.Background(), json.RawMessage(`{"passage":"It is easy."}`))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if _, ok := resp.Analysis.(*parse.BreakdownAnalysis); !ok {
		t.Fatalf("analysis = %T (%+v)", resp.Analysis, resp)
	}
}

func TestHandleErrorsInBody(t *testing.T) {
	h := newHandler(t)
	cases := []struct {
		name  string
		event string
		want  string
	}{
		{name: "bad json", event: `{`, want: "invalid request"},
		{name: "bad mode", event: `{"passage":"Hi.","mode":"poem"}`, want: "unknown mode"},
		{name: "missing key", event: `{"passage":"Hi.","provider":"openai"}`, want: "missing credential"},
		{name: "empty", event: `{"passage":"  "}`, want: "no text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := h.handle(context.Background(), json.RawMessage(tc.event))
			if err != nil {
				t.Fatalf("handler returned a Lambda error: %v", err)
			}
			if !strings.Contains(resp.Error, tc.want) {
				t.Fatalf("Error = %q, want it to contain %q", resp.Error, tc.want)
			}
		})
	}
}

func TestHandleUsesEnvironmentKey(t *testing.T) {
	var auth string
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"sentences":[]}`}}},
		})
	}))
	defer chat.Close()

	h := newHandler(t)
	d := h.svc.Client.Providers[provider.Groq]
	d.Endpoint = chat.URL
	h.svc.Client.Providers[provider.Groq] = d
	h.apiKey = "from-env"

	resp, err := h.handle(context.Background(), json.RawMessage(`{"passage":"Hi.","provider":"groq"}`))
	if err != nil || resp.Error != "" {
		t.Fatalf("handle = %+v, %v", resp, err)
	}
	if auth != "Bearer from-env" {
		t.Fatalf("Authorization = %q", auth)
	}
	if resp.Provider != provider.Groq || resp.Analysis == nil || resp.Analysis.Len() != 0 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestWarmup(t *testing.T) {
	if _, ok := IsWarmupEvent(json.RawMessage(`{"passage":"x"}`)); ok {
		t.Fatal("analysis request detected as warmup")
	}
	h := newHandler(t)
	resp, err := h.handle(context.Background(), json.RawMessage(`{"source":"warmup"}`))
	if err != nil || resp.RequestID != WarmupSource {
		t.Fatalf("warmup = %+v, %v", resp, err)
	}
}
