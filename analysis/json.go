package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahaj-english/sahaj/parse"
	"github.com/sahaj-english/sahaj/provider"
	"github.com/sahaj-english/sahaj/segment"
)

// Analyze runs the analysis or chunks mode and returns the decoded JSON
// schema. On the free path the schema is synthesized from sentence and
// word translations.
func (s *Service) Analyze(ctx context.Context, req Request) (parse.Analysis, error) {
	if req.Mode == "" {
		req.Mode = provider.ModeAnalysis
	}
	desc, err := s.validate(&req)
	if err != nil {
		return nil, err
	}
	if req.Mode.Pipe() {
		return nil, fmt.Errorf("%w: %s", ErrWrongMode, req.Mode)
	}

	if desc.Shape == provider.ShapeFreeTranslate {
		return s.freeAnalysis(ctx, req)
	}

	raw, err := s.Client.RequestAnalysis(ctx, req.Text, req.Provider, req.Credential, req.Mode)
	if err != nil {
		return nil, err
	}
	a, err := parse.ParseJSONAnalysis(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Provider, err)
	}
	s.cacheAnalysis(a)
	return a, nil
}

// cacheAnalysis stores single-word glosses from a decoded analysis.
func (s *Service) cacheAnalysis(a parse.Analysis) {
	vocab := make(map[string]string)
	switch a := a.(type) {
	case *parse.BreakdownAnalysis:
		for _, sent := range a.Sentences {
			for _, v := range sent.Vocab {
				vocab[v.Word] = v.Meaning
			}
		}
	case *parse.ChunkAnalysis:
		for _, sent := range a.Sentences {
			for _, c := range sent.Chunks {
				if !strings.Contains(strings.TrimSpace(c.Text), " ") {
					vocab[c.Text] = c.Meaning
				}
			}
		}
	}
	s.Cache.BulkPopulate(vocab)
}

func (s *Service) freeAnalysis(ctx context.Context, req Request) (parse.Analysis, error) {
	sentences := segment.Sentences(req.Text)
	words := freeVocabWords(req.Text)
	st, meanings := s.freeRun(ctx, sentences, words)

	if st.Len() == 0 && len(meanings) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNothingTranslated
	}

	if req.Mode == provider.ModeChunks {
		out := &parse.ChunkAnalysis{Sentences: []parse.ChunkedSentence{}}
		for _, sent := range sentences {
			t, _ := st.Lookup(sent)
			cs := parse.ChunkedSentence{Original: sent, Translation: t}
			for _, tok := range strings.Fields(sent) {
				cs.Chunks = append(cs.Chunks, parse.Chunk{
					Text:    tok,
					Meaning: meanings[segment.CleanWord(tok)],
					Color:   "gray",
				})
			}
			out.Sentences = append(out.Sentences, cs)
		}
		return out, nil
	}

	out := &parse.BreakdownAnalysis{Sentences: []parse.SentenceBreakdown{}}
	for _, sent := range sentences {
		t, _ := st.Lookup(sent)
		sb := parse.SentenceBreakdown{
			English:            sent,
			Vocab:              []parse.VocabItem{},
			LiteralTranslation: t,
			FluentTranslation:  t,
		}
		for _, w := range segment.Words(sent) {
			if m, ok := meanings[w]; ok {
				sb.Vocab = append(sb.Vocab, parse.VocabItem{Word: w, Meaning: m})
			}
		}
		out.Sentences = append(out.Sentences, sb)
	}
	return out, nil
}
