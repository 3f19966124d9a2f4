package parse

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sahaj-english/sahaj/segment"
)

const stableSample = `Sure! Here you go.
[LINES]
I am learning English. ||| আমি ইংরেজি শিখছি।
It is very easy. ||| এটি খুব সহজ।

[VOCAB]
learning ||| শিখছি
English ||| ইংরেজি (ইংলিশ)
easy ||| সহজ
`

func TestParsePipeSections(t *testing.T) {
	res := ParsePipeSections(stableSample)

	wantLines := []PipeLine{
		{EN: "I am learning English.", BN: "আমি ইংরেজি শিখছি।"},
		{EN: "It is very easy.", BN: "এটি খুব সহজ।"},
	}
	if !reflect.DeepEqual(res.Lines, wantLines) {
		t.Errorf("Lines = %#v", res.Lines)
	}
	wantVocab := map[string]string{"learning": "শিখছি", "english": "ইংরেজি (ইংলিশ)", "easy": "সহজ"}
	if !reflect.DeepEqual(res.Vocab, wantVocab) {
		t.Errorf("Vocab = %#v", res.Vocab)
	}
	if !reflect.DeepEqual(res.VocabOrder, []string{"learning", "english", "easy"}) {
		t.Errorf("VocabOrder = %v", res.VocabOrder)
	}
	if res.Dropped != 0 {
		t.Errorf("Dropped = %d", res.Dropped)
	}
}

func TestParsePipeSectionsLenient(t *testing.T) {
	in := "junk\n[LINES]\nHello ||| হ্যালো\nbroken line\n[vocab]\nHi ||| হাই ||| extra\n"
	res := ParsePipeSections(in)

	if len(res.Lines) != 1 || res.Lines[0] != (PipeLine{EN: "Hello", BN: "হ্যালো"}) {
		t.Errorf("Lines = %#v", res.Lines)
	}
	if len(res.Vocab) != 1 || res.Vocab["hi"] != "হাই" {
		t.Errorf("Vocab = %#v", res.Vocab)
	}
	if res.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", res.Dropped)
	}
}

func TestParsePipeSectionsMissingSections(t *testing.T) {
	cases := []string{"", "no markers at all ||| x", "[LINES]\n"}
	for _, in := range cases {
		res := ParsePipeSections(in)
		if len(res.Lines) != 0 || len(res.Vocab) != 0 {
			t.Errorf("ParsePipeSections(%q) = %#v, want empty", in, res)
		}
		if res.Vocab == nil {
			t.Errorf("Vocab must be non-nil for %q", in)
		}
	}
}

func TestParsePipeSectionsVocabNormalization(t *testing.T) {
	in := "[LINES]\n[VOCAB]\nEasy! ||| সহজ\neasy ||| সোজা\nDon’t ||| না\n"
	res := ParsePipeSections(in)
	if res.Vocab["easy"] != "সোজা" {
		t.Errorf("last duplicate should win: %#v", res.Vocab)
	}
	if res.Vocab["don't"] != "না" {
		t.Errorf("apostrophe not unified: %#v", res.Vocab)
	}
	if len(res.VocabOrder) != 2 {
		t.Errorf("VocabOrder = %v", res.VocabOrder)
	}
}

func TestParsePipeSectionsVocabKeysMatchCacheKeys(t *testing.T) {
	in := `[LINES]
[VOCAB]
e.g. ||| যেমন
“Hello” ||| নমস্কার
`
	res := ParsePipeSections(in)
	for _, raw := range []string{"e.g.", "“Hello”"} {
		key := segment.NormalizeKey(raw)
		if _, ok := res.Vocab[key]; !ok {
			t.Errorf("vocab key for %q missing under %q: %#v", raw, key, res.Vocab)
		}
	}
	if _, ok := res.Vocab["eg"]; !ok {
		t.Errorf("punctuation should be stripped inside keys: %#v", res.Vocab)
	}
}

func TestPipeRoundTrip(t *testing.T) {
	inputs := []string{
		stableSample,
		"[LINES]\nA ||| ক\nB |||\n[VOCAB]\nZebra ||| জেব্রা\napple ||| আপেল\n",
		"",
	}
	for _, in := range inputs {
		first := ParsePipeSections(in)
		second := ParsePipeSections(FormatPipeSections(first))
		first.Dropped, second.Dropped = 0, 0
		if !reflect.DeepEqual(first, second) {
			t.Errorf("round trip mismatch for %q:\n%#v\n%#v", in, first, second)
		}
	}
}

func TestParseJSONAnalysisBreakdown(t *testing.T) {
	in := `{"sentences":[{"english":"I have a car.","vocab":[{"word":"car","meaning":"গাড়ি"}],"literal_translation":"আমার আছে একটি গাড়ি","fluent_translation":"আমার একটি গাড়ি আছে"}]}`
	a, err := ParseJSONAnalysis(in)
	if err != nil {
		t.Fatalf("ParseJSONAnalysis: %v", err)
	}
	b, ok := a.(*BreakdownAnalysis)
	if !ok {
		t.Fatalf("got %T, want *BreakdownAnalysis", a)
	}
	if b.Len() != 1 || b.Sentences[0].Vocab[0].Meaning != "গাড়ি" {
		t.Errorf("unexpected %#v", b)
	}
	if b.Sentences[0].FluentTranslation != "আমার একটি গাড়ি আছে" {
		t.Errorf("fluent = %q", b.Sentences[0].FluentTranslation)
	}
}

func TestParseJSONAnalysisChunks(t *testing.T) {
	in := `{"sentences":[{"original":"I run.","translation":"আমি দৌড়াই।","chunks":[{"text":"I","meaning":"আমি","color":"gray"},{"text":"run","meaning":"দৌড়াই","grammar":"verb"}]}]}`
	a, err := ParseJSONAnalysis(in)
	if err != nil {
		t.Fatalf("ParseJSONAnalysis: %v", err)
	}
	c, ok := a.(*ChunkAnalysis)
	if !ok {
		t.Fatalf("got %T, want *ChunkAnalysis", a)
	}
	if len(c.Sentences[0].Chunks) != 2 || c.Sentences[0].Chunks[1].Grammar != "verb" {
		t.Errorf("unexpected %#v", c)
	}
}

func TestParseJSONAnalysisEmptyAndErrors(t *testing.T) {
	a, err := ParseJSONAnalysis(`{"sentences":[]}`)
	if err != nil {
		t.Fatalf("empty sentences: %v", err)
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d", a.Len())
	}

	cases := []struct {
		in   string
		want error
	}{
		{in: `{"sentences": [`, want: ErrInvalidJSON},
		{in: "```json\n{\"sentences\":[]}\n```", want: ErrInvalidJSON},
		{in: `{"sentences":[]} trailing`, want: ErrInvalidJSON},
		{in: `{"result":"ok"}`, want: ErrMissingSentences},
		{in: `null`, want: ErrMissingSentences},
	}
	for _, tc := range cases {
		if _, err := ParseJSONAnalysis(tc.in); !errors.Is(err, tc.want) {
			t.Errorf("ParseJSONAnalysis(%q) err = %v, want %v", tc.in, err, tc.want)
		}
	}
}
