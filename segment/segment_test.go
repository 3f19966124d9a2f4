package segment

import (
	"reflect"
	"testing"
)

func TestSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "abbreviation does not split",
			in:   "Dr. Smith went home. He was tired!",
			want: []string{"Dr. Smith went home.", "He was tired!"},
		},
		{
			name: "question and exclamation",
			in:   "Are you ready? Yes! Let's go.",
			want: []string{"Are you ready?", "Yes!", "Let's go."},
		},
		{
			name: "terminal inside quotes keeps sentence together",
			in:   `He said "Stop. Now." Then he left.`,
			want: []string{`He said "Stop. Now."`, "Then he left."},
		},
		{
			name: "closing curly quote",
			in:   "She whispered “It is late.” We went home.",
			want: []string{"She whispered “It is late.”", "We went home."},
		},
		{
			name: "whitespace collapsed",
			in:   "  One   line.\n\nTwo\tlines.  ",
			want: []string{"One line.", "Two lines."},
		},
		{
			name: "trailing fragment kept",
			in:   "First one. and then",
			want: []string{"First one.", "and then"},
		},
		{
			name: "decimal is not a boundary",
			in:   "It costs 3.50 today. Fine.",
			want: []string{"It costs 3.50 today.", "Fine."},
		},
		{
			name: "abbreviation needs a word boundary",
			in:   "The code was XSt. Then we left.",
			want: []string{"The code was XSt.", "Then we left."},
		},
		{
			name: "empty",
			in:   "   ",
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sentences(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Sentences(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSentencesDeterministic(t *testing.T) {
	in := "I am learning English. It is very easy. Mr. Rahman agrees!"
	first := Sentences(in)
	for i := 0; i < 20; i++ {
		if got := Sentences(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %#v != %#v", i, got, first)
		}
	}
}

func TestCleanWord(t *testing.T) {
	cases := map[string]string{
		"Khan's":      "khan",
		"can't":       "can",
		"Won’t":       "will",
		"it's":        "it",
		"I'm":         "i",
		"needn't":     "need",
		"(hello),":    "hello",
		"'quoted'":    "quoted",
		"o'clock":     "oclock",
		"\"Really?\"": "really",
		"...":         "",
	}
	for in, want := range cases {
		if got := CleanWord(in); got != want {
			t.Errorf("CleanWord(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWords(t *testing.T) {
	got := Words("I can't believe it's Mr. Khan's car.")
	set := make(map[string]bool)
	for _, w := range got {
		set[w] = true
	}
	for _, want := range []string{"i", "can", "believe", "it", "mr", "khan", "car"} {
		if !set[want] {
			t.Errorf("Words() missing %q in %v", want, got)
		}
	}
	for _, unwanted := range []string{"can't", "it's", "khan's", "car."} {
		if set[unwanted] {
			t.Errorf("Words() should not contain %q", unwanted)
		}
	}
}

func TestWordsStripsCurlyQuotes(t *testing.T) {
	got := Words("“Hello” she said. \"Hello\" again.")
	want := []string{"hello", "she", "said", "again"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Words() = %v, want %v", got, want)
	}
}

func TestWordsDedupAndFilter(t *testing.T) {
	got := Words("The the THE cat, x 42 a cat!")
	want := []string{"the", "cat", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Words() = %v, want %v", got, want)
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "  English. ", want: "english"},
		{in: "Don’t", want: "don't"},
		{in: "Look After!", want: "look after"},
		{in: "“Hello”", want: "hello"},
		{in: "‘quoted’", want: "'quoted'"},
		{in: "café", want: "café"},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLines(t *testing.T) {
	got := Lines("First line. Second!\nThird?? ")
	want := []string{"First line", "Second", "Third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
}

func TestCleanOCRText(t *testing.T) {
	in := "Hello   world \r\n\n\n  second\t\tline  "
	want := "Hello world\nsecond line"
	if got := CleanOCRText(in); got != want {
		t.Fatalf("CleanOCRText() = %q, want %q", got, want)
	}
}
