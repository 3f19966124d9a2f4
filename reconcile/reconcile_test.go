package reconcile

import (
	"testing"

	"github.com/sahaj-english/sahaj/parse"
)

func TestReconcileFuzzyMatch(t *testing.T) {
	original := []string{"It is very easy."}
	ai := map[string]string{"it is very easy": "এটি খুব সহজ।"}

	got := Reconcile(original, ai)
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if !got[0].Translated() || *got[0].Translation != "এটি খুব সহজ।" {
		t.Fatalf("got %#v", got[0])
	}
}

func TestReconcileExactAndMissing(t *testing.T) {
	original := []string{"Hello there!", "Unmatched line.", "  Spaced   out. "}
	ai := map[string]string{
		"Hello there!": "হ্যালো!",
		"spaced out":   "ছড়ানো",
		"Empty":        "   ",
	}

	got := Reconcile(original, ai)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Translation == nil || *got[0].Translation != "হ্যালো!" {
		t.Errorf("exact match failed: %#v", got[0])
	}
	if got[1].Translated() {
		t.Errorf("unmatched line got %q", *got[1].Translation)
	}
	if got[2].Translation == nil || *got[2].Translation != "ছড়ানো" {
		t.Errorf("whitespace-insensitive match failed: %#v", got[2])
	}
	if got[2].Text != "  Spaced   out. " {
		t.Errorf("original text altered: %q", got[2].Text)
	}
}

func TestReconcileEmptyValueNeverMatches(t *testing.T) {
	got := Reconcile([]string{"Empty"}, map[string]string{"Empty": ""})
	if got[0].Translated() {
		t.Fatal("empty translation must count as absent")
	}
}

func TestReconcileCollisionIsDeterministic(t *testing.T) {
	ai := map[string]string{"Yes!": "হ্যাঁ!", "yes.": "হ্যাঁ।", "YES": "জি"}
	want := *Reconcile([]string{"yes"}, ai)[0].Translation
	for i := 0; i < 20; i++ {
		if got := *Reconcile([]string{"yes"}, ai)[0].Translation; got != want {
			t.Fatalf("run %d: %q != %q", i, got, want)
		}
	}
	// "YES" sorts first among the colliding keys.
	if want != "জি" {
		t.Errorf("collision resolved to %q", want)
	}
}

func TestFromPairsLastWins(t *testing.T) {
	pairs := []parse.PipeLine{
		{EN: "I am learning English.", BN: "আমি ইংরেজি শিখছি।"},
		{EN: "It is very easy", BN: "সহজ"},
		{EN: "it is very easy.", BN: "এটি খুব সহজ।"},
	}
	got := FromPairs([]string{"I am learning English.", "It is very easy."}, pairs)
	if *got[0].Translation != "আমি ইংরেজি শিখছি।" {
		t.Errorf("line 0 = %q", *got[0].Translation)
	}
	if *got[1].Translation != "এটি খুব সহজ।" {
		t.Errorf("line 1 = %q", *got[1].Translation)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  It's   FINE!  ": "its fine",
		"“Quoted”":         "quoted",
		"":                 "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
