// Package segment splits English passages into sentences and vocabulary
// words. All functions are pure and deterministic.
package segment

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ---------------------------------------------------------------------------
// Sentences
// ---------------------------------------------------------------------------

// abbreviations never end a sentence. Matched case-sensitively as a suffix
// of the sentence under construction, at a word boundary.
var abbreviations = []string{
	"Mr.", "Mrs.", "Dr.", "Prof.", "Sr.", "Jr.", "vs.", "etc.", "e.g.", "i.e.", "St.",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func isTerminal(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func isQuote(r rune) bool {
	return r == '"' || r == '“' || r == '”'
}

// endsWithAbbreviation reports whether buf ends with a known abbreviation
// that starts at a word boundary ("Dr." yes, "Mudr." no).
func endsWithAbbreviation(buf string) bool {
	for _, abbr := range abbreviations {
		if !strings.HasSuffix(buf, abbr) {
			continue
		}
		rest := buf[:len(buf)-len(abbr)]
		if rest == "" {
			return true
		}
		last := []rune(rest)
		if !unicode.IsLetter(last[len(last)-1]) {
			return true
		}
	}
	return false
}

// Sentences splits text into sentences. Whitespace runs are collapsed
// first. A sentence ends at '.', '?' or '!' followed by whitespace or end
// of input, unless the terminal sits inside a quotation or closes a known
// abbreviation. A terminal followed by a closing quote keeps the quote.
func Sentences(text string) []string {
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var (
		out     []string
		buf     strings.Builder
		inQuote bool
	)

	emit := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			out = append(out, s)
		}
		buf.Reset()
	}

	for i, r := range runes {
		buf.WriteRune(r)
		atBoundary := i == len(runes)-1 || unicode.IsSpace(runes[i+1])

		switch {
		case isQuote(r):
			inQuote = !inQuote
			if !inQuote && atBoundary && i > 0 && isTerminal(runes[i-1]) {
				current := buf.String()
				if !endsWithAbbreviation(current[:len(current)-len(string(r))]) {
					emit()
				}
			}
		case isTerminal(r):
			if !inQuote && atBoundary && !endsWithAbbreviation(buf.String()) {
				emit()
			}
		}
	}
	emit()
	return out
}

// Lines is the coarse clause splitter used for OCR output: every run of
// terminals or newlines is a break, and the terminals are dropped.
func Lines(text string) []string {
	var out []string
	for _, part := range lineBreak.Split(text, -1) {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var lineBreak = regexp.MustCompile(`[.!?\n]+`)

// ---------------------------------------------------------------------------
// Words
// ---------------------------------------------------------------------------

// contractions maps a cleaned contraction to the root glossed for it.
var contractions = map[string]string{
	"won't":     "will",
	"can't":     "can",
	"don't":     "do",
	"doesn't":   "do",
	"didn't":    "do",
	"isn't":     "is",
	"aren't":    "are",
	"wasn't":    "was",
	"weren't":   "were",
	"haven't":   "have",
	"hasn't":    "have",
	"hadn't":    "have",
	"wouldn't":  "would",
	"couldn't":  "could",
	"shouldn't": "should",
	"mightn't":  "might",
	"mustn't":   "must",
	"it's":      "it",
	"he's":      "he",
	"she's":     "she",
	"that's":    "that",
	"what's":    "what",
	"who's":     "who",
	"there's":   "there",
	"here's":    "here",
	"where's":   "where",
	"let's":     "let",
	"i'm":       "i",
	"you're":    "you",
	"we're":     "we",
	"they're":   "they",
	"i've":      "i",
	"you've":    "you",
	"we've":     "we",
	"they've":   "they",
	"i'd":       "i",
	"you'd":     "you",
	"he'd":      "he",
	"she'd":     "she",
	"we'd":      "we",
	"they'd":    "they",
	"i'll":      "i",
	"you'll":    "you",
	"he'll":     "he",
	"she'll":    "she",
	"we'll":     "we",
	"they'll":   "they",
}

// singleLetterWords survive the minimum length filter.
var singleLetterWords = map[string]bool{"a": true, "i": true}

// punctuation is stripped from words and keys. The apostrophe is handled
// separately so contractions and possessives can be recognised first.
const punctuation = `.,!?;:"“”()[]{}`

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, s)
}

// CleanWord reduces a raw token to its vocabulary form: lowercased,
// punctuation removed, contractions mapped to their root, possessive "'s"
// and a trailing "n't" dropped. The result may be empty.
func CleanWord(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	w = apostrophes.Replace(w)
	w = stripPunctuation(w)
	w = strings.Trim(w, "'")

	if root, ok := contractions[w]; ok {
		return root
	}
	w = strings.TrimSuffix(w, "'s")
	if strings.HasSuffix(w, "n't") {
		w = strings.TrimSuffix(w, "n't")
	}
	return strings.ReplaceAll(w, "'", "")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Words returns the unique vocabulary words of text in first-seen order.
// Tokens shorter than two letters are dropped, except "a" and "i", and so
// are tokens with no letters at all.
func Words(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range strings.Fields(text) {
		w := CleanWord(tok)
		if !hasLetter(w) {
			continue
		}
		if len([]rune(w)) <= 1 && !singleLetterWords[w] {
			continue
		}
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// NormalizeKey is the lookup key for vocabulary and cache entries:
// NFC-normalised, lowercased, apostrophe variants unified, punctuation
// removed and trimmed.
func NormalizeKey(s string) string {
	s = norm.NFC.String(s)
	s = apostrophes.Replace(strings.ToLower(s))
	return strings.TrimSpace(stripPunctuation(s))
}

// ---------------------------------------------------------------------------
// OCR cleanup
// ---------------------------------------------------------------------------

var inlineSpace = regexp.MustCompile(`[ \t\f\v\r]+`)

// CleanOCRText tidies recognised text: runs of inline whitespace become a
// single space, each line is trimmed and blank lines are dropped.
func CleanOCRText(text string) string {
	text = inlineSpace.ReplaceAllString(text, " ")
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
