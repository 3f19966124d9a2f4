// Package reconcile pairs the lines of the original passage with the lines
// a provider translated, tolerating differences in case, punctuation and
// spacing.
package reconcile

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sahaj-english/sahaj/parse"
)

// Line is an original line with its translation. Translation is nil when
// no translation could be matched.
type Line struct {
	Text        string  `json:"text"`
	Translation *string `json:"translation,omitempty"`
}

// Translated reports whether a translation was matched.
func (l Line) Translated() bool { return l.Translation != nil }

var (
	punctuation = regexp.MustCompile(`[.,!?;:'"()\[\]{}’‘“”]`)
	spaces      = regexp.MustCompile(`\s+`)
)

// Normalize is the fuzzy comparison key: lowercased, punctuation removed,
// whitespace collapsed and trimmed.
func Normalize(s string) string {
	s = punctuation.ReplaceAllString(strings.ToLower(s), "")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// index resolves a line to a translation by exact text, then by Normalize.
type index struct {
	exact map[string]string
	fuzzy map[string]string
}

func (ix index) lookup(line string) (string, bool) {
	if t, ok := ix.exact[line]; ok {
		return t, true
	}
	if t, ok := ix.fuzzy[Normalize(line)]; ok {
		return t, true
	}
	return "", false
}

// Reconcile returns one Line per original line, in order. Keys of ai that
// normalize to the same text are resolved by taking the first key in
// sorted order. Empty translations never match. Callers holding
// protocol-ordered pairs should use FromPairs, which keeps their order.
func Reconcile(original []string, ai map[string]string) []Line {
	ix := index{exact: make(map[string]string), fuzzy: make(map[string]string)}
	keys := make([]string, 0, len(ai))
	for k := range ai {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(ai[k])
		if v == "" {
			continue
		}
		ix.exact[k] = v
		if n := Normalize(k); n != "" {
			if _, taken := ix.fuzzy[n]; !taken {
				ix.fuzzy[n] = v
			}
		}
	}
	return build(original, ix)
}

// FromPairs is Reconcile over protocol lines in their received order; a
// later line with the same key replaces an earlier one.
func FromPairs(original []string, pairs []parse.PipeLine) []Line {
	ix := index{exact: make(map[string]string), fuzzy: make(map[string]string)}
	for _, p := range pairs {
		v := strings.TrimSpace(p.BN)
		if v == "" {
			continue
		}
		ix.exact[p.EN] = v
		if n := Normalize(p.EN); n != "" {
			ix.fuzzy[n] = v
		}
	}
	return build(original, ix)
}

func build(original []string, ix index) []Line {
	out := make([]Line, len(original))
	for i, text := range original {
		out[i] = Line{Text: text}
		if t, ok := ix.lookup(text); ok {
			t := t
			out[i].Translation = &t
		}
	}
	return out
}
