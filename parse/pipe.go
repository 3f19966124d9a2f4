// Package parse decodes the two text protocols providers answer with: the
// sectioned pipe format used by the stable and translation modes, and the
// JSON analysis format.
package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sahaj-english/sahaj/segment"
)

// Separator divides source and target on a pipe protocol line.
const Separator = "|||"

var sectionMarker = regexp.MustCompile(`(?i)\[LINES\]|\[VOCAB\]`)

// PipeLine is one translated line.
type PipeLine struct {
	EN string `json:"en"`
	BN string `json:"bn"`
}

// PipeResult is the decoded pipe protocol.
type PipeResult struct {
	Lines []PipeLine `json:"lines"`
	// Vocab is keyed by segment.NormalizeKey of the source word.
	Vocab map[string]string `json:"vocab"`
	// VocabOrder lists Vocab keys in order of first appearance.
	VocabOrder []string `json:"vocabOrder"`
	// Dropped counts non-empty lines inside a section that had no separator.
	Dropped int `json:"dropped"`
}

// LineMap returns Lines as a source→target map; later duplicates win.
func (r PipeResult) LineMap() map[string]string {
	m := make(map[string]string, len(r.Lines))
	for _, l := range r.Lines {
		m[l.EN] = l.BN
	}
	return m
}

// ParsePipeSections decodes text leniently. Text before the first marker is
// ignored, the first section is lines and the second is vocabulary. Lines
// without a separator are skipped and counted; missing sections yield empty
// collections. It never fails.
func ParsePipeSections(text string) PipeResult {
	res := PipeResult{Vocab: make(map[string]string)}

	sections := sectionMarker.Split(text, -1)
	var linesPart, vocabPart string
	if len(sections) > 1 {
		linesPart = sections[1]
	}
	if len(sections) > 2 {
		vocabPart = sections[2]
	}

	eachPair(linesPart, &res.Dropped, func(src, dst string) {
		res.Lines = append(res.Lines, PipeLine{EN: src, BN: dst})
	})
	eachPair(vocabPart, &res.Dropped, func(src, dst string) {
		key := segment.NormalizeKey(src)
		if key == "" {
			res.Dropped++
			return
		}
		if _, exists := res.Vocab[key]; !exists {
			res.VocabOrder = append(res.VocabOrder, key)
		}
		res.Vocab[key] = dst
	})
	return res
}

func eachPair(section string, dropped *int, fn func(src, dst string)) {
	for _, line := range strings.Split(section, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, Separator) {
			*dropped++
			continue
		}
		parts := strings.Split(line, Separator)
		fn(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}
}

// FormatPipeSections writes r back in the pipe protocol.
func FormatPipeSections(r PipeResult) string {
	var sb strings.Builder
	sb.WriteString("[LINES]\n")
	for _, l := range r.Lines {
		sb.WriteString(l.EN + " " + Separator + " " + l.BN + "\n")
	}
	sb.WriteString("\n[VOCAB]\n")

	order := r.VocabOrder
	if len(order) != len(r.Vocab) {
		order = sortedKeys(r.Vocab)
	}
	for _, k := range order {
		sb.WriteString(k + " " + Separator + " " + r.Vocab[k] + "\n")
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
