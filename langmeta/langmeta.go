// Package langmeta resolves target-language codes to the names used in
// prompts and CLI output.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes a target language.
type Meta struct {
	// Code is the canonical BCP 47 code ("bn", "pt-BR").
	Code string
	// Name is the English name, used inside prompts ("Bangla").
	Name string
	// Native is the self-name ("বাংলা").
	Native string
	Flag   string
}

// flags covers the languages learners of this tool usually target.
var flags = map[string]string{
	"bn": "🇧🇩",
	"hi": "🇮🇳",
	"ur": "🇵🇰",
	"ne": "🇳🇵",
	"ta": "🇮🇳",
	"si": "🇱🇰",
	"ar": "🇸🇦",
	"es": "🇪🇸",
	"fr": "🇫🇷",
	"de": "🇩🇪",
}

// names pins English names that CLDR releases have changed over time.
var names = map[string]string{
	"bn": "Bangla",
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns metadata for lang, accepting variants like pt_BR and
// bn-bd. Unknown or malformed codes come back with Name set to the input.
func Resolve(lang string) Meta {
	code := canonicalize(lang)
	tag, err := language.Parse(code)
	if err != nil || code == "" {
		return Meta{Code: lang, Name: lang, Native: lang}
	}

	base, _ := tag.Base()
	name := display.Tags(language.English).Name(tag)
	if n, ok := names[tag.String()]; ok {
		name = n
	}
	if name == "" {
		return Meta{Code: code, Name: lang, Native: lang}
	}
	return Meta{
		Code:   tag.String(),
		Name:   name,
		Native: display.Self.Name(tag),
		Flag:   flags[base.String()],
	}
}
