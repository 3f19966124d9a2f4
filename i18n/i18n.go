// Package i18n translates the sahaj command line.
//
// Catalogues are gettext .po files embedded at
// locales/<lang>/LC_MESSAGES/sahaj.po and read through gotext. Init picks
// the catalogue closest to the requested language, so bn_BD.UTF-8 and bn-IN
// both get the Bangla messages. Anything without a catalogue falls back to
// the English msgids.
//
//	i18n.Init("") // LANGUAGE, LC_ALL, LC_MESSAGES, LANG
//	fmt.Println(i18n.T("Vocabulary"))
//	fmt.Printf(i18n.N("%d word", "%d words", n), n)
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const (
	domain = "sahaj"
	source = "en"
)

var (
	po      *gotext.Locale
	current string
)

// Init selects the catalogue for lang. An empty lang is read from the
// environment. Call it once, before any T or N.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	current = match(lang, Available())
	if current == source {
		po = nil
		return
	}
	po = gotext.NewLocaleFSWithPath(current, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Language returns the catalogue Init selected ("en" when messages are not
// translated), or "" before Init.
func Language() string {
	return current
}

// Available lists the embedded catalogues.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

// T translates msgid, or returns it unchanged.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms using the catalogue's plural
// formula.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// match returns the catalogue in avail that best serves lang, or source.
func match(lang string, avail []string) string {
	tags := []language.Tag{language.English}
	for _, a := range avail {
		tags = append(tags, language.Make(a))
	}
	want, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return source
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No || idx == 0 {
		return source
	}
	return avail[idx-1]
}

// detectLanguage follows gettext's precedence: LANGUAGE, LC_ALL,
// LC_MESSAGES, LANG. Encoding suffixes are dropped and C/POSIX skipped.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		val, _, _ = strings.Cut(val, ".")
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return source
}
