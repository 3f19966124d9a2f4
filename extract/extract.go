// Package extract pulls the English passage out of the files learners bring:
// web pages saved as HTML, Markdown notes, scanned images and plain text.
//
// The kind of file is detected by extension. Whatever the source, the result
// is plain text with one block (paragraph, heading, list item) per line,
// ready for segmentation.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sahaj-english/sahaj/ocr"
	"github.com/sahaj-english/sahaj/segment"
)

// Kind is a recognised source format.
type Kind string

const (
	KindText     Kind = "text"
	KindHTML     Kind = "html"
	KindMarkdown Kind = "markdown"
	KindImage    Kind = "image"
)

// SupportedExtensions maps file extensions to source kinds. Files with other
// extensions are read as plain text.
var SupportedExtensions = map[string]Kind{
	".txt":      KindText,
	".html":     KindHTML,
	".htm":      KindHTML,
	".xhtml":    KindHTML,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".png":      KindImage,
	".jpg":      KindImage,
	".jpeg":     KindImage,
	".gif":      KindImage,
}

// DetectKind returns the kind for path based on its extension.
func DetectKind(path string) Kind {
	if k, ok := SupportedExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return k
	}
	return KindText
}

// FromFile reads path and returns its passage text. engine is only used for
// images and may be nil otherwise.
func FromFile(ctx context.Context, path string, engine ocr.Engine) (string, error) {
	kind := DetectKind(path)
	if kind == KindImage {
		if engine == nil {
			return "", fmt.Errorf("%s: %w", path, ocr.ErrUnavailable)
		}
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		out, err := ocr.ExtractText(ctx, engine, f)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	switch kind {
	case KindHTML:
		out, err := FromHTML(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return out, nil
	case KindMarkdown:
		return FromMarkdown(data), nil
	default:
		return segment.CleanOCRText(string(data)), nil
	}
}

// ---------------------------------------------------------------------------
// HTML
// ---------------------------------------------------------------------------

// hiddenElements never contribute visible text.
var hiddenElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
}

// blockElements end the current line.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Br: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Tr: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true, atom.Dd: true, atom.Dt: true,
	atom.Figcaption: true, atom.Caption: true,
}

// FromHTML returns the visible text of an HTML document.
func FromHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hiddenElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(collapseSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			sb.WriteByte('\n')
		}
	}
	walk(doc)
	return segment.CleanOCRText(sb.String()), nil
}

// collapseSpace turns source formatting whitespace into single spaces while
// keeping a leading or trailing separator.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

// FromMarkdown returns the prose of a Markdown document. Code blocks and raw
// HTML blocks are dropped; inline code is kept as text.
func FromMarkdown(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				sb.Write(n.Segment.Value(src))
				switch {
				case n.HardLineBreak():
					sb.WriteByte('\n')
				case n.SoftLineBreak():
					sb.WriteByte(' ')
				}
			}
			return ast.WalkContinue, nil
		case *ast.String:
			if entering {
				sb.Write(n.Value)
			}
			return ast.WalkContinue, nil
		}
		if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
			sb.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})
	return segment.CleanOCRText(sb.String())
}
