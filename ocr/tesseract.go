//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// tesseractEngine runs recognition through libtesseract. A fresh client is
// created per call; gosseract clients are not safe for concurrent use.
type tesseractEngine struct {
	langs []string
}

// NewEngine returns a tesseract engine for langs (DefaultLanguages if none).
func NewEngine(langs ...string) Engine {
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	return &tesseractEngine{langs: langs}
}

func (e *tesseractEngine) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetLanguage(e.langs...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Available reports whether a real engine is compiled in.
func Available() bool { return true }
