// Package ocr turns scanned pages into passage text. Recognition itself is
// delegated to an Engine; the package prepares images for it and tidies the
// text it returns.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/sahaj-english/sahaj/segment"
)

// ErrUnavailable is returned by engines that were not compiled in.
var ErrUnavailable = errors.New("ocr engine not available in this build")

// Engine recognizes text in a PNG image.
type Engine interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// DefaultLanguages are the tesseract language packs used when none are given.
var DefaultLanguages = []string{"eng"}

// ExtractText decodes an image from r, prepares it and runs engine over it.
// The recognized text is cleaned up before it is returned.
func ExtractText(ctx context.Context, engine Engine, r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Prepare(img)); err != nil {
		return "", fmt.Errorf("encode prepared image: %w", err)
	}

	text, err := engine.Recognize(ctx, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return segment.CleanOCRText(text), nil
}
