//go:build !tesseract

package ocr

import "context"

type unavailableEngine struct{}

// NewEngine returns an engine that always fails with ErrUnavailable. Build
// with -tags tesseract for the real one.
func NewEngine(langs ...string) Engine {
	return unavailableEngine{}
}

func (unavailableEngine) Recognize(ctx context.Context, png []byte) (string, error) {
	return "", ErrUnavailable
}

// Available reports whether a real engine is compiled in.
func Available() bool { return false }
