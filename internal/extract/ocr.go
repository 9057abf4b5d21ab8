//go:build cgo
// +build cgo

package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// tesseractEngine is an OCREngine backed by the Tesseract library. The
// language is fixed at construction time; there is no per-call detection.
type tesseractEngine struct {
	lang string
}

// NewTesseract returns an OCREngine using the given Tesseract language code
// (e.g. "eng"). Requires libtesseract at build and run time.
func NewTesseract(lang string) (OCREngine, error) {
	if lang == "" {
		return nil, fmt.Errorf("ocr language is required")
	}
	return &tesseractEngine{lang: lang}, nil
}

func (t *tesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.lang); err != nil {
		return "", fmt.Errorf("ocr set language %q: %w", t.lang, err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("ocr set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr recognize: %w", err)
	}
	return text, nil
}
