// Package extract turns uploaded binaries into plain text.
//
// Dispatch is by file-name extension: images go through Tesseract OCR, PDFs
// through their embedded text layer, and DOCX files through a remote
// extraction endpoint. Every strategy reports one of three outcomes: trimmed
// text, ErrEmptyContent, or a wrapped strategy failure. The legacy convention
// of signalling OCR failure through a sentinel substring in the returned text
// is normalized here into a real error so callers only ever check the error
// channel.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// FailureSentinel is the reserved substring older extraction tooling embeds
// in its output instead of failing. Content carrying it is never persisted.
const FailureSentinel = "OCR_FAILED_ERROR"

var (
	// ErrUnsupportedType means the file extension maps to no strategy.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrEmptyContent means extraction ran but produced nothing after trimming.
	ErrEmptyContent = errors.New("extracted content is empty")
	// ErrFailureSentinel means the output carried the reserved failure marker.
	ErrFailureSentinel = errors.New("extracted content contains failure sentinel")

	errOCRUnavailable = errors.New("no OCR engine configured")
)

// OCREngine recognizes text in an image. Implementations are a black box;
// the dispatcher only consumes their text and error.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// DocxExtractor extracts text from a DOCX file. The production implementation
// calls a remote endpoint, making it the one strategy with network failure modes.
type DocxExtractor interface {
	Extract(ctx context.Context, data []byte, fileName string) (string, error)
}

// Dispatcher selects an extraction strategy per file and normalizes its output.
type Dispatcher struct {
	ocr  OCREngine
	docx DocxExtractor
}

// NewDispatcher wires the two pluggable strategies. The PDF strategy is
// in-process and needs no injection.
func NewDispatcher(ocr OCREngine, docx DocxExtractor) *Dispatcher {
	return &Dispatcher{ocr: ocr, docx: docx}
}

// IsSupported reports whether a file name maps to an extraction strategy.
func IsSupported(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".png", ".jpg", ".jpeg", ".pdf", ".docx":
		return true
	}
	return false
}

// Extract dispatches on the file extension and returns normalized text.
// Unsupported extensions fail with ErrUnsupportedType before any extraction
// library is touched.
func (d *Dispatcher) Extract(ctx context.Context, data []byte, fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	var (
		text string
		err  error
	)
	switch ext {
	case ".png", ".jpg", ".jpeg":
		if d.ocr == nil {
			return "", fmt.Errorf("extract %s: %w", ext, errOCRUnavailable)
		}
		text, err = d.ocr.Recognize(ctx, data)
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = d.docx.Extract(ctx, data, fileName)
	default:
		return "", ErrUnsupportedType
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", ext, err)
	}

	return Normalize(text)
}

// Normalize trims extraction output and maps the two content-channel failure
// conventions (empty text, embedded sentinel) onto typed errors. It is also
// used on caller-supplied pre-extracted content so both paths obey the same
// persistence invariant.
func Normalize(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyContent
	}
	if strings.Contains(text, FailureSentinel) {
		return "", ErrFailureSentinel
	}
	return text, nil
}
