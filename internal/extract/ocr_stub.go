//go:build !cgo
// +build !cgo

package extract

import "errors"

// NewTesseract stub when built without CGO (see ocr.go for the real implementation).
func NewTesseract(_ string) (OCREngine, error) {
	return nil, errors.New("OCR requires CGO; build with CGO_ENABLED=1 and libtesseract installed")
}
