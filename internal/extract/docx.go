package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// docxBodyPath is where OOXML keeps the main document body.
const docxBodyPath = "word/document.xml"

// textNode matches <w:t>...</w:t> including nodes with attributes such as
// xml:space="preserve". Matching text nodes instead of paragraphs keeps
// content extractable from documents whose runs carry revision attributes.
var textNode = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// DocxText extracts the plain text of a DOCX file. It backs the
// /api/extract-docx endpoint; the dispatcher reaches it over HTTP.
func DocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: not a zip archive: %w", err)
	}

	var body []byte
	for _, f := range zr.File {
		if f.Name != docxBodyPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("docx: open %s: %w", f.Name, err)
		}
		body, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("docx: read %s: %w", f.Name, err)
		}
		break
	}
	if body == nil {
		return "", fmt.Errorf("docx: %s not found", docxBodyPath)
	}

	matches := textNode.FindAllSubmatch(body, -1)
	if len(matches) == 0 {
		return "", nil
	}
	var b strings.Builder
	for i, m := range matches {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.Write(bytes.TrimSpace(m[1]))
	}
	return strings.TrimSpace(b.String()), nil
}
