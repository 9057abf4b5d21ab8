package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// RemoteDocx is a DocxExtractor that posts the raw file to an extraction
// endpoint as a multipart form and reads back {"text": ...}. It is the only
// strategy that crosses the network, so timeouts and 5xx responses surface
// here as extraction failures.
type RemoteDocx struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewRemoteDocx builds a client for the given endpoint URL. The endpoint sits
// behind the same API-key gate as every other route, so the configured key is
// sent with each request; an empty key sends no header.
func NewRemoteDocx(endpoint string, timeout time.Duration, apiKey string) *RemoteDocx {
	return &RemoteDocx{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type docxResponse struct {
	Text string `json:"text"`
}

func (r *RemoteDocx) Extract(ctx context.Context, data []byte, fileName string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("docx request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("docx request: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("docx request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("docx request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if r.apiKey != "" {
		req.Header.Set("X-Api-Key", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("docx endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the log line, then drop it.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("docx endpoint: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out docxResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("docx endpoint: decode response: %w", err)
	}
	return out.Text, nil
}
