package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteDocx_Extract(t *testing.T) {
	ctx := context.Background()

	t.Run("posts multipart and decodes text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)

			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, "memo.docx", hdr.Filename)

			json.NewEncoder(w).Encode(map[string]string{"text": "extracted body"})
		}))
		defer srv.Close()

		c := NewRemoteDocx(srv.URL, 5*time.Second, "")
		got, err := c.Extract(ctx, []byte("zipbytes"), "memo.docx")

		assert.NoError(t, err)
		assert.Equal(t, "extracted body", got)
	})

	t.Run("sends api key on a gated endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Api-Key") != "anon-key" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"code": "INVALID_API_KEY"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"text": "hello world"})
		}))
		defer srv.Close()

		c := NewRemoteDocx(srv.URL, 5*time.Second, "anon-key")
		got, err := c.Extract(ctx, []byte("zipbytes"), "memo.docx")

		assert.NoError(t, err)
		assert.Equal(t, "hello world", got)
	})

	t.Run("no header without a configured key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, present := r.Header["X-Api-Key"]
			assert.False(t, present)
			json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
		}))
		defer srv.Close()

		c := NewRemoteDocx(srv.URL, 5*time.Second, "")
		_, err := c.Extract(ctx, []byte("zipbytes"), "memo.docx")
		assert.NoError(t, err)
	})

	t.Run("5xx is an extraction failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewRemoteDocx(srv.URL, 5*time.Second, "")
		_, err := c.Extract(ctx, []byte("zipbytes"), "memo.docx")

		assert.ErrorContains(t, err, "status 502")
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		c := NewRemoteDocx("http://127.0.0.1:1", 500*time.Millisecond, "")
		_, err := c.Extract(ctx, []byte("zipbytes"), "memo.docx")
		assert.ErrorContains(t, err, "docx endpoint")
	})

	t.Run("malformed response body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		c := NewRemoteDocx(srv.URL, 5*time.Second, "")
		_, err := c.Extract(ctx, []byte("zipbytes"), "memo.docx")
		assert.ErrorContains(t, err, "decode response")
	})
}
