package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(url string) *ClaudeAnalyzer {
	return NewClaudeAnalyzer("sk-test", "claude-sonnet-4-5", anthropic.WithBaseURL(url))
}

func TestClaudeAnalyze(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		resp := map[string]any{
			"id":    "msg_1",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-sonnet-4-5",
			"content": []map[string]any{
				{"type": "text", "text": "manufacturer: Carestream\nmodel: CS 8100\nserial: KHBM1234\nmanufactured: 2021"},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 10, "output_tokens": 20},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	np, err := newTestAnalyzer(server.URL).Analyze(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", gotKey)
	assert.Equal(t, "claude-sonnet-4-5", gotBody["model"])
	assert.Equal(t, "Carestream", np.Manufacturer)
	assert.Equal(t, "CS 8100", np.Model)
	assert.Equal(t, "KHBM1234", np.Serial)
	assert.Equal(t, "2021", np.Manufactured)
}

func TestClaudeAnalyzeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	_, err := newTestAnalyzer(server.URL).Analyze(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	assert.Error(t, err)
}

func TestClaudeAnalyzeReadError(t *testing.T) {
	_, err := newTestAnalyzer("http://127.0.0.1:0").Analyze(context.Background(), &errReader{}, "image/jpeg")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestNormaliseMIME(t *testing.T) {
	assert.Equal(t, "image/png", normaliseMIME("image/png"))
	assert.Equal(t, "image/jpeg", normaliseMIME("image/heic"))
}

// errReader always returns an error on Read.
type errReader struct{}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
