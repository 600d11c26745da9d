package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.APIKey = "test-key"
	return cfg
}

func ollamaConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Provider = ProviderOllama
	cfg.Endpoint = endpoint
	cfg.Model = "llama3.2"
	return cfg
}

func writeGemini(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{
			map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
				"finishReason": "STOP",
			},
		},
	})
}

func TestGemini_Complete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "plan my party", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 0.7, req.GenerationConfig.Temperature)
		assert.Equal(t, 8192, req.GenerationConfig.MaxOutputTokens)

		writeGemini(w, `{"eventSchedule":[]}`)
	}))
	defer srv.Close()

	c, err := New(geminiConfig(srv.URL), NoopObserver{})
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "plan my party")
	require.NoError(t, err)
	assert.Equal(t, `{"eventSchedule":[]}`, text)
}

func TestGemini_Complete_JoinsParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{
					map[string]any{"text": "<html>"},
					map[string]any{"text": "</html>"},
				}}},
			},
		})
	}))
	defer srv.Close()

	c, err := New(geminiConfig(srv.URL), nil)
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", text)
}

func TestGemini_Complete_BlockedPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	c, err := New(geminiConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestGemini_RequiresAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "carrier-pigeon"
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestOllama_Complete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, "hello", req.Prompt)

		json.NewEncoder(w).Encode(ollamaResponse{Model: "llama3.2", Response: "hi there"})
	}))
	defer srv.Close()

	c, err := New(ollamaConfig(srv.URL), nil)
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
}

func TestComplete_UpstreamErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c, err := New(ollamaConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Model: "llama3.2", Response: "   "})
	}))
	defer srv.Close()

	c, err := New(ollamaConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestComplete_Unavailable(t *testing.T) {
	c, err := New(ollamaConfig("http://127.0.0.1:1"), nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		json.NewEncoder(w).Encode(ollamaResponse{Response: "late"})
	}))
	defer srv.Close()

	cfg := ollamaConfig(srv.URL)
	cfg.TimeoutMs = 50

	var captured CallEvent
	c, err := New(cfg, &captureObserver{fn: func(e CallEvent) { captured = e }})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, captured.Success)
	assert.Equal(t, "TIMEOUT", captured.ErrorCode)
}

func TestComplete_ObserverCalled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGemini(w, "ok")
	}))
	defer srv.Close()

	var captured CallEvent
	c, err := New(geminiConfig(srv.URL), &captureObserver{fn: func(e CallEvent) { captured = e }})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, captured.Success)
	assert.Equal(t, ProviderGemini, captured.Provider)
	assert.Equal(t, "gemini-2.0-flash", captured.Model)
	assert.GreaterOrEqual(t, captured.LatencyMs, int64(0))
}

type captureObserver struct {
	fn func(CallEvent)
}

func (o *captureObserver) OnCallComplete(e CallEvent) { o.fn(e) }
