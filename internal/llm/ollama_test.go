package llm

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

// newBackend spins up a fake Ollama server. The tags endpoint always
// reports the model as present so construction does not trigger a pull.
func newBackend(t *testing.T, generate http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{{"name": "test-model", "model": "test-model"}},
		})
	})
	mux.HandleFunc("/api/generate", generate)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientGenerate(t *testing.T) {
	var gotModel string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel, _ = req["model"].(string)

		w.Header().Set("Content-Type", "application/x-ndjson")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "test-model",
			"response": `{"compliance_score": 7}`,
			"done":     true,
		})
	})

	c, err := NewClient(Options{Model: "test-model", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "grade this")
	require.NoError(t, err)
	assert.Equal(t, `{"compliance_score": 7}`, out)
	assert.Equal(t, "test-model", gotModel)
}

func TestClientGenerate_BackendDown(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {})
	url := srv.URL
	srv.Close()

	c, err := NewClient(Options{Model: "test-model", BaseURL: url})
	require.NoError(t, err, "construction must survive an unreachable backend")

	_, err = c.Generate(context.Background(), "grade this")
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestClientGenerate_Timeout(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	c, err := NewClient(Options{Model: "test-model", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "grade this")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestClientGenerate_ServerError(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})

	c, err := NewClient(Options{Model: "test-model", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "grade this")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestNewClient_RequiresModel(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
}
