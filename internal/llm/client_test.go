package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T, status int, content string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestCompleteJSON_OK(t *testing.T) {
	srv, captured := fakeServer(t, http.StatusOK, ` {"amount": 12} `)
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"}, nil)

	out, err := c.CompleteJSON(context.Background(), "sys", "user text")
	require.NoError(t, err)
	assert.Equal(t, `{"amount": 12}`, out)

	req := *captured
	assert.Equal(t, "test-model", req["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])
	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user text", msgs[1].(map[string]any)["content"])
}

func TestCompleteJSON_MissingKey(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.CompleteJSON(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCompleteJSON_EmptyContent(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, "   ")
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)

	_, err := c.CompleteJSON(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteJSON_ServerError(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusInternalServerError, "")
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)

	_, err := c.CompleteJSON(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}
