package rewrite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Rewrite(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rewrite", r.URL.Path)

		var req rewriteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello there", req.Text)

		json.NewEncoder(w).Encode(rewriteResponse{Text: "greetings"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	out, err := c.Rewrite(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "greetings", out)
}

func TestClient_RewriteNonOKStatus(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Rewrite(context.Background(), "hello")
	assert.Error(t, err)
}

func TestClient_RewriteHonorsContext(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(server.URL)
	_, err := c.Rewrite(ctx, "hello")
	assert.Error(t, err)
}
