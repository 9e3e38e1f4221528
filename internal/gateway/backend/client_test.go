package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pontual-runner/internal/apperr"
	"pontual-runner/internal/gateway/backend"
)

func TestClient_GetDecodesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/routes/7", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "name": "Rota Sul"}`))
	}))
	defer srv.Close()

	c := backend.New(srv.URL, time.Second)

	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, c.Get(context.Background(), "/routes/7", &out))
	require.Equal(t, int64(7), out.ID)
	require.Equal(t, "Rota Sul", out.Name)
}

func TestClient_PostSendsJSONBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.EqualValues(t, 7, body["route_id"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer srv.Close()

	c := backend.New(srv.URL, time.Second)

	var out struct {
		ID int64 `json:"id"`
	}
	req := map[string]any{"route_id": 7}
	require.NoError(t, c.Post(context.Background(), "/deliveries", req, &out))
	require.Equal(t, int64(42), out.ID)
}

func TestClient_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := backend.New(srv.URL, time.Second)

	err := c.Get(context.Background(), "/routes/999", nil)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.False(t, apperr.IsTransport(err))
}

func TestClient_RemoteError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := backend.New(srv.URL, time.Second)

	err := c.Get(context.Background(), "/routes", nil)
	var remote *apperr.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, http.StatusInternalServerError, remote.Status)
	require.False(t, apperr.IsTransport(err))
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := backend.New(srv.URL, time.Second)

	err := c.Get(context.Background(), "/routes", nil)
	require.True(t, apperr.IsTransport(err))
}

func TestClient_NilOutDiscardsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"whatever": true}`))
	}))
	defer srv.Close()

	c := backend.New(srv.URL, time.Second)
	require.NoError(t, c.Post(context.Background(), "/ack", map[string]int{"n": 1}, nil))
}
