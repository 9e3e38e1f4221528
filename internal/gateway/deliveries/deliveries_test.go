package deliveries_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pontual-runner/internal/domain"
	"pontual-runner/internal/gateway/backend"
	"pontual-runner/internal/gateway/deliveries"
)

func TestGateway_Create(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/deliveries", r.URL.Path)

		var req domain.DeliveryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(7), req.RouteID)
		require.Equal(t, "Entrega para: Mercado - Rua A", req.Notes)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42, "route_id": 7, "status": "pending"}`))
	}))
	defer srv.Close()

	g := deliveries.NewGateway(backend.New(srv.URL, time.Second))

	d, err := g.Create(context.Background(), domain.DeliveryRequest{
		RouteID:       7,
		ScheduledDate: "2025-03-14T09:30",
		Notes:         "Entrega para: Mercado - Rua A",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), d.ID)
	require.Equal(t, domain.DeliveryPending, d.Status)
}

func TestGateway_Progress(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/deliveries/progress", r.URL.Path)
		require.Equal(t, "7", r.URL.Query().Get("route_id"))
		_, _ = w.Write([]byte(`[{"delivery_id": 1, "route_id": 7, "total_points": 3, "completed_points": 1}]`))
	}))
	defer srv.Close()

	g := deliveries.NewGateway(backend.New(srv.URL, time.Second))

	out, err := g.Progress(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 3, out[0].TotalPoints)
	require.Equal(t, 1, out[0].CompletedPoints)
}
