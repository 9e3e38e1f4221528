package deliveries

import (
	"context"
	"fmt"

	"pontual-runner/internal/domain"
	"pontual-runner/internal/gateway/backend"
)

// Gateway submits delivery records to the backend system of record and reads
// delivery progress back.
type Gateway struct {
	client *backend.Client
}

// NewGateway creates a deliveries gateway over the given backend client.
func NewGateway(client *backend.Client) *Gateway {
	if client == nil {
		return nil
	}
	return &Gateway{client: client}
}

// Create submits one delivery record.
func (g *Gateway) Create(ctx context.Context, req domain.DeliveryRequest) (*domain.Delivery, error) {
	var d domain.Delivery
	if err := g.client.Post(ctx, "/deliveries", req, &d); err != nil {
		return nil, fmt.Errorf("deliveries gateway: Create: %w", err)
	}
	return &d, nil
}

// Progress fetches the backend's progress view for a route's deliveries.
func (g *Gateway) Progress(ctx context.Context, routeID int64) ([]domain.DeliveryProgress, error) {
	var out []domain.DeliveryProgress
	path := fmt.Sprintf("/deliveries/progress?route_id=%d", routeID)
	if err := g.client.Get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("deliveries gateway: Progress: %w", err)
	}
	return out, nil
}
