package routes

import (
	"context"
	"fmt"

	"pontual-runner/internal/domain"
	"pontual-runner/internal/gateway/backend"
)

// Gateway reads route definitions from the backend and performs the
// dispatcher-side assignment call. It never touches local state.
type Gateway struct {
	client *backend.Client
}

// NewGateway creates a routes gateway over the given backend client.
func NewGateway(client *backend.Client) *Gateway {
	if client == nil {
		return nil
	}
	return &Gateway{client: client}
}

// ListAssignable fetches the routes the backend considers offerable. The
// client trusts the returned list; offerability policy lives server-side.
func (g *Gateway) ListAssignable(ctx context.Context) ([]domain.Route, error) {
	var routes []domain.Route
	if err := g.client.Get(ctx, "/routes", &routes); err != nil {
		return nil, fmt.Errorf("routes gateway: ListAssignable: %w", err)
	}
	return routes, nil
}

// Get fetches a single route definition by id.
func (g *Gateway) Get(ctx context.Context, id int64) (*domain.Route, error) {
	var route domain.Route
	if err := g.client.Get(ctx, fmt.Sprintf("/routes/%d", id), &route); err != nil {
		return nil, fmt.Errorf("routes gateway: Get: %w", err)
	}
	return &route, nil
}

type assignRequest struct {
	RouteID  int64 `json:"route_id"`
	DriverID int64 `json:"driver_id"`
}

// Assign performs the remote, authoritative assignment of a route to a
// driver. Used by dispatcher flows, not by the driver's local self-service
// pick.
func (g *Gateway) Assign(ctx context.Context, routeID, driverID int64) (*domain.Route, error) {
	var route domain.Route
	req := assignRequest{RouteID: routeID, DriverID: driverID}
	if err := g.client.Post(ctx, "/routes/assign", req, &route); err != nil {
		return nil, fmt.Errorf("routes gateway: Assign: %w", err)
	}
	return &route, nil
}

// ListForDriver fetches the routes currently assigned to a driver.
func (g *Gateway) ListForDriver(ctx context.Context, driverID int64) ([]domain.Route, error) {
	var routes []domain.Route
	if err := g.client.Get(ctx, fmt.Sprintf("/drivers/%d/routes", driverID), &routes); err != nil {
		return nil, fmt.Errorf("routes gateway: ListForDriver: %w", err)
	}
	return routes, nil
}
