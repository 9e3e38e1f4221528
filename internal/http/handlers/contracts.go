package handlers

import (
	"context"

	"pontual-runner/internal/domain"
	"pontual-runner/internal/gateway/deliveries"
	"pontual-runner/internal/gateway/routes"
	"pontual-runner/internal/service/execution"
)

type executionUsecase interface {
	AvailableRoutes(ctx context.Context) ([]domain.Route, error)
	SelfAssign(ctx context.Context, routeID int64) (domain.Assignment, error)
	Assignment(ctx context.Context) (*domain.Assignment, error)
	View(ctx context.Context) (*execution.RouteView, error)
	CompletePoint(ctx context.Context, pointID int64, photoRef string) error
	Progress(ctx context.Context) (domain.RouteProgress, error)
	Finish(ctx context.Context) (execution.FinishResult, error)
}

// NewExecutionUsecase wires an execution Engine into an executionUsecase.
func NewExecutionUsecase(engine *execution.Engine) executionUsecase {
	return engine
}

type dispatchGateway interface {
	Assign(ctx context.Context, routeID, driverID int64) (*domain.Route, error)
	ListForDriver(ctx context.Context, driverID int64) ([]domain.Route, error)
}

// NewDispatchGateway wires the retrying routes gateway into a dispatchGateway.
func NewDispatchGateway(gw *routes.Retrying) dispatchGateway {
	return gw
}

type progressReader interface {
	Progress(ctx context.Context, routeID int64) ([]domain.DeliveryProgress, error)
}

// NewProgressReader wires the deliveries gateway into a progressReader.
func NewProgressReader(gw *deliveries.Gateway) progressReader {
	return gw
}
