package execution

import (
	"context"

	"pontual-runner/internal/domain"
	"pontual-runner/internal/service/materialize"
)

type routeGateway interface {
	ListAssignable(ctx context.Context) ([]domain.Route, error)
	Get(ctx context.Context, id int64) (*domain.Route, error)
}

type materializer interface {
	Materialize(ctx context.Context, route *domain.Route, points []domain.RoutePoint) (materialize.Result, error)
}
