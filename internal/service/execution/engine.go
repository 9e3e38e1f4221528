package execution

import (
	"context"
	"time"

	"pontual-runner/internal/apperr"
	"pontual-runner/internal/domain"
	"pontual-runner/internal/logx"
	"pontual-runner/internal/service/materialize"
	"pontual-runner/internal/store"
)

// Engine drives the assigned route through its lifecycle: self-assign, load,
// complete points one by one, finish. It combines the local store (completion
// state) with the routes gateway (route definitions) and hands the finished
// route to the materializer.
//
// The engine takes no locks; the owning transport layer serializes
// driver-triggered operations, mirroring how the original single-screen flow
// behaved.
type Engine struct {
	store        store.Store
	gateway      routeGateway
	materializer materializer
	logger       logx.Logger

	operationTimeout time.Duration

	// current is the route definition loaded for the active assignment.
	// Reset on self-assign and on finish.
	current *domain.Route
}

// NewEngine creates a route execution engine.
func NewEngine(st store.Store, gw routeGateway, mat materializer, timeout time.Duration, logger logx.Logger) *Engine {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Engine{
		store:            st,
		gateway:          gw,
		materializer:     mat,
		logger:           logger,
		operationTimeout: timeout,
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.operationTimeout)
}

// AvailableRoutes lists the routes the backend offers for self-assignment.
func (e *Engine) AvailableRoutes(ctx context.Context) ([]domain.Route, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.gateway.ListAssignable(ctx)
}

// SelfAssign records the driver's pick of an offered route. Purely local
// bookkeeping: the remote dispatcher assignment is a separate flow. An
// existing assignment is silently overwritten.
func (e *Engine) SelfAssign(ctx context.Context, routeID int64) (domain.Assignment, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	offered, err := e.gateway.ListAssignable(ctx)
	if err != nil {
		return domain.Assignment{}, err
	}

	var picked *domain.Route
	for i := range offered {
		if offered[i].ID == routeID {
			picked = &offered[i]
			break
		}
	}
	if picked == nil {
		return domain.Assignment{}, apperr.ErrNotFound
	}

	if err := e.store.Assign(ctx, picked.ID, picked.Name); err != nil {
		return domain.Assignment{}, err
	}
	e.current = nil

	e.logger.Info("route self-assigned",
		logx.String("event", "route_self_assigned"),
		logx.Int64("route_id", picked.ID),
		logx.String("route_name", picked.Name),
	)
	return domain.Assignment{RouteID: picked.ID, RouteName: picked.Name}, nil
}

// Assignment returns the current local assignment, or nil when none exists.
func (e *Engine) Assignment(ctx context.Context) (*domain.Assignment, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.store.Assignment(ctx)
}

// Load fetches the route definition for the current assignment and caches it
// for the membership checks that follow. Gateway errors pass through and
// leave local state untouched, so Load is safely retryable.
func (e *Engine) Load(ctx context.Context) (*domain.Route, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.load(ctx)
}

func (e *Engine) load(ctx context.Context) (*domain.Route, error) {
	assignment, err := e.store.Assignment(ctx)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, apperr.ErrNotAssigned
	}

	route, err := e.gateway.Get(ctx, assignment.RouteID)
	if err != nil {
		return nil, err
	}
	e.current = route
	return route, nil
}

// loadedRoute returns the cached route definition, loading it first when the
// engine has none (fresh process, completion before the screen opened).
func (e *Engine) loadedRoute(ctx context.Context) (*domain.Route, error) {
	if e.current != nil {
		return e.current, nil
	}
	return e.load(ctx)
}

// CompletePoint marks one stop of the assigned route done, with an optional
// photo reference. Completion is local only; nothing is sent to the backend
// until the route finishes. Re-completing a point keeps the count unchanged
// and overwrites the photo when a new one is given.
func (e *Engine) CompletePoint(ctx context.Context, pointID int64, photoRef string) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	route, err := e.loadedRoute(ctx)
	if err != nil {
		return err
	}
	if !route.HasPoint(pointID) {
		return apperr.ErrPointNotInRoute
	}

	if err := e.store.CompletePoint(ctx, pointID, photoRef); err != nil {
		return err
	}

	e.logger.Info("point completed",
		logx.String("event", "point_completed"),
		logx.Int64("route_id", route.ID),
		logx.Int64("point_id", pointID),
	)
	return nil
}

// Progress returns the local completion state for the assigned route. A
// zero-point route counts as fully complete.
func (e *Engine) Progress(ctx context.Context) (domain.RouteProgress, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	route, err := e.loadedRoute(ctx)
	if err != nil {
		return domain.RouteProgress{}, err
	}
	done, err := e.store.CompletedCount(ctx)
	if err != nil {
		return domain.RouteProgress{}, err
	}
	return domain.RouteProgress{Completed: done, Total: len(route.Points)}, nil
}

// PointView is one stop of the assigned route together with its local
// completion state.
type PointView struct {
	Point     domain.RoutePoint
	Completed bool
	PhotoRef  string
}

// RouteView is the driver-facing snapshot of the assigned route: the ordered
// stops, their completion state and the overall progress.
type RouteView struct {
	Route    *domain.Route
	Points   []PointView
	Progress domain.RouteProgress
}

// View loads the assigned route and merges in the local completion state,
// walking the stops in sequence order.
func (e *Engine) View(ctx context.Context) (*RouteView, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	route, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	ordered := route.OrderedPoints()
	points := make([]PointView, 0, len(ordered))
	done := 0
	for _, p := range ordered {
		completed, err := e.store.IsCompleted(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		photo, err := e.store.Photo(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if completed {
			done++
		}
		points = append(points, PointView{Point: p, Completed: completed, PhotoRef: photo})
	}

	return &RouteView{
		Route:    route,
		Points:   points,
		Progress: domain.RouteProgress{Completed: done, Total: len(ordered)},
	}, nil
}

// FinishResult reports the outcome of finishing a route. Warning is set when
// no delivery could be recorded for a non-empty route; the local finish still
// went through.
type FinishResult struct {
	RouteID int64
	Created int
	Failed  int
	Warning bool
}

// Finish completes the route: every stop must be done, the stops are
// materialized as delivery records, and the local assignment is cleared.
// Clearing is unconditional once materialization was attempted: delivery
// failures must not trap the driver mid-route. The whole step is a
// non-cancellable critical section for the caller.
func (e *Engine) Finish(ctx context.Context) (FinishResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	route, err := e.loadedRoute(ctx)
	if err != nil {
		return FinishResult{}, err
	}

	allDone, err := e.store.AllCompleted(ctx, len(route.Points))
	if err != nil {
		return FinishResult{}, err
	}
	if !allDone {
		return FinishResult{}, apperr.ErrRouteNotAllComplete
	}

	points := route.OrderedPoints()
	res, err := e.materializer.Materialize(ctx, route, points)
	if err != nil {
		// Could not attempt any submission. The guard already passed, so
		// still release the driver; report zero created.
		e.logger.Error("materialize failed entirely",
			logx.Int64("route_id", route.ID),
			logx.Any("err", err),
		)
		res = materialize.Result{Created: 0, Failed: len(points)}
	}

	if err := e.store.Finish(ctx); err != nil {
		return FinishResult{}, err
	}
	e.current = nil

	out := FinishResult{
		RouteID: route.ID,
		Created: res.Created,
		Failed:  res.Failed,
		Warning: res.Created == 0 && len(points) > 0,
	}
	e.logger.Info("route finished",
		logx.String("event", "route_finished"),
		logx.Int64("route_id", route.ID),
		logx.Int("deliveries_created", out.Created),
		logx.Int("deliveries_failed", out.Failed),
	)
	return out, nil
}

// Abandon drops the local assignment and completion state without creating
// deliveries. Used by the logout flow.
func (e *Engine) Abandon(ctx context.Context) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.store.Finish(ctx); err != nil {
		return err
	}
	e.current = nil
	e.logger.Info("route abandoned", logx.String("event", "route_abandoned"))
	return nil
}
