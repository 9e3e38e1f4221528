package execution_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pontual-runner/internal/apperr"
	"pontual-runner/internal/domain"
	"pontual-runner/internal/service/execution"
	"pontual-runner/internal/service/materialize"
	"pontual-runner/internal/store"
	testlog "pontual-runner/internal/testutil"
)

type stubGateway struct {
	listFn func(context.Context) ([]domain.Route, error)
	getFn  func(context.Context, int64) (*domain.Route, error)
}

func (s *stubGateway) ListAssignable(ctx context.Context) ([]domain.Route, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s *stubGateway) Get(ctx context.Context, id int64) (*domain.Route, error) {
	if s.getFn == nil {
		return nil, apperr.ErrNotFound
	}
	return s.getFn(ctx, id)
}

type stubMaterializer struct {
	calls  int
	points []domain.RoutePoint
	fn     func(*domain.Route, []domain.RoutePoint) (materialize.Result, error)
}

func (s *stubMaterializer) Materialize(_ context.Context, route *domain.Route, points []domain.RoutePoint) (materialize.Result, error) {
	s.calls++
	s.points = points
	if s.fn == nil {
		return materialize.Result{Created: len(points)}, nil
	}
	return s.fn(route, points)
}

func testRoute() *domain.Route {
	return &domain.Route{
		ID:   7,
		Name: "Rota Centro",
		Points: []domain.RoutePoint{
			{ID: 30, RouteID: 7, DeliveryPointID: 3, Sequence: 3, DeliveryPoint: domain.DeliveryPoint{ID: 3, Name: "Padaria", Address: "Rua C, 3"}},
			{ID: 10, RouteID: 7, DeliveryPointID: 1, Sequence: 1, DeliveryPoint: domain.DeliveryPoint{ID: 1, Name: "Mercado", Address: "Rua A, 1"}},
			{ID: 20, RouteID: 7, DeliveryPointID: 2, Sequence: 2, DeliveryPoint: domain.DeliveryPoint{ID: 2, Name: "Farmácia", Address: "Rua B, 2"}},
		},
	}
}

func newTestEngine(st store.Store, gw *stubGateway, mat *stubMaterializer) *execution.Engine {
	rec := testlog.New()
	return execution.NewEngine(st, gw, mat, 3*time.Second, rec.Logger())
}

func TestEngine_SelfAssign_PicksOfferedRoute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	route := testRoute()
	gw := &stubGateway{
		listFn: func(context.Context) ([]domain.Route, error) {
			return []domain.Route{{ID: 1, Name: "Outra"}, *route}, nil
		},
	}
	eng := newTestEngine(st, gw, &stubMaterializer{})

	a, err := eng.SelfAssign(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), a.RouteID)
	require.Equal(t, "Rota Centro", a.RouteName)

	stored, err := st.Assignment(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, int64(7), stored.RouteID)
}

func TestEngine_SelfAssign_NotOffered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	gw := &stubGateway{
		listFn: func(context.Context) ([]domain.Route, error) {
			return []domain.Route{{ID: 1, Name: "Outra"}}, nil
		},
	}
	eng := newTestEngine(st, gw, &stubMaterializer{})

	_, err := eng.SelfAssign(ctx, 7)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	stored, err := st.Assignment(ctx)
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestEngine_SelfAssign_OverwritesSilently(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 1, "Antiga"))

	route := testRoute()
	gw := &stubGateway{
		listFn: func(context.Context) ([]domain.Route, error) {
			return []domain.Route{*route}, nil
		},
	}
	eng := newTestEngine(st, gw, &stubMaterializer{})

	_, err := eng.SelfAssign(ctx, 7)
	require.NoError(t, err)

	stored, err := st.Assignment(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7), stored.RouteID)
}

func TestEngine_Load_RequiresAssignment(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(store.NewMemory(), &stubGateway{}, &stubMaterializer{})

	_, err := eng.Load(context.Background())
	require.ErrorIs(t, err, apperr.ErrNotAssigned)
}

func TestEngine_Load_PassesGatewayErrorsThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))

	transport := &apperr.TransportError{Op: "GET /routes/7", Err: errors.New("dial tcp: refused")}
	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) { return nil, transport },
	}
	eng := newTestEngine(st, gw, &stubMaterializer{})

	_, err := eng.Load(ctx)
	require.True(t, apperr.IsTransport(err))

	// local state untouched, retry is safe
	a, err := st.Assignment(ctx)
	require.NoError(t, err)
	require.NotNil(t, a)
}

func TestEngine_CompletePoint_RejectsForeignPoint(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))

	route := testRoute()
	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) { return route, nil },
	}
	eng := newTestEngine(st, gw, &stubMaterializer{})

	_, err := eng.Load(ctx)
	require.NoError(t, err)

	err = eng.CompletePoint(ctx, 999, "")
	require.ErrorIs(t, err, apperr.ErrPointNotInRoute)

	n, err := st.CompletedCount(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestEngine_CompletePoint_IdempotentWithPhotoOverwrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))

	route := testRoute()
	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) { return route, nil },
	}
	eng := newTestEngine(st, gw, &stubMaterializer{})

	require.NoError(t, eng.CompletePoint(ctx, 10, "file:///a.jpg"))
	require.NoError(t, eng.CompletePoint(ctx, 10, "file:///b.jpg"))

	n, err := st.CompletedCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	photo, err := st.Photo(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "file:///b.jpg", photo)
}

func TestEngine_Progress(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))

	route := testRoute()
	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) { return route, nil },
	}
	eng := newTestEngine(st, gw, &stubMaterializer{})

	p, err := eng.Progress(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.RouteProgress{Completed: 0, Total: 3}, p)
	require.False(t, p.AllComplete())
	require.Zero(t, p.Fraction())

	require.NoError(t, eng.CompletePoint(ctx, 10, ""))
	require.NoError(t, eng.CompletePoint(ctx, 20, ""))

	p, err = eng.Progress(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, p.Completed)
	require.InDelta(t, 2.0/3.0, p.Fraction(), 1e-9)
}

func TestEngine_Progress_ZeroPointRouteIsComplete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Vazia"))

	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) {
			return &domain.Route{ID: 7, Name: "Rota Vazia"}, nil
		},
	}
	eng := newTestEngine(st, gw, &stubMaterializer{})

	p, err := eng.Progress(ctx)
	require.NoError(t, err)
	require.True(t, p.AllComplete())
	require.Zero(t, p.Fraction())
}

func TestEngine_Finish_GuardRejectsEarlyFinish(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))

	route := testRoute()
	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) { return route, nil },
	}
	mat := &stubMaterializer{}
	eng := newTestEngine(st, gw, mat)

	_, err := eng.Finish(ctx)
	require.ErrorIs(t, err, apperr.ErrRouteNotAllComplete)
	require.Zero(t, mat.calls, "materializer must not be called on rejected finish")

	// assignment untouched
	a, err := st.Assignment(ctx)
	require.NoError(t, err)
	require.NotNil(t, a)
	require.Equal(t, int64(7), a.RouteID)
}

func TestEngine_Finish_HappyPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))

	route := testRoute()
	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) { return route, nil },
	}
	mat := &stubMaterializer{}
	eng := newTestEngine(st, gw, mat)

	for _, id := range []int64{10, 20, 30} {
		require.NoError(t, eng.CompletePoint(ctx, id, ""))
	}

	res, err := eng.Finish(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, mat.calls)
	require.Equal(t, 3, res.Created)
	require.Zero(t, res.Failed)
	require.False(t, res.Warning)

	// materializer received the full point list in sequence order
	require.Len(t, mat.points, 3)
	require.Equal(t, int64(10), mat.points[0].ID)
	require.Equal(t, int64(20), mat.points[1].ID)
	require.Equal(t, int64(30), mat.points[2].ID)

	a, err := st.Assignment(ctx)
	require.NoError(t, err)
	require.Nil(t, a)

	n, err := st.CompletedCount(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestEngine_Finish_WarnsWhenNothingCreated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))

	route := testRoute()
	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) { return route, nil },
	}
	mat := &stubMaterializer{
		fn: func(_ *domain.Route, points []domain.RoutePoint) (materialize.Result, error) {
			return materialize.Result{Created: 0, Failed: len(points)}, nil
		},
	}
	eng := newTestEngine(st, gw, mat)

	for _, id := range []int64{10, 20, 30} {
		require.NoError(t, eng.CompletePoint(ctx, id, ""))
	}

	res, err := eng.Finish(ctx)
	require.NoError(t, err)
	require.True(t, res.Warning)
	require.Equal(t, 3, res.Failed)

	// local finish still happened
	a, err := st.Assignment(ctx)
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestEngine_Finish_MaterializerErrorStillClears(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))

	route := testRoute()
	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) { return route, nil },
	}
	mat := &stubMaterializer{
		fn: func(*domain.Route, []domain.RoutePoint) (materialize.Result, error) {
			return materialize.Result{}, errors.New("gateway misconfigured")
		},
	}
	eng := newTestEngine(st, gw, mat)

	for _, id := range []int64{10, 20, 30} {
		require.NoError(t, eng.CompletePoint(ctx, id, ""))
	}

	res, err := eng.Finish(ctx)
	require.NoError(t, err)
	require.True(t, res.Warning)
	require.Zero(t, res.Created)

	a, err := st.Assignment(ctx)
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestEngine_View_MergesCompletionState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))

	route := testRoute()
	gw := &stubGateway{
		getFn: func(context.Context, int64) (*domain.Route, error) { return route, nil },
	}
	eng := newTestEngine(st, gw, &stubMaterializer{})

	require.NoError(t, eng.CompletePoint(ctx, 20, "file:///f.jpg"))

	view, err := eng.View(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7), view.Route.ID)
	require.Len(t, view.Points, 3)

	// sorted by sequence: 10, 20, 30
	require.Equal(t, int64(10), view.Points[0].Point.ID)
	require.False(t, view.Points[0].Completed)
	require.Equal(t, int64(20), view.Points[1].Point.ID)
	require.True(t, view.Points[1].Completed)
	require.Equal(t, "file:///f.jpg", view.Points[1].PhotoRef)

	require.Equal(t, domain.RouteProgress{Completed: 1, Total: 3}, view.Progress)
}

func TestEngine_Abandon_DropsLocalState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Assign(ctx, 7, "Rota Centro"))
	require.NoError(t, st.CompletePoint(ctx, 10, ""))

	mat := &stubMaterializer{}
	eng := newTestEngine(st, &stubGateway{}, mat)

	require.NoError(t, eng.Abandon(ctx))
	require.Zero(t, mat.calls)

	a, err := st.Assignment(ctx)
	require.NoError(t, err)
	require.Nil(t, a)
}
