package materialize

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pontual-runner/internal/domain"
	"pontual-runner/internal/logx"
)

// scheduledDateLayout matches the backend's expected scheduled_date format.
const scheduledDateLayout = "2006-01-02T15:04"

// Result reports how many delivery submissions succeeded and failed.
type Result struct {
	Created int
	Failed  int
}

// Materializer converts a finished route into one delivery record per stop.
// Submissions are independent and best-effort: individual failures are
// counted, never raised.
type Materializer struct {
	gateway deliveryCreator
	logger  logx.Logger
	workers int
	created counter
	failed  counter
	now     func() time.Time
}

// New creates a Materializer with the given fan-out width. Width 1 degrades
// to sequential submission.
func New(gateway deliveryCreator, logger logx.Logger, workers int, created, failed counter) *Materializer {
	if workers < 1 {
		workers = 1
	}
	return &Materializer{
		gateway: gateway,
		logger:  logger,
		workers: workers,
		created: created,
		failed:  failed,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Materialize submits one delivery per point and reports the split. It only
// errors when it cannot attempt any submission at all.
func (m *Materializer) Materialize(ctx context.Context, route *domain.Route, points []domain.RoutePoint) (Result, error) {
	if m.gateway == nil {
		return Result{}, fmt.Errorf("materialize: no deliveries gateway configured")
	}
	if len(points) == 0 {
		return Result{}, nil
	}

	scheduled := m.now().Format(scheduledDateLayout)
	results := make([]error, len(points))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < m.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = m.submit(ctx, route.ID, points[i], scheduled)
			}
		}()
	}
	for i := range points {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var res Result
	for i, err := range results {
		if err == nil {
			res.Created++
			continue
		}
		res.Failed++
		m.logger.Warn("delivery submission failed",
			logx.Int64("route_id", route.ID),
			logx.Int64("point_id", points[i].ID),
			logx.Any("err", err),
		)
	}

	m.logger.Info("route materialized",
		logx.Int64("route_id", route.ID),
		logx.Int("created", res.Created),
		logx.Int("failed", res.Failed),
	)
	return res, nil
}

func (m *Materializer) submit(ctx context.Context, routeID int64, point domain.RoutePoint, scheduled string) error {
	req := domain.DeliveryRequest{
		RouteID:       routeID,
		DriverID:      nil,
		ScheduledDate: scheduled,
		Notes:         fmt.Sprintf("Entrega para: %s - %s", point.DeliveryPoint.Name, point.DeliveryPoint.Address),
	}
	_, err := m.gateway.Create(ctx, req)
	if err != nil {
		if m.failed != nil {
			m.failed.Inc()
		}
		return err
	}
	if m.created != nil {
		m.created.Inc()
	}
	return nil
}
