package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"pontual-runner/internal/config"
	"pontual-runner/internal/gateway/backend"
	"pontual-runner/internal/gateway/deliveries"
	"pontual-runner/internal/gateway/routes"
	"pontual-runner/internal/http/handlers"
	"pontual-runner/internal/http/router"
	"pontual-runner/internal/logx"
	"pontual-runner/internal/metrics"
	"pontual-runner/internal/service/execution"
	"pontual-runner/internal/service/materialize"
	"pontual-runner/internal/store"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	storeOpen func(context.Context, string, int, time.Duration) (*store.SQLite, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		storeOpen: openStoreWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithStoreOpen sets the local store open function
func (b *ContainerBuilder) WithStoreOpen(
	fn func(context.Context, string, int, time.Duration) (*store.SQLite, error),
) *ContainerBuilder {
	if fn != nil {
		b.storeOpen = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStore(container, b.storeOpen); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := registerGateways(container); err != nil {
		return nil, fmt.Errorf("gateways: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

type metricsOut struct {
	dig.Out

	RateLimit prometheus.Counter `name:"rate_limit_exceeded_total"`
	Retries   prometheus.Counter `name:"gateway_retries_total"`
	Created   prometheus.Counter `name:"deliveries_created_total"`
	Failed    prometheus.Counter `name:"deliveries_failed_total"`
}

func newMetrics() metricsOut {
	out := metricsOut{
		RateLimit: metrics.NewRateLimitExceededTotal(),
		Retries:   metrics.NewGatewayRetriesTotal(),
		Created:   metrics.NewDeliveriesCreatedTotal(),
		Failed:    metrics.NewDeliveriesFailedTotal(),
	}
	prometheus.MustRegister(out.RateLimit, out.Retries, out.Created, out.Failed)
	return out
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
		newMetrics,
	)
}

func registerStore(
	container *dig.Container,
	storeOpen func(context.Context, string, int, time.Duration) (*store.SQLite, error),
) error {
	return provideAll(container,
		func(ctx context.Context, cfg *config.Config) (*store.SQLite, error) {
			return storeOpen(ctx, cfg.Store.Path, 5, time.Second)
		},
		func(s *store.SQLite) store.Store { return s },
	)
}

type retryingIn struct {
	dig.In

	Gateway *routes.Gateway
	Logger  logx.Logger
	Counter prometheus.Counter `name:"gateway_retries_total"`
	Config  *config.Config
}

func registerGateways(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) *backend.Client {
			return backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)
		},
		routes.NewGateway,
		func(in retryingIn) *routes.Retrying {
			return routes.NewRetrying(in.Gateway, in.Logger, in.Counter, routes.RetryConfig{
				MaxAttempts: in.Config.Retry.MaxAttempts,
				BaseDelay:   in.Config.Retry.BaseDelay,
				MaxDelay:    in.Config.Retry.MaxDelay,
			})
		},
		deliveries.NewGateway,
	)
}

type materializerIn struct {
	dig.In

	Gateway *deliveries.Gateway
	Logger  logx.Logger
	Config  *config.Config
	Created prometheus.Counter `name:"deliveries_created_total"`
	Failed  prometheus.Counter `name:"deliveries_failed_total"`
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		func(in materializerIn) *materialize.Materializer {
			return materialize.New(in.Gateway, in.Logger, in.Config.Materialize.Workers, in.Created, in.Failed)
		},
		func() time.Duration { return 15 * time.Second },
		func(
			st store.Store,
			gw *routes.Retrying,
			mat *materialize.Materializer,
			timeout time.Duration,
			logger logx.Logger,
		) *execution.Engine {
			return execution.NewEngine(st, gw, mat, timeout, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		handlers.NewExecutionUsecase,
		handlers.NewMyRouteHandler,
		handlers.NewDispatchGateway,
		handlers.NewProgressReader,
		handlers.NewDispatchHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		router.New,
		serverProvider,
	)
}
