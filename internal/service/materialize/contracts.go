package materialize

import (
	"context"

	"pontual-runner/internal/domain"
)

type deliveryCreator interface {
	Create(ctx context.Context, req domain.DeliveryRequest) (*domain.Delivery, error)
}

type counter interface {
	Inc()
}
