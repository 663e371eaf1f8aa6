package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ProductEvent describes a change to a product. Carrier holds the W3C trace context
// of the request that produced it.
type ProductEvent struct {
	subject string

	ProductID   uuid.UUID         `json:"product_id"`
	Name        string            `json:"name"`
	Price       float64           `json:"price"`
	IsAvailable bool              `json:"is_available"`
	OccurredAt  time.Time         `json:"occurred_at"`
	Carrier     map[string]string `json:"carrier,omitempty"`
}

func newProductEvent(ctx context.Context, subject string, id uuid.UUID, name string, price float64, available bool) ProductEvent {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return ProductEvent{
		subject:     subject,
		ProductID:   id,
		Name:        name,
		Price:       price,
		IsAvailable: available,
		OccurredAt:  time.Now().UTC(),
		Carrier:     carrier,
	}
}

func ProductCreated(ctx context.Context, id uuid.UUID, name string, price float64, available bool) ProductEvent {
	return newProductEvent(ctx, messaging.ProductsCreatedSubject, id, name, price, available)
}

func ProductUpdated(ctx context.Context, id uuid.UUID, name string, price float64, available bool) ProductEvent {
	return newProductEvent(ctx, messaging.ProductsUpdatedSubject, id, name, price, available)
}

func ProductRemoved(ctx context.Context, id uuid.UUID, name string, price float64, available bool) ProductEvent {
	return newProductEvent(ctx, messaging.ProductsRemovedSubject, id, name, price, available)
}

func (e ProductEvent) Subject() string {
	return e.subject
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
