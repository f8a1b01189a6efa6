package webhook

import (
	"context"

	"checkout-service/models"
)

// Notifier delivers a normalized order to a downstream consumer. Delivery is
// best-effort: implementations report failure so the caller can log it, but
// a failed delivery never fails order acceptance.
type Notifier interface {
	Notify(ctx context.Context, order *models.NormalizedOrder) error
}
