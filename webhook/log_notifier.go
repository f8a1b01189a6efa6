package webhook

import (
	"context"
	"encoding/json"

	"checkout-service/models"

	"go.uber.org/zap"
)

// LogNotifier writes the full normalized order to the log instead of
// delivering it anywhere. It is the fallback when no webhook URL is
// configured, so orders placed against a local instance are not lost
// silently.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, order *models.NormalizedOrder) error {
	body, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return err
	}
	n.logger.Warn("No webhook URL configured, logging order instead",
		zap.String("order_id", order.OrderID),
		zap.String("order", string(body)),
	)
	return nil
}
