package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"checkout-service/models"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
)

// Client posts normalized orders to a single catch-style webhook URL
// (Zapier, Make, n8n). No auth header is sent; the URL itself is the secret.
type Client struct {
	url        string
	httpClient *http.Client
	attempts   uint
	logger     *zap.Logger
}

// NewClient creates a webhook client. timeout bounds each delivery attempt so
// a hanging target cannot stall the dispatcher; attempts below 1 means a
// single try.
func NewClient(url string, timeout time.Duration, attempts int, logger *zap.Logger) *Client {
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		attempts: uint(attempts),
		logger:   logger,
	}
}

// Notify delivers the order, retrying transient failures with backoff.
func (c *Client) Notify(ctx context.Context, order *models.NormalizedOrder) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	err = retry.Do(
		func() error {
			return c.post(ctx, body)
		},
		retry.Attempts(c.attempts),
		retry.Delay(500*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("Webhook delivery retry",
				zap.String("order_id", order.OrderID),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("webhook delivery failed for order %s: %w", order.OrderID, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a little of the body for the log line; the rest is noise.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
