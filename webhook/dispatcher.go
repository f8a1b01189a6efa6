package webhook

import (
	"context"
	"sync"
	"time"

	"checkout-service/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var deliveriesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checkout_webhook_deliveries_total",
	Help: "Webhook delivery attempts by outcome.",
}, []string{"outcome"})

// Dispatcher decouples order acceptance from webhook delivery. Accepted
// orders are queued and a single worker drains the queue, so a slow or down
// webhook target never blocks the request handler. Delivery stays
// best-effort: failures are logged and counted, never propagated.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger

	queue chan *models.NormalizedOrder
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts the delivery worker. queueSize bounds how many
// undelivered orders can be buffered; beyond that new orders are dropped
// with a log line rather than blocking checkout.
func NewDispatcher(notifier Notifier, timeout time.Duration, queueSize int, logger *zap.Logger) *Dispatcher {
	if queueSize < 1 {
		queueSize = 64
	}
	d := &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
		queue:    make(chan *models.NormalizedOrder, queueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue hands an order to the delivery worker. It never blocks; if the
// queue is full the order is dropped and counted.
func (d *Dispatcher) Enqueue(order *models.NormalizedOrder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn("Dispatcher closed, dropping order notification",
			zap.String("order_id", order.OrderID))
		deliveriesMetric.WithLabelValues("dropped").Inc()
		return
	}

	select {
	case d.queue <- order:
	default:
		d.logger.Error("Webhook queue full, dropping order notification",
			zap.String("order_id", order.OrderID))
		deliveriesMetric.WithLabelValues("dropped").Inc()
	}
}

// Close stops accepting new orders and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for order := range d.queue {
		d.deliver(order)
	}
}

func (d *Dispatcher) deliver(order *models.NormalizedOrder) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, order); err != nil {
		d.logger.Error("Webhook delivery failed",
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
		deliveriesMetric.WithLabelValues("failure").Inc()
		return
	}

	d.logger.Info("Order sent to webhook",
		zap.String("order_id", order.OrderID))
	deliveriesMetric.WithLabelValues("success").Inc()
}
