package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"checkout-service/database"
	"checkout-service/kafka"
	"checkout-service/models"
	"checkout-service/sns"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	orderSource         = "website"
	paymentMethodCrypto = "cryptocurrency"
	statusPendingVerify = "pending_verification"

	// Confirmation shown to the shopper; manual payment verification happens
	// downstream.
	confirmationMessage = "Order submitted successfully. We'll verify your payment and process your order shortly."
)

var ordersAcceptedMetric = promauto.NewCounter(prometheus.CounterOpts{
	Name: "checkout_orders_accepted_total",
	Help: "Orders accepted by the relay.",
})

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

// Enqueuer hands an accepted order to the webhook delivery worker.
type Enqueuer interface {
	Enqueue(order *models.NormalizedOrder)
}

// EventProducer publishes order.accepted events (Kafka).
type EventProducer interface {
	SendOrderAccepted(ctx context.Context, event kafka.OrderAcceptedEvent) error
}

// OrderService accepts crypto order submissions: it normalizes the payload,
// mints an order id, and fans the order out to the configured channels. Only
// normalization can fail the request; every outbound channel is best-effort.
type OrderService struct {
	dispatcher  Enqueuer
	idemStore   database.IdempotencyStore
	producer    EventProducer
	snsClient   sns.Publisher
	snsTopicArn string
	logger      *zap.Logger
}

// NewOrderService wires the relay. idemStore, producer and snsClient may be
// nil; the corresponding channel is then skipped.
func NewOrderService(
	dispatcher Enqueuer,
	idemStore database.IdempotencyStore,
	producer EventProducer,
	snsClient sns.Publisher,
	snsTopicArn string,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		dispatcher:  dispatcher,
		idemStore:   idemStore,
		producer:    producer,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

// SubmitOrder processes one order submission. The returned response is
// independent of webhook delivery outcome.
func (s *OrderService) SubmitOrder(ctx context.Context, sub *models.OrderSubmission) (*models.SubmitOrderResponse, *ServiceError) {
	// Resubmissions of the same checkout session get the original order back
	// instead of a duplicate downstream delivery. Store errors degrade to the
	// no-dedupe behavior rather than failing checkout.
	if s.idemStore != nil && sub.IdempotencyKey != "" {
		existing, err := s.idemStore.Get(ctx, sub.IdempotencyKey)
		if err != nil {
			s.logger.Warn("Idempotency lookup failed", zap.Error(err))
		} else if existing != "" {
			s.logger.Info("Duplicate submission, returning original order",
				zap.String("order_id", existing),
				zap.String("idempotency_key", sub.IdempotencyKey),
			)
			return &models.SubmitOrderResponse{
				Success: true,
				OrderID: existing,
				Message: confirmationMessage,
			}, nil
		}
	}

	orderID := NewOrderID()

	order, err := Normalize(orderID, sub, time.Now().UTC())
	if err != nil {
		s.logger.Error("Order normalization failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to process order"}
	}

	if s.idemStore != nil && sub.IdempotencyKey != "" {
		if err := s.idemStore.Set(ctx, sub.IdempotencyKey, orderID, 0); err != nil {
			s.logger.Warn("Idempotency store failed", zap.Error(err))
		}
	}

	s.dispatcher.Enqueue(order)
	s.publishEvents(ctx, order)

	s.logger.Info("Crypto order received",
		zap.String("order_id", orderID),
		zap.String("customer_email", sub.CustomerInfo.Email),
		zap.Float64("total", sub.Total),
		zap.String("cryptocurrency", sub.Cryptocurrency),
		zap.String("transaction_id", sub.TransactionID),
		zap.String("timestamp", sub.Timestamp),
	)
	ordersAcceptedMetric.Inc()

	return &models.SubmitOrderResponse{
		Success: true,
		OrderID: orderID,
		Message: confirmationMessage,
	}, nil
}

// publishEvents announces the accepted order on Kafka and SNS. Both channels
// are best-effort; failures are logged and swallowed.
func (s *OrderService) publishEvents(ctx context.Context, order *models.NormalizedOrder) {
	event := kafka.NewOrderAcceptedEvent(order)

	if s.producer != nil {
		if err := s.producer.SendOrderAccepted(ctx, event); err != nil {
			s.logger.Warn("Kafka publish failed",
				zap.String("order_id", order.OrderID), zap.Error(err))
		}
	}

	if s.snsClient != nil && s.snsTopicArn != "" {
		eventBytes, err := json.Marshal(event)
		if err == nil {
			err = s.snsClient.Publish(ctx, s.snsTopicArn, eventBytes)
		}
		if err != nil {
			s.logger.Warn("SNS publish failed",
				zap.String("order_id", order.OrderID), zap.Error(err))
		}
	}
}

// Normalize reshapes a submission into the fixed webhook schema. Item
// subtotals are recomputed here; the client's numbers are not trusted.
// Shipping and tax are always zero.
func Normalize(orderID string, sub *models.OrderSubmission, now time.Time) (*models.NormalizedOrder, error) {
	submittedAt, err := time.Parse(time.RFC3339, sub.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid submission timestamp %q: %w", sub.Timestamp, err)
	}

	items := make([]models.NormalizedItem, 0, len(sub.Items))
	for _, item := range sub.Items {
		purchaseType := item.PurchaseType
		if purchaseType == "" {
			purchaseType = "oneTime"
		}
		items = append(items, models.NormalizedItem{
			ProductID:    item.ID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			Price:        item.Price,
			Subtotal:     item.Price * float64(item.Quantity),
			PurchaseType: purchaseType,
		})
	}

	var referralID *string
	if sub.ReferralID != "" {
		referralID = &sub.ReferralID
	}

	return &models.NormalizedOrder{
		OrderID:       orderID,
		OrderSource:   orderSource,
		PaymentMethod: paymentMethodCrypto,
		CustomerInfo: models.NormalizedCustomer{
			FirstName: sub.CustomerInfo.FirstName,
			LastName:  sub.CustomerInfo.LastName,
			Email:     sub.CustomerInfo.Email,
			Phone:     sub.CustomerInfo.Phone,
		},
		ShippingAddress: models.ShippingAddress{
			Line1:      sub.CustomerInfo.Address,
			Line2:      sub.CustomerInfo.Address2,
			City:       sub.CustomerInfo.City,
			State:      sub.CustomerInfo.State,
			PostalCode: sub.CustomerInfo.ZipCode,
			Country:    sub.CustomerInfo.Country,
		},
		Items: items,
		Totals: models.OrderTotals{
			Subtotal: sub.Total,
			Shipping: 0,
			Tax:      0,
			Total:    sub.Total,
		},
		CryptoPaymentDetails: &models.CryptoPaymentDetails{
			Cryptocurrency: sub.Cryptocurrency,
			TransactionID:  sub.TransactionID,
			WalletAddress:  sub.WalletAddress,
			Status:         statusPendingVerify,
			ReferralID:     referralID,
		},
		StripePaymentDetails: nil,
		SpecialInstructions:  sub.CustomerInfo.SpecialInstructions,
		Timestamp:            submittedAt.UTC().Format(time.RFC3339),
		CreatedAt:            now.Format(time.RFC3339),
	}, nil
}

const orderIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderID mints an order identifier of the form
// CRYPTO-<epoch-millis>-<9 uppercase chars>. Uniqueness is probabilistic;
// there is no central sequence.
func NewOrderID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = orderIDAlphabet[rand.Intn(len(orderIDAlphabet))]
	}
	return fmt.Sprintf("CRYPTO-%d-%s", time.Now().UnixMilli(), string(suffix))
}
