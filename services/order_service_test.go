package services

import (
	"context"
	"encoding/json"
	"reflect"
	"regexp"
	"testing"
	"time"

	"checkout-service/kafka"
	"checkout-service/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// ---- mocks ----

type mockEnqueuer struct {
	orders []*models.NormalizedOrder
}

func (m *mockEnqueuer) Enqueue(order *models.NormalizedOrder) {
	m.orders = append(m.orders, order)
}

type mockIdemStore struct {
	values map[string]string
	getErr error
	setErr error
}

func (m *mockIdemStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[key], nil
}

func (m *mockIdemStore) Set(_ context.Context, key, orderID string, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = orderID
	return nil
}

type mockProducer struct {
	events []kafka.OrderAcceptedEvent
	err    error
}

func (m *mockProducer) SendOrderAccepted(_ context.Context, event kafka.OrderAcceptedEvent) error {
	m.events = append(m.events, event)
	return m.err
}

type mockSNS struct {
	publishedArn string
	publishedMsg []byte
	err          error
}

func (m *mockSNS) Publish(_ context.Context, topicArn string, message []byte) error {
	m.publishedArn = topicArn
	m.publishedMsg = append([]byte(nil), message...)
	return m.err
}

// ---- helpers ----

func testSubmission() *models.OrderSubmission {
	return &models.OrderSubmission{
		Items: []models.CartItem{
			{ID: "pep-001", Name: "BPC-157 5mg", Price: 49.99, Quantity: 2, PurchaseType: "oneTime"},
			{ID: "pep-002", Name: "TB-500 10mg", Price: 89.50, Quantity: 1},
		},
		CustomerInfo: models.CustomerInfo{
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
			Address:   "123 Main St",
			City:      "Austin",
			State:     "TX",
			ZipCode:   "78701",
			Country:   "US",
		},
		Total:          189.48,
		PaymentMethod:  "crypto",
		Cryptocurrency: "ETH",
		TransactionID:  "0xdeadbeef",
		WalletAddress:  "0x1F5248EAF77C8a000D5d0347C623d75338a79bDd",
		Timestamp:      "2026-03-01T10:30:00Z",
	}
}

func newTestService(enq *mockEnqueuer) *OrderService {
	return NewOrderService(enq, nil, nil, nil, "", zap.NewNop())
}

// ---- tests ----

func TestSubmitOrder_NormalizesOrder(t *testing.T) {
	enq := &mockEnqueuer{}
	svc := newTestService(enq)

	resp, svcErr := svc.SubmitOrder(context.Background(), testSubmission())
	assert.Nil(t, svcErr)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Message)

	if !assert.Len(t, enq.orders, 1) {
		return
	}
	order := enq.orders[0]

	assert.Equal(t, resp.OrderID, order.OrderID)
	assert.Equal(t, "website", order.OrderSource)
	assert.Equal(t, "cryptocurrency", order.PaymentMethod)
	assert.Equal(t, "jane@example.com", order.CustomerInfo.Email)
	assert.Equal(t, "123 Main St", order.ShippingAddress.Line1)
	assert.Equal(t, "78701", order.ShippingAddress.PostalCode)

	// Subtotals are recomputed server-side, not taken from the client.
	assert.InDelta(t, 99.98, order.Items[0].Subtotal, 0.0001)
	assert.InDelta(t, 89.50, order.Items[1].Subtotal, 0.0001)
	assert.Equal(t, "oneTime", order.Items[1].PurchaseType)

	assert.Equal(t, order.Totals.Subtotal, order.Totals.Total)
	assert.Zero(t, order.Totals.Shipping)
	assert.Zero(t, order.Totals.Tax)

	assert.Equal(t, "pending_verification", order.CryptoPaymentDetails.Status)
	assert.Equal(t, "0xdeadbeef", order.CryptoPaymentDetails.TransactionID)
	assert.Nil(t, order.CryptoPaymentDetails.ReferralID)
	assert.Nil(t, order.StripePaymentDetails)
}

func TestSubmitOrder_ReferralPassedThrough(t *testing.T) {
	enq := &mockEnqueuer{}
	svc := newTestService(enq)

	sub := testSubmission()
	sub.ReferralID = "promo-xyz"

	_, svcErr := svc.SubmitOrder(context.Background(), sub)
	assert.Nil(t, svcErr)
	if assert.Len(t, enq.orders, 1) {
		if assert.NotNil(t, enq.orders[0].CryptoPaymentDetails.ReferralID) {
			assert.Equal(t, "promo-xyz", *enq.orders[0].CryptoPaymentDetails.ReferralID)
		}
	}
}

func TestSubmitOrder_InvalidTimestamp(t *testing.T) {
	enq := &mockEnqueuer{}
	svc := newTestService(enq)

	sub := testSubmission()
	sub.Timestamp = "not-a-time"

	resp, svcErr := svc.SubmitOrder(context.Background(), sub)
	assert.Nil(t, resp)
	if assert.NotNil(t, svcErr) {
		assert.Equal(t, 500, svcErr.StatusCode)
		assert.Equal(t, "Failed to process order", svcErr.Message)
	}
	assert.Empty(t, enq.orders)
}

func TestNormalize_DeterministicExceptIDAndCreatedAt(t *testing.T) {
	sub := testSubmission()

	first, err := Normalize("CRYPTO-1-AAAAAAAAA", sub, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	second, err := Normalize("CRYPTO-2-BBBBBBBBB", sub, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	assert.NoError(t, err)

	first.OrderID, second.OrderID = "", ""
	first.CreatedAt, second.CreatedAt = "", ""
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestNewOrderID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^CRYPTO-\d{13}-[0-9A-Z]{9}$`)
	for i := 0; i < 50; i++ {
		id := NewOrderID()
		assert.Regexp(t, pattern, id)
	}
}

func TestSubmitOrder_IdempotentResubmission(t *testing.T) {
	enq := &mockEnqueuer{}
	store := &mockIdemStore{}
	svc := NewOrderService(enq, store, nil, nil, "", zap.NewNop())

	sub := testSubmission()
	sub.IdempotencyKey = "session-abc"

	first, svcErr := svc.SubmitOrder(context.Background(), sub)
	assert.Nil(t, svcErr)

	second, svcErr := svc.SubmitOrder(context.Background(), sub)
	assert.Nil(t, svcErr)

	assert.Equal(t, first.OrderID, second.OrderID)
	// Only the first submission reaches the webhook queue.
	assert.Len(t, enq.orders, 1)
}

func TestSubmitOrder_IdemStoreErrorDegrades(t *testing.T) {
	enq := &mockEnqueuer{}
	store := &mockIdemStore{getErr: context.DeadlineExceeded}
	svc := NewOrderService(enq, store, nil, nil, "", zap.NewNop())

	sub := testSubmission()
	sub.IdempotencyKey = "session-abc"

	resp, svcErr := svc.SubmitOrder(context.Background(), sub)
	assert.Nil(t, svcErr)
	assert.True(t, resp.Success)
	assert.Len(t, enq.orders, 1)
}

func TestSubmitOrder_PublishesEvents(t *testing.T) {
	enq := &mockEnqueuer{}
	producer := &mockProducer{}
	snsMock := &mockSNS{}
	svc := NewOrderService(enq, nil, producer, snsMock, "arn:aws:sns:eu-west-2:000000000000:order-events", zap.NewNop())

	resp, svcErr := svc.SubmitOrder(context.Background(), testSubmission())
	assert.Nil(t, svcErr)

	if assert.Len(t, producer.events, 1) {
		assert.Equal(t, "order.accepted", producer.events[0].Event)
		assert.Equal(t, resp.OrderID, producer.events[0].OrderID)
		assert.Equal(t, "ETH", producer.events[0].Cryptocurrency)
	}

	assert.Equal(t, "arn:aws:sns:eu-west-2:000000000000:order-events", snsMock.publishedArn)
	var event map[string]interface{}
	assert.NoError(t, json.Unmarshal(snsMock.publishedMsg, &event))
	assert.Equal(t, resp.OrderID, event["order_id"])
}

func TestSubmitOrder_EventFailuresAreSwallowed(t *testing.T) {
	enq := &mockEnqueuer{}
	producer := &mockProducer{err: context.DeadlineExceeded}
	snsMock := &mockSNS{err: context.DeadlineExceeded}
	svc := NewOrderService(enq, nil, producer, snsMock, "arn:topic", zap.NewNop())

	resp, svcErr := svc.SubmitOrder(context.Background(), testSubmission())
	assert.Nil(t, svcErr)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.OrderID)
}
