package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"checkout-service/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testOrder() *models.NormalizedOrder {
	return &models.NormalizedOrder{
		OrderID:       "CRYPTO-1756720000000-ABCDEF123",
		OrderSource:   "website",
		PaymentMethod: "cryptocurrency",
		CryptoPaymentDetails: &models.CryptoPaymentDetails{
			Cryptocurrency: "BTC",
			TransactionID:  "txid",
			WalletAddress:  "bc1q4utg2zy0523ud4e6x7w0fr9d90zcc9xdkhzjpx",
			Status:         "pending_verification",
		},
		Timestamp: "2026-03-01T10:30:00Z",
		CreatedAt: "2026-03-01T10:30:05Z",
	}
}

func TestClient_Notify_PostsNormalizedOrder(t *testing.T) {
	var got models.NormalizedOrder
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 1, zap.NewNop())
	err := c.Notify(context.Background(), testOrder())

	assert.NoError(t, err)
	assert.Equal(t, "CRYPTO-1756720000000-ABCDEF123", got.OrderID)
	assert.Equal(t, "pending_verification", got.CryptoPaymentDetails.Status)
}

func TestClient_Notify_RetriesThenFails(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "catch hook gone", http.StatusGone)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 2, zap.NewNop())
	err := c.Notify(context.Background(), testOrder())

	assert.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClient_Notify_RecoversOnRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 3, zap.NewNop())
	err := c.Notify(context.Background(), testOrder())

	assert.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

// ---- dispatcher ----

type recordingNotifier struct {
	orders chan *models.NormalizedOrder
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, order *models.NormalizedOrder) error {
	n.orders <- order
	return n.err
}

func TestDispatcher_DeliversQueuedOrders(t *testing.T) {
	notifier := &recordingNotifier{orders: make(chan *models.NormalizedOrder, 4)}
	d := NewDispatcher(notifier, time.Second, 4, zap.NewNop())

	d.Enqueue(testOrder())
	d.Enqueue(testOrder())
	d.Close()

	assert.Len(t, notifier.orders, 2)
}

func TestDispatcher_DeliveryFailureDoesNotStopWorker(t *testing.T) {
	notifier := &recordingNotifier{
		orders: make(chan *models.NormalizedOrder, 4),
		err:    errors.New("target down"),
	}
	d := NewDispatcher(notifier, time.Second, 4, zap.NewNop())

	d.Enqueue(testOrder())
	d.Enqueue(testOrder())
	d.Close()

	assert.Len(t, notifier.orders, 2)
}

func TestDispatcher_EnqueueAfterCloseIsDropped(t *testing.T) {
	notifier := &recordingNotifier{orders: make(chan *models.NormalizedOrder, 4)}
	d := NewDispatcher(notifier, time.Second, 4, zap.NewNop())
	d.Close()

	// Must not panic on the closed queue.
	d.Enqueue(testOrder())
	assert.Len(t, notifier.orders, 0)
}

func TestLogNotifier_NeverFails(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())
	assert.NoError(t, n.Notify(context.Background(), testOrder()))
}
