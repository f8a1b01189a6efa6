// Package client implements the checkout composer for the crypto payment
// flow: it gathers form data, cart contents and proof-of-payment fields,
// gates submission on the required acknowledgments, and posts the order to
// the relay endpoint exactly once per confirmed user action.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"checkout-service/models"

	"github.com/google/uuid"
)

// State is the crypto payment sub-flow state.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateFilling
	StateSubmitting
	StateSucceeded
	StateFailed
)

// Validation errors block submission before any network call is made.
var (
	ErrDisclaimerNotAccepted = errors.New("please accept the research disclaimer to continue")
	ErrIncompletePayment     = errors.New("please select a cryptocurrency and provide a transaction ID")
	ErrUnknownCurrency       = errors.New("unsupported cryptocurrency")
	ErrSubmissionInFlight    = errors.New("an order submission is already in progress")

	// ErrSubmissionFailed is user-visible and retryable; the cart is left
	// untouched so nothing is lost.
	ErrSubmissionFailed = errors.New("failed to submit order, please try again or contact support")
)

// Cart is the composer's read/clear view of the storefront cart.
type Cart interface {
	Items() []models.CartItem
	Total() float64
	Clear()
}

// Checkout drives one checkout session. It is safe for concurrent use;
// Submit is single-flight.
type Checkout struct {
	relayURL   string
	httpClient *http.Client
	cart       Cart
	onSuccess  func(orderID string)

	mu                 sync.Mutex
	state              State
	customer           models.CustomerInfo
	selected           *models.CryptoWallet
	transactionID      string
	disclaimerAccepted bool
	referralID         string
	idempotencyKey     string
}

// NewCheckout creates a checkout session. onSuccess is invoked after the
// relay accepts the order and the cart is cleared (typically navigation to
// the confirmation view). httpClient may be nil.
func NewCheckout(relayURL string, cart Cart, httpClient *http.Client, onSuccess func(orderID string)) *Checkout {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if onSuccess == nil {
		onSuccess = func(string) {}
	}
	return &Checkout{
		relayURL:   relayURL,
		httpClient: httpClient,
		cart:       cart,
		onSuccess:  onSuccess,
		state:      StateIdle,
		customer:   models.CustomerInfo{Country: "US"},
		// One key per session: a retried submission after a lost response
		// dedupes server-side instead of producing a second order.
		idempotencyKey: uuid.NewString(),
	}
}

// State returns the current sub-flow state.
func (c *Checkout) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetCustomerInfo replaces the checkout form data.
func (c *Checkout) SetCustomerInfo(info models.CustomerInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if info.Country == "" {
		info.Country = "US"
	}
	c.customer = info
}

// SetReferralID records the session referral. The first non-empty value wins
// and is frozen; the value is opaque and passed through unvalidated.
func (c *Checkout) SetReferralID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.referralID == "" && id != "" {
		c.referralID = id
	}
}

// SelectCurrency chooses the payment currency and looks up its wallet. An
// unknown symbol leaves the flow unable to proceed.
func (c *Checkout) SelectCurrency(symbol string) error {
	wallet, ok := models.WalletFor(symbol)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCurrency, symbol)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &wallet
	if c.state == StateIdle {
		c.state = StateSelecting
	}
	return nil
}

// SelectedWallet returns the wallet for the chosen currency, if any.
func (c *Checkout) SelectedWallet() (models.CryptoWallet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return models.CryptoWallet{}, false
	}
	return *c.selected, true
}

// SetTransactionID records the user-supplied transaction hash.
func (c *Checkout) SetTransactionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactionID = id
	if c.state == StateSelecting && strings.TrimSpace(id) != "" {
		c.state = StateFilling
	}
}

// SetDisclaimerAccepted records the mandatory purchase acknowledgment.
func (c *Checkout) SetDisclaimerAccepted(accepted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disclaimerAccepted = accepted
}

// Submit validates the session and posts the order to the relay. All three
// gates must hold or no request is sent. On acceptance the cart is cleared
// and onSuccess runs; on failure the cart is untouched and the user may
// submit again.
func (c *Checkout) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return "", ErrSubmissionInFlight
	}

	if !c.disclaimerAccepted {
		c.mu.Unlock()
		return "", ErrDisclaimerNotAccepted
	}
	if c.selected == nil || strings.TrimSpace(c.transactionID) == "" {
		c.mu.Unlock()
		return "", ErrIncompletePayment
	}

	sub := &models.OrderSubmission{
		Items:          c.cart.Items(),
		CustomerInfo:   c.customer,
		Total:          c.cart.Total(),
		PaymentMethod:  "crypto",
		Cryptocurrency: c.selected.Symbol,
		TransactionID:  strings.TrimSpace(c.transactionID),
		WalletAddress:  c.selected.Address,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ReferralID:     c.referralID,
		IdempotencyKey: c.idempotencyKey,
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	orderID, err := c.post(ctx, sub)

	c.mu.Lock()
	if err != nil {
		c.state = StateFailed
		c.mu.Unlock()
		return "", err
	}
	c.state = StateSucceeded
	c.mu.Unlock()

	c.cart.Clear()
	c.onSuccess(orderID)
	return orderID, nil
}

func (c *Checkout) post(ctx context.Context, sub *models.OrderSubmission) (string, error) {
	body, err := json.Marshal(models.SubmitOrderRequest{OrderData: sub})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: relay returned %d", ErrSubmissionFailed, resp.StatusCode)
	}

	var accepted models.SubmitOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	if !accepted.Success {
		return "", ErrSubmissionFailed
	}
	return accepted.OrderID, nil
}
