package models

// CartItem is a single line in the shopper's cart. The cart is owned by the
// storefront; this service only reads it.
type CartItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	PurchaseType string  `json:"purchaseType"`
	Image        string  `json:"image,omitempty"`
}

// CustomerInfo holds the checkout form fields for one session.
type CustomerInfo struct {
	Email               string `json:"email"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Phone               string `json:"phone,omitempty"`
	Address             string `json:"address"`
	Address2            string `json:"address2,omitempty"`
	City                string `json:"city"`
	State               string `json:"state"`
	ZipCode             string `json:"zipCode"`
	Country             string `json:"country"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// OrderSubmission is the payload the composer posts to the relay. The wallet
// address is looked up client-side from the static wallet list, never typed
// by the user.
type OrderSubmission struct {
	Items          []CartItem   `json:"items"`
	CustomerInfo   CustomerInfo `json:"customerInfo"`
	Total          float64      `json:"total"`
	PaymentMethod  string       `json:"paymentMethod"`
	Cryptocurrency string       `json:"cryptocurrency"`
	TransactionID  string       `json:"transactionId"`
	WalletAddress  string       `json:"walletAddress"`
	Timestamp      string       `json:"timestamp"`
	ReferralID     string       `json:"referralId,omitempty"`
	IdempotencyKey string       `json:"idempotencyKey,omitempty"`
}

// SubmitOrderRequest wraps the submission the way the storefront sends it.
type SubmitOrderRequest struct {
	OrderData *OrderSubmission `json:"orderData"`
}

// SubmitOrderResponse is returned to the storefront on acceptance.
type SubmitOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}
