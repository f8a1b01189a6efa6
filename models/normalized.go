package models

// NormalizedOrder is the fixed schema forwarded to the order webhook. Every
// order, whichever payment path produced it, is reshaped into this layout so
// downstream automations see one format.
type NormalizedOrder struct {
	OrderID              string                `json:"orderId"`
	OrderSource          string                `json:"orderSource"`
	PaymentMethod        string                `json:"paymentMethod"`
	CustomerInfo         NormalizedCustomer    `json:"customerInfo"`
	ShippingAddress      ShippingAddress       `json:"shippingAddress"`
	Items                []NormalizedItem      `json:"items"`
	Totals               OrderTotals           `json:"totals"`
	CryptoPaymentDetails *CryptoPaymentDetails `json:"cryptoPaymentDetails"`
	StripePaymentDetails *StripePaymentDetails `json:"stripePaymentDetails"`
	SpecialInstructions  string                `json:"specialInstructions"`
	Timestamp            string                `json:"timestamp"`
	CreatedAt            string                `json:"createdAt"`
}

type NormalizedCustomer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ShippingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type NormalizedItem struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Subtotal     float64 `json:"subtotal"`
	PurchaseType string  `json:"purchaseType"`
}

type OrderTotals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// CryptoPaymentDetails carries the proof-of-payment fields. Status is always
// "pending_verification" at submission; on-chain checks happen downstream.
type CryptoPaymentDetails struct {
	Cryptocurrency string  `json:"cryptocurrency"`
	TransactionID  string  `json:"transactionId"`
	WalletAddress  string  `json:"walletAddress"`
	Status         string  `json:"status"`
	ReferralID     *string `json:"referralId"`
}

// StripePaymentDetails is always nil on the crypto path; the field stays in
// the schema so webhook consumers can tell the two payment paths apart.
type StripePaymentDetails struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ChargeID        string `json:"chargeId"`
	Last4           string `json:"last4"`
}
