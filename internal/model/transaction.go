package model

import "time"

// PaymentMethod is the closed set of accepted payment labels. No
// gateway integration exists; the label is stored as-is.
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "Credit Card"
	PaymentPayPal       PaymentMethod = "PayPal"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
)

// ParsePaymentMethod validates a raw payment method against the closed
// enumeration. An empty value falls back to Credit Card.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	if raw == "" {
		return PaymentCreditCard, true
	}
	switch PaymentMethod(raw) {
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer:
		return PaymentMethod(raw), true
	}
	return "", false
}

// Transaction mirrors a row in the `transactions` table. Exactly one
// transaction is created per successful purchase, inside the same
// database transaction that marks the ticket sold; rows are immutable
// afterward.
type Transaction struct {
	ID            uint64        // transactions.id
	TicketID      uint64        // transactions.ticket_id
	SellerID      uint64        // transactions.seller_id
	BuyerID       uint64        // transactions.buyer_id
	PaymentMethod PaymentMethod // transactions.payment_method
	PriceCents    uint32        // transactions.price_cents
	CreatedAt     time.Time     // transactions.created_at
}
