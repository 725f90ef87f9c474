package model

import "time"

// BuyRequest mirrors a row in the `buy_requests` table. A request is a
// standing intent to purchase; it never consumes tickets itself and
// matches against listings are computed on read, never persisted.
type BuyRequest struct {
	ID            uint64    // buy_requests.id
	BuyerID       uint64    // buy_requests.buyer_id
	EventName     string    // buy_requests.event_name
	Category      Category  // buy_requests.category
	EventDate     time.Time // buy_requests.event_date (DATE)
	MaxPriceCents uint32    // buy_requests.max_price_cents
	Quantity      uint32    // buy_requests.quantity
	CreatedAt     time.Time // buy_requests.created_at
}
