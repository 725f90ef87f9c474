// Package queue defines message payloads exchanged over the message
// broker and the background consumer for the sales log.
package queue

// TicketSoldQueue and ListingMatchedQueue are the durable queue names
// used for marketplace events.
const (
	TicketSoldQueue     = "ticket.sold"
	ListingMatchedQueue = "listing.matched"
)

// TicketSoldEvent is published after a purchase commits. It carries
// enough information for downstream consumers to log or notify without
// querying the primary database.
type TicketSoldEvent struct {
	TransactionID uint64 `json:"transaction_id"`
	TicketID      uint64 `json:"ticket_id"`
	SellerID      uint64 `json:"seller_id"`
	BuyerID       uint64 `json:"buyer_id"`
	EventName     string `json:"event_name"`
	PriceCents    uint32 `json:"price_cents"`
	PaymentMethod string `json:"payment_method"`
	SoldAt        string `json:"sold_at"`
}

// ListingMatchedEvent is published when a freshly created listing
// satisfies one or more standing buy requests. Matches are computed at
// creation time but never persisted; the event is the only surface.
type ListingMatchedEvent struct {
	ListingID  uint64   `json:"listing_id"`
	SellerID   uint64   `json:"seller_id"`
	EventName  string   `json:"event_name"`
	EventDate  string   `json:"event_date"`
	PriceCents uint32   `json:"price_cents"`
	RequestIDs []uint64 `json:"request_ids"`
}
