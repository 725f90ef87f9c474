package model

import "time"

// SellListing mirrors a row in the `sell_listings` table. Creating a
// listing also materializes Quantity independent ticket rows carrying
// the same event attributes; the tickets keep no back-reference to the
// listing, so downstream queries only ever touch `tickets`.
type SellListing struct {
	ID          uint64    // sell_listings.id
	SellerID    uint64    // sell_listings.seller_id
	EventName   string    // sell_listings.event_name
	Category    Category  // sell_listings.category
	EventDate   time.Time // sell_listings.event_date (DATE)
	PriceCents  uint32    // sell_listings.price_cents
	Quantity    uint32    // sell_listings.quantity
	IsAvailable bool      // sell_listings.is_available
	CreatedAt   time.Time // sell_listings.created_at
}
