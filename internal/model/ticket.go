package model

import "time"

// Category is the closed set of event categories shared by tickets,
// listings and buy requests.
type Category string

const (
	CategoryConcert Category = "Concert"
	CategorySports  Category = "Sports"
	CategoryTheater Category = "Theater"
	CategoryOther   Category = "Other"
)

// ParseCategory validates a raw category value against the closed enumeration.
func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryConcert, CategorySports, CategoryTheater, CategoryOther:
		return Category(raw), true
	}
	return "", false
}

// Ticket mirrors a row in the `tickets` table. A ticket belongs to a
// seller and is mutated exactly once: the sale sets BuyerID and IsSold
// together, after which the row is frozen.
//
// Fields:
//  ID         – primary key identifier.
//  EventName  – name of the event.
//  Category   – event category.
//  EventDate  – calendar date of the event (time portion zero).
//  PriceCents – asking price in cents.
//  SellerID   – owner of the ticket.
//  BuyerID    – purchaser, nil until sold.
//  IsSold     – sale flag; true implies BuyerID is set.
type Ticket struct {
	ID         uint64    // tickets.id
	EventName  string    // tickets.event_name
	Category   Category  // tickets.category
	EventDate  time.Time // tickets.event_date (DATE)
	PriceCents uint32    // tickets.price_cents
	SellerID   uint64    // tickets.seller_id
	BuyerID    *uint64   // tickets.buyer_id (nullable)
	IsSold     bool      // tickets.is_sold
}
