package model

import "time"

// RatingValid reports whether a rating falls inside the accepted range.
func RatingValid(rating int) bool { return rating >= 1 && rating <= 5 }

// Review mirrors a row in the `reviews` table. Reviews are append-only
// and gated on at least one prior transaction between the buyer and
// the seller; the count per pair is not limited.
type Review struct {
	ID         uint64    // reviews.id
	BuyerID    uint64    // reviews.buyer_id
	SellerID   uint64    // reviews.seller_id
	Rating     int       // reviews.rating (1..5)
	ReviewText *string   // reviews.review_text (nullable)
	CreatedAt  time.Time // reviews.created_at
}
