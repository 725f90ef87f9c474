package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// ReviewRepo provides persistence for the reviews table. Reviews are
// append-only; the purchase-history gate lives in the handler on top
// of TransactionRepo.ExistsBetween.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewCols = "id,buyer_id,seller_id,rating,review_text,created_at"

// Create inserts a review and populates its ID and timestamp.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (buyer_id, seller_id, rating, review_text) VALUES (?,?,?,?)",
		rev.BuyerID, rev.SellerID, rev.Rating, rev.ReviewText)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM reviews WHERE id=?", rev.ID).Scan(&rev.CreatedAt)
}

// List returns reviews ordered by id with skip/limit pagination.
func (r *ReviewRepo) List(ctx context.Context, skip, limit int) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reviewCols+" FROM reviews ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	return collectReviews(rows)
}

// ListBySeller returns all reviews received by a seller.
func (r *ReviewRepo) ListBySeller(ctx context.Context, sellerID uint64, skip, limit int) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE seller_id=? ORDER BY id LIMIT ? OFFSET ?",
		sellerID, limit, skip)
	if err != nil {
		return nil, err
	}
	return collectReviews(rows)
}

func collectReviews(rows *sql.Rows) ([]model.Review, error) {
	defer rows.Close()
	reviews := make([]model.Review, 0)
	for rows.Next() {
		var rev model.Review
		var text sql.NullString
		if err := rows.Scan(&rev.ID, &rev.BuyerID, &rev.SellerID, &rev.Rating, &text, &rev.CreatedAt); err != nil {
			return nil, err
		}
		if text.Valid {
			t := text.String
			rev.ReviewText = &t
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
