package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// ListingRepo provides persistence for the sell_listings table and the
// listing side of the matching engine.
type ListingRepo struct {
	db *sql.DB
}

func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *ListingRepo) DB() *sql.DB { return r.db }

const listingCols = "id,seller_id,event_name,category,event_date,price_cents,quantity,is_available,created_at"

// CreateTx inserts a listing row within an existing transaction and
// populates the generated ID and creation timestamp. The caller pairs
// this with TicketRepo.CreateBulkTx so listing and tickets commit as
// one unit.
func (r *ListingRepo) CreateTx(ctx context.Context, tx *sql.Tx, l *model.SellListing) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO sell_listings (seller_id, event_name, category, event_date, price_cents, quantity, is_available) VALUES (?,?,?,?,?,?,1)",
		l.SellerID, l.EventName, string(l.Category), l.EventDate.Format("2006-01-02"), l.PriceCents, l.Quantity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	l.IsAvailable = true
	// read back the DB-assigned creation timestamp
	return tx.QueryRowContext(ctx,
		"SELECT created_at FROM sell_listings WHERE id=?", l.ID).Scan(&l.CreatedAt)
}

// GetByID fetches one listing; sql.ErrNoRows when absent.
func (r *ListingRepo) GetByID(ctx context.Context, id uint64) (model.SellListing, error) {
	return scanListing(r.db.QueryRowContext(ctx,
		"SELECT "+listingCols+" FROM sell_listings WHERE id=? LIMIT 1", id))
}

// List returns listings ordered by id with skip/limit pagination.
func (r *ListingRepo) List(ctx context.Context, skip, limit int) ([]model.SellListing, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+listingCols+" FROM sell_listings ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// FindForRequest returns every listing satisfying a buy request: same
// event name, same event date, price at or below the request's cap.
// Category is intentionally not part of the predicate.
func (r *ListingRepo) FindForRequest(ctx context.Context, req model.BuyRequest) ([]model.SellListing, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+listingCols+" FROM sell_listings WHERE event_name=? AND price_cents<=? AND event_date=? ORDER BY id",
		req.EventName, req.MaxPriceCents, req.EventDate.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

func scanListing(row *sql.Row) (model.SellListing, error) {
	var l model.SellListing
	var category string
	err := row.Scan(&l.ID, &l.SellerID, &l.EventName, &category, &l.EventDate,
		&l.PriceCents, &l.Quantity, &l.IsAvailable, &l.CreatedAt)
	if err != nil {
		return model.SellListing{}, err
	}
	l.Category = model.Category(category)
	return l, nil
}

func collectListings(rows *sql.Rows) ([]model.SellListing, error) {
	defer rows.Close()
	listings := make([]model.SellListing, 0)
	for rows.Next() {
		var l model.SellListing
		var category string
		if err := rows.Scan(&l.ID, &l.SellerID, &l.EventName, &category, &l.EventDate,
			&l.PriceCents, &l.Quantity, &l.IsAvailable, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Category = model.Category(category)
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
