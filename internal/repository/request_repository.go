package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// BuyRequestRepo provides persistence for the buy_requests table and
// the request side of the matching engine.
type BuyRequestRepo struct {
	db *sql.DB
}

func NewBuyRequestRepo(db *sql.DB) *BuyRequestRepo { return &BuyRequestRepo{db: db} }

const requestCols = "id,buyer_id,event_name,category,event_date,max_price_cents,quantity,created_at"

// Create inserts a buy request and populates its ID and creation
// timestamp.
func (r *BuyRequestRepo) Create(ctx context.Context, req *model.BuyRequest) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO buy_requests (buyer_id, event_name, category, event_date, max_price_cents, quantity) VALUES (?,?,?,?,?,?)",
		req.BuyerID, req.EventName, string(req.Category), req.EventDate.Format("2006-01-02"), req.MaxPriceCents, req.Quantity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM buy_requests WHERE id=?", req.ID).Scan(&req.CreatedAt)
}

// GetByID fetches one buy request; sql.ErrNoRows when absent.
func (r *BuyRequestRepo) GetByID(ctx context.Context, id uint64) (model.BuyRequest, error) {
	return scanRequest(r.db.QueryRowContext(ctx,
		"SELECT "+requestCols+" FROM buy_requests WHERE id=? LIMIT 1", id))
}

// GetByIDForBuyer fetches a buy request scoped to its owner. Ownership
// is folded into the lookup, so a request owned by someone else is
// indistinguishable from an absent one (sql.ErrNoRows).
func (r *BuyRequestRepo) GetByIDForBuyer(ctx context.Context, id, buyerID uint64) (model.BuyRequest, error) {
	return scanRequest(r.db.QueryRowContext(ctx,
		"SELECT "+requestCols+" FROM buy_requests WHERE id=? AND buyer_id=? LIMIT 1", id, buyerID))
}

// List returns buy requests ordered by id with skip/limit pagination.
func (r *BuyRequestRepo) List(ctx context.Context, skip, limit int) ([]model.BuyRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+requestCols+" FROM buy_requests ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// FindForListing is the symmetric match: every buy request whose cap
// covers the listing price for the same event name and date. Computed
// at listing-creation time and surfaced as a broker event.
func (r *BuyRequestRepo) FindForListing(ctx context.Context, l model.SellListing) ([]model.BuyRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+requestCols+" FROM buy_requests WHERE event_name=? AND max_price_cents>=? AND event_date=? ORDER BY id",
		l.EventName, l.PriceCents, l.EventDate.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func scanRequest(row *sql.Row) (model.BuyRequest, error) {
	var req model.BuyRequest
	var category string
	err := row.Scan(&req.ID, &req.BuyerID, &req.EventName, &category, &req.EventDate,
		&req.MaxPriceCents, &req.Quantity, &req.CreatedAt)
	if err != nil {
		return model.BuyRequest{}, err
	}
	req.Category = model.Category(category)
	return req, nil
}

func collectRequests(rows *sql.Rows) ([]model.BuyRequest, error) {
	defer rows.Close()
	requests := make([]model.BuyRequest, 0)
	for rows.Next() {
		var req model.BuyRequest
		var category string
		if err := rows.Scan(&req.ID, &req.BuyerID, &req.EventName, &category, &req.EventDate,
			&req.MaxPriceCents, &req.Quantity, &req.CreatedAt); err != nil {
			return nil, err
		}
		req.Category = model.Category(category)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
