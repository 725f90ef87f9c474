package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// TransactionRepo provides persistence for the transactions table.
// Rows are written exactly once, inside the purchase transaction, and
// never updated afterward.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// CreateTx inserts a transaction record within an existing database
// transaction and populates its ID and timestamp. The caller commits
// together with the ticket mutation so the sale is all-or-nothing.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO transactions (ticket_id, seller_id, buyer_id, payment_method, price_cents) VALUES (?,?,?,?,?)",
		t.TicketID, t.SellerID, t.BuyerID, string(t.PaymentMethod), t.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		"SELECT created_at FROM transactions WHERE id=?", t.ID).Scan(&t.CreatedAt)
}

// ExistsBetween reports whether at least one transaction links the
// given buyer and seller. It gates review creation.
func (r *TransactionRepo) ExistsBetween(ctx context.Context, buyerID, sellerID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM transactions WHERE buyer_id=? AND seller_id=? LIMIT 1",
		buyerID, sellerID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TransactionView joins a transaction with its ticket's event name for
// the public transactions listing.
type TransactionView struct {
	ID            uint64    `json:"transaction_id"`
	TicketID      uint64    `json:"ticket_id"`
	SellerID      uint64    `json:"seller_id"`
	BuyerID       uint64    `json:"buyer_id"`
	PriceCents    uint32    `json:"price_cents"`
	EventName     string    `json:"event_name"`
	TransactionAt time.Time `json:"transaction_date"`
}

// ListJoined returns transactions joined with ticket event names,
// newest first, with skip/limit pagination.
func (r *TransactionRepo) ListJoined(ctx context.Context, skip, limit int) ([]TransactionView, error) {
	const q = `SELECT tr.id, tr.ticket_id, tr.seller_id, tr.buyer_id, tr.price_cents, ti.event_name, tr.created_at
	           FROM transactions tr
	           JOIN tickets ti ON ti.id = tr.ticket_id
	           ORDER BY tr.created_at DESC, tr.id DESC
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]TransactionView, 0)
	for rows.Next() {
		var v TransactionView
		if err := rows.Scan(&v.ID, &v.TicketID, &v.SellerID, &v.BuyerID, &v.PriceCents, &v.EventName, &v.TransactionAt); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
