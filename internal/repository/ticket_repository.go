package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// TicketRepo provides persistence for the tickets table. Tickets are
// created either standalone or fanned out from a sell listing; once
// sold they are never mutated again.
type TicketRepo struct {
	db *sql.DB
}

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *TicketRepo) DB() *sql.DB { return r.db }

const ticketCols = "id,event_name,category,event_date,price_cents,seller_id,buyer_id,is_sold"

// Create inserts a single unsold ticket and populates its ID.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tickets (event_name, category, event_date, price_cents, seller_id, is_sold) VALUES (?,?,?,?,?,0)",
		t.EventName, string(t.Category), t.EventDate.Format("2006-01-02"), t.PriceCents, t.SellerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID fetches one ticket; sql.ErrNoRows when absent.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	return scanTicket(r.db.QueryRowContext(ctx,
		"SELECT "+ticketCols+" FROM tickets WHERE id=? LIMIT 1", id))
}

// ListUnsold returns tickets still available for purchase with
// skip/limit pagination.
func (r *TicketRepo) ListUnsold(ctx context.Context, skip, limit int) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ticketCols+" FROM tickets WHERE is_sold=0 ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// ListByBuyer returns all tickets purchased by the given user.
func (r *TicketRepo) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ticketCols+" FROM tickets WHERE buyer_id=? ORDER BY id", buyerID)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// ClaimTx marks a ticket sold to the given buyer within an existing
// transaction. It reads the row, rejects already-sold tickets, then
// performs a guarded update keyed on is_sold=0. Under concurrent
// purchases only one UPDATE can observe is_sold=0; the loser sees zero
// rows affected and gets ErrTicketSold, leaving its view of the row
// untouched. Returns the ticket with buyer and sale flag applied.
func (r *TicketRepo) ClaimTx(ctx context.Context, tx *sql.Tx, ticketID, buyerID uint64) (model.Ticket, error) {
	t, err := scanTicket(tx.QueryRowContext(ctx,
		"SELECT "+ticketCols+" FROM tickets WHERE id=? LIMIT 1", ticketID))
	if err != nil {
		return model.Ticket{}, err
	}
	if t.IsSold {
		return model.Ticket{}, ErrTicketSold
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE tickets SET buyer_id=?, is_sold=1 WHERE id=? AND is_sold=0",
		buyerID, ticketID)
	if err != nil {
		return model.Ticket{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Ticket{}, err
	}
	if n == 0 {
		// lost the race to a concurrent buyer
		return model.Ticket{}, ErrTicketSold
	}
	t.BuyerID = &buyerID
	t.IsSold = true
	return t, nil
}

// CreateBulkTx inserts multiple unsold tickets in one statement within
// an existing transaction. Used by the listing fan-out so the listing
// row and its tickets land atomically. An empty slice is a no-op.
func (r *TicketRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := "INSERT INTO tickets (event_name, category, event_date, price_cents, seller_id, is_sold) VALUES "
	args := make([]interface{}, 0, len(tickets)*5)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?,0)"
		args = append(args, t.EventName, string(t.Category), t.EventDate.Format("2006-01-02"), t.PriceCents, t.SellerID)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func scanTicket(row *sql.Row) (model.Ticket, error) {
	var t model.Ticket
	var category string
	var buyer sql.NullInt64
	err := row.Scan(&t.ID, &t.EventName, &category, &t.EventDate, &t.PriceCents, &t.SellerID, &buyer, &t.IsSold)
	if err != nil {
		return model.Ticket{}, err
	}
	t.Category = model.Category(category)
	if buyer.Valid {
		b := uint64(buyer.Int64)
		t.BuyerID = &b
	}
	return t, nil
}

func collectTickets(rows *sql.Rows) ([]model.Ticket, error) {
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		var category string
		var buyer sql.NullInt64
		if err := rows.Scan(&t.ID, &t.EventName, &category, &t.EventDate, &t.PriceCents, &t.SellerID, &buyer, &t.IsSold); err != nil {
			return nil, err
		}
		t.Category = model.Category(category)
		if buyer.Valid {
			b := uint64(buyer.Int64)
			t.BuyerID = &b
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
