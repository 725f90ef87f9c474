package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/model"
	"github.com/iliyamo/ticket-marketplace/internal/queue"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
	"github.com/iliyamo/ticket-marketplace/internal/service"
)

// TicketHandler bundles dependencies for ticket creation, the public
// ticket reads and the purchase endpoint. All role checks run against
// the user row loaded from the database, never against request-body
// ids.
type TicketHandler struct {
	Users        *repository.UserRepo
	Tickets      *repository.TicketRepo
	Transactions *repository.TransactionRepo
	Publisher    *service.Publisher
}

func NewTicketHandler(users *repository.UserRepo, tickets *repository.TicketRepo, transactions *repository.TransactionRepo, pub *service.Publisher) *TicketHandler {
	if users == nil || tickets == nil || transactions == nil {
		panic("nil repository passed to NewTicketHandler")
	}
	return &TicketHandler{Users: users, Tickets: tickets, Transactions: transactions, Publisher: pub}
}

// ----- DTOs -----

type ticketCreateReq struct {
	EventName  string `json:"event_name"`
	Category   string `json:"category"`
	EventDate  string `json:"event_date"`
	PriceCents uint32 `json:"price_cents"`
}

type buyReq struct {
	PaymentMethod string `json:"payment_method"`
}

type ticketResp struct {
	ID         uint64  `json:"ticket_id"`
	EventName  string  `json:"event_name"`
	Category   string  `json:"category"`
	EventDate  string  `json:"event_date"`
	PriceCents uint32  `json:"price_cents"`
	SellerID   uint64  `json:"seller_id"`
	BuyerID    *uint64 `json:"buyer_id,omitempty"`
	IsSold     bool    `json:"is_sold"`
}

func toTicketResp(t model.Ticket) ticketResp {
	return ticketResp{
		ID:         t.ID,
		EventName:  t.EventName,
		Category:   string(t.Category),
		EventDate:  t.EventDate.Format(eventDateLayout),
		PriceCents: t.PriceCents,
		SellerID:   t.SellerID,
		BuyerID:    t.BuyerID,
		IsSold:     t.IsSold,
	}
}

func toTicketResps(tickets []model.Ticket) []ticketResp {
	out := make([]ticketResp, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResp(t))
	}
	return out
}

// Create handles POST /tickets: a standalone unsold ticket owned by
// the authenticated seller.
func (h *TicketHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !u.Role.CanSell() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only sellers can create tickets"})
	}

	var req ticketCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EventName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_name required"})
	}
	category, ok := model.ParseCategory(req.Category)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category must be Concert, Sports, Theater or Other"})
	}
	date, ok := parseEventDate(req.EventDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date must be YYYY-MM-DD"})
	}

	t := model.Ticket{
		EventName:  req.EventName,
		Category:   category,
		EventDate:  date,
		PriceCents: req.PriceCents,
		SellerID:   u.ID,
	}
	if err := h.Tickets.Create(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
	}
	return c.JSON(http.StatusCreated, toTicketResp(t))
}

// List handles GET /tickets: unsold tickets only.
func (h *TicketHandler) List(c echo.Context) error {
	skip, limit := pagination(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	tickets, err := h.Tickets.ListUnsold(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toTicketResps(tickets))
}

// Get handles GET /tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	t, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(c, err, "ticket not found")
	}
	return c.JSON(http.StatusOK, toTicketResp(t))
}

// ListByUser handles GET /tickets/user/:id: all tickets purchased by
// the given user.
func (h *TicketHandler) ListByUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	tickets, err := h.Tickets.ListByBuyer(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toTicketResps(tickets))
}

// Buy handles PUT /tickets/:id/buy, the purchase path. The
// ticket mutation and the transaction record are committed as one
// atomic unit: either the ticket is durably sold with exactly one
// transaction row, or nothing changed. Under concurrent purchases the
// guarded update in ClaimTx lets exactly one caller win; the rest get
// 409 and the row stays as the winner left it.
func (h *TicketHandler) Buy(c echo.Context) error {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !u.Role.CanBuy() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only buyers can purchase tickets"})
	}

	// Body is optional; an omitted or empty payment method defaults to
	// Credit Card.
	var req buyReq
	_ = c.Bind(&req)
	method, ok := model.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method must be Credit Card, PayPal or Bank Transfer"})
	}

	tx, err := h.Tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := h.Tickets.ClaimTx(ctx, tx, ticketID, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketSold) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket is already sold"})
		}
		return notFoundOr(c, err, "ticket not found")
	}

	rec := model.Transaction{
		TicketID:      t.ID,
		SellerID:      t.SellerID,
		BuyerID:       u.ID,
		PaymentMethod: method,
		PriceCents:    t.PriceCents,
	}
	if err := h.Transactions.CreateTx(ctx, tx, &rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record transaction"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Best-effort event after commit; the sale stands regardless.
	_ = h.Publisher.TicketSold(ctx, queue.TicketSoldEvent{
		TransactionID: rec.ID,
		TicketID:      t.ID,
		SellerID:      t.SellerID,
		BuyerID:       u.ID,
		EventName:     t.EventName,
		PriceCents:    t.PriceCents,
		PaymentMethod: string(method),
		SoldAt:        time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, toTicketResp(t))
}
