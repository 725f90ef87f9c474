package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/model"
	"github.com/iliyamo/ticket-marketplace/internal/queue"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
	"github.com/iliyamo/ticket-marketplace/internal/service"
)

// maxListingQuantity bounds the ticket fan-out of a single listing.
const maxListingQuantity = 100

// ListingHandler bundles dependencies for sell listings: creation with
// its ticket fan-out, the public reads, and the symmetric match
// notification.
type ListingHandler struct {
	Users     *repository.UserRepo
	Listings  *repository.ListingRepo
	Tickets   *repository.TicketRepo
	Requests  *repository.BuyRequestRepo
	Publisher *service.Publisher
}

func NewListingHandler(users *repository.UserRepo, listings *repository.ListingRepo, tickets *repository.TicketRepo, requests *repository.BuyRequestRepo, pub *service.Publisher) *ListingHandler {
	if users == nil || listings == nil || tickets == nil || requests == nil {
		panic("nil repository passed to NewListingHandler")
	}
	return &ListingHandler{Users: users, Listings: listings, Tickets: tickets, Requests: requests, Publisher: pub}
}

// ----- DTOs -----

type listingCreateReq struct {
	EventName  string `json:"event_name"`
	Category   string `json:"category"`
	EventDate  string `json:"event_date"`
	PriceCents uint32 `json:"price_cents"`
	Quantity   uint32 `json:"quantity"`
}

type listingResp struct {
	ID          uint64 `json:"sell_id"`
	SellerID    uint64 `json:"seller_id"`
	EventName   string `json:"event_name"`
	Category    string `json:"category"`
	EventDate   string `json:"event_date"`
	PriceCents  uint32 `json:"price_cents"`
	Quantity    uint32 `json:"quantity"`
	IsAvailable bool   `json:"is_available"`
	CreatedAt   string `json:"created_date"`
}

func toListingResp(l model.SellListing) listingResp {
	return listingResp{
		ID:          l.ID,
		SellerID:    l.SellerID,
		EventName:   l.EventName,
		Category:    string(l.Category),
		EventDate:   l.EventDate.Format(eventDateLayout),
		PriceCents:  l.PriceCents,
		Quantity:    l.Quantity,
		IsAvailable: l.IsAvailable,
		CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /sell-listings. The listing row and its quantity
// tickets are inserted in one database transaction, so a failure
// leaves neither behind. After commit, standing buy requests matching
// the listing are looked up and published as a listing.matched event.
func (h *ListingHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !u.Role.CanSell() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only sellers can create sell listings"})
	}

	var req listingCreateReq
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
	if req.Quantity == 0 || req.Quantity > maxListingQuantity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be between 1 and 100"})
	}

	listing := model.SellListing{
		SellerID:   u.ID,
		EventName:  req.EventName,
		Category:   category,
		EventDate:  date,
		PriceCents: req.PriceCents,
		Quantity:   req.Quantity,
	}

	tx, err := h.Listings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Listings.CreateTx(ctx, tx, &listing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create listing failed"})
	}
	// fan out quantity independent unsold tickets carrying the listing's
	// event attributes
	tickets := make([]model.Ticket, 0, listing.Quantity)
	for i := uint32(0); i < listing.Quantity; i++ {
		tickets = append(tickets, model.Ticket{
			EventName:  listing.EventName,
			Category:   listing.Category,
			EventDate:  listing.EventDate,
			PriceCents: listing.PriceCents,
			SellerID:   u.ID,
		})
	}
	if err := h.Tickets.CreateBulkTx(ctx, tx, tickets); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tickets failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Symmetric match: buy requests this listing satisfies. Surfaced as
	// a broker event, not in the creation response.
	if matches, err := h.Requests.FindForListing(ctx, listing); err == nil && len(matches) > 0 {
		ids := make([]uint64, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		_ = h.Publisher.ListingMatched(ctx, queue.ListingMatchedEvent{
			ListingID:  listing.ID,
			SellerID:   listing.SellerID,
			EventName:  listing.EventName,
			EventDate:  listing.EventDate.Format(eventDateLayout),
			PriceCents: listing.PriceCents,
			RequestIDs: ids,
		})
	}

	return c.JSON(http.StatusCreated, toListingResp(listing))
}

// List handles GET /sell-listings.
func (h *ListingHandler) List(c echo.Context) error {
	skip, limit := pagination(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	listings, err := h.Listings.List(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]listingResp, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResp(l))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /sell-listings/:id.
func (h *ListingHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(c, err, "sell listing not found")
	}
	return c.JSON(http.StatusOK, toListingResp(l))
}
