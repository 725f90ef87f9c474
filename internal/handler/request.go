package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/model"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
)

// RequestHandler bundles dependencies for buy requests and the
// owner-only matching endpoint.
type RequestHandler struct {
	Users    *repository.UserRepo
	Requests *repository.BuyRequestRepo
	Listings *repository.ListingRepo
}

func NewRequestHandler(users *repository.UserRepo, requests *repository.BuyRequestRepo, listings *repository.ListingRepo) *RequestHandler {
	if users == nil || requests == nil || listings == nil {
		panic("nil repository passed to NewRequestHandler")
	}
	return &RequestHandler{Users: users, Requests: requests, Listings: listings}
}

// ----- DTOs -----

type requestCreateReq struct {
	EventName     string `json:"event_name"`
	Category      string `json:"category"`
	EventDate     string `json:"event_date"`
	MaxPriceCents uint32 `json:"max_price_cents"`
	Quantity      uint32 `json:"quantity"`
}

type requestResp struct {
	ID            uint64 `json:"request_id"`
	BuyerID       uint64 `json:"buyer_id"`
	EventName     string `json:"event_name"`
	Category      string `json:"category"`
	EventDate     string `json:"event_date"`
	MaxPriceCents uint32 `json:"max_price_cents"`
	Quantity      uint32 `json:"quantity"`
	CreatedAt     string `json:"created_date"`
}

func toRequestResp(r model.BuyRequest) requestResp {
	return requestResp{
		ID:            r.ID,
		BuyerID:       r.BuyerID,
		EventName:     r.EventName,
		Category:      string(r.Category),
		EventDate:     r.EventDate.Format(eventDateLayout),
		MaxPriceCents: r.MaxPriceCents,
		Quantity:      r.Quantity,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /buy-requests.
func (h *RequestHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !u.Role.CanBuy() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only buyers can create buy requests"})
	}

	var req requestCreateReq
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
	if req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}

	r := model.BuyRequest{
		BuyerID:       u.ID,
		EventName:     req.EventName,
		Category:      category,
		EventDate:     date,
		MaxPriceCents: req.MaxPriceCents,
		Quantity:      req.Quantity,
	}
	if err := h.Requests.Create(ctx, &r); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create buy request failed"})
	}
	return c.JSON(http.StatusCreated, toRequestResp(r))
}

// List handles GET /buy-requests.
func (h *RequestHandler) List(c echo.Context) error {
	skip, limit := pagination(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	requests, err := h.Requests.List(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]requestResp, 0, len(requests))
	for _, r := range requests {
		out = append(out, toRequestResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /buy-requests/:id.
func (h *RequestHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	r, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(c, err, "buy request not found")
	}
	return c.JSON(http.StatusOK, toRequestResp(r))
}

// Matches handles GET /buy-requests/:id/matches. The lookup is scoped
// to the authenticated owner, so a request owned by someone else is
// answered with the same 404 as a missing one. Matches satisfy the
// event name, event date and price-cap clauses; category is not
// compared.
func (h *RequestHandler) Matches(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	r, err := h.Requests.GetByIDForBuyer(ctx, id, u.ID)
	if err != nil {
		return notFoundOr(c, err, "buy request not found")
	}
	matches, err := h.Listings.FindForRequest(ctx, r)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]listingResp, 0, len(matches))
	for _, l := range matches {
		out = append(out, toListingResp(l))
	}
	return c.JSON(http.StatusOK, out)
}
