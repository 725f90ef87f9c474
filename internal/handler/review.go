package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/model"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
)

// ReviewHandler bundles dependencies for seller reviews.
type ReviewHandler struct {
	Users        *repository.UserRepo
	Reviews      *repository.ReviewRepo
	Transactions *repository.TransactionRepo
}

func NewReviewHandler(users *repository.UserRepo, reviews *repository.ReviewRepo, transactions *repository.TransactionRepo) *ReviewHandler {
	if users == nil || reviews == nil || transactions == nil {
		panic("nil repository passed to NewReviewHandler")
	}
	return &ReviewHandler{Users: users, Reviews: reviews, Transactions: transactions}
}

// ----- DTOs -----

type reviewCreateReq struct {
	SellerID   uint64  `json:"seller_id"`
	Rating     int     `json:"rating"`
	ReviewText *string `json:"review_text"`
}

type reviewResp struct {
	ID         uint64  `json:"review_id"`
	BuyerID    uint64  `json:"buyer_id"`
	SellerID   uint64  `json:"seller_id"`
	Rating     int     `json:"rating"`
	ReviewText *string `json:"review_text"`
	CreatedAt  string  `json:"review_date"`
}

func toReviewResp(r model.Review) reviewResp {
	return reviewResp{
		ID:         r.ID,
		BuyerID:    r.BuyerID,
		SellerID:   r.SellerID,
		Rating:     r.Rating,
		ReviewText: r.ReviewText,
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /reviews. Only a buyer who has completed a
// purchase from the seller may review them.
func (h *ReviewHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := currentUser(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !u.Role.CanBuy() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only buyers can post reviews"})
	}

	var req reviewCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.RatingValid(req.Rating) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}
	if req.SellerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seller_id required"})
	}

	if _, err := h.Users.GetByID(ctx, req.SellerID); err != nil {
		return notFoundOr(c, err, "seller not found")
	}

	bought, err := h.Transactions.ExistsBetween(ctx, u.ID, req.SellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !bought {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only review sellers you have bought from"})
	}

	r := model.Review{
		BuyerID:    u.ID,
		SellerID:   req.SellerID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	}
	if err := h.Reviews.Create(ctx, &r); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	return c.JSON(http.StatusCreated, toReviewResp(r))
}

// List handles GET /reviews.
func (h *ReviewHandler) List(c echo.Context) error {
	skip, limit := pagination(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	reviews, err := h.Reviews.List(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reviewResp, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReviewResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// ListBySeller handles GET /reviews/seller/:seller_id.
func (h *ReviewHandler) ListBySeller(c echo.Context) error {
	sellerID, ok := pathID(c, "seller_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seller id"})
	}
	skip, limit := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, sellerID); err != nil {
		return notFoundOr(c, err, "seller not found")
	}
	reviews, err := h.Reviews.ListBySeller(ctx, sellerID, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reviewResp, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReviewResp(r))
	}
	return c.JSON(http.StatusOK, out)
}
