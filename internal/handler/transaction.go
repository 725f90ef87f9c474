package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/repository"
)

// TransactionHandler exposes the joined transaction feed.
type TransactionHandler struct {
	Transactions *repository.TransactionRepo
}

func NewTransactionHandler(transactions *repository.TransactionRepo) *TransactionHandler {
	if transactions == nil {
		panic("nil repository passed to NewTransactionHandler")
	}
	return &TransactionHandler{Transactions: transactions}
}

// List handles GET /transactions. Each row carries the event name of
// the ticket it settled, joined at query time.
func (h *TransactionHandler) List(c echo.Context) error {
	skip, limit := pagination(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	views, err := h.Transactions.ListJoined(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, views)
}
