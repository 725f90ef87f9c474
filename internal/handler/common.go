package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/model"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// eventDateLayout is the wire format for event dates.
const eventDateLayout = "2006-01-02"

var errNoIdentity = errors.New("no authenticated identity in context")

// authedEmail extracts the subject email stored by the JWT middleware.
func authedEmail(c echo.Context) (string, error) {
	email, ok := c.Get("email").(string)
	if !ok || email == "" {
		return "", errNoIdentity
	}
	return email, nil
}

// currentUser resolves the authenticated caller to its user row. The
// token subject is the email; the database row stays authoritative for
// role checks, so a stale role claim cannot widen permissions. Any
// failure collapses to an unauthorized outcome for the caller.
func currentUser(ctx context.Context, c echo.Context, users *repository.UserRepo) (model.User, error) {
	email, err := authedEmail(c)
	if err != nil {
		return model.User{}, err
	}
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// pagination reads skip/limit query parameters with the defaults the
// public read endpoints document (0/100). Limit is capped at 100.
func pagination(c echo.Context) (skip, limit int) {
	skip, limit = 0, 100
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return skip, limit
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// parseEventDate parses a "2006-01-02" date string into a UTC time.
func parseEventDate(raw string) (time.Time, bool) {
	t, err := time.Parse(eventDateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// notFoundOr maps sql.ErrNoRows to a 404 with the given message and
// everything else to a 500.
func notFoundOr(c echo.Context, err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
