package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-marketplace/internal/repository"
	"github.com/iliyamo/ticket-marketplace/internal/service"
)

var ticketColumns = []string{"id", "event_name", "category", "event_date", "price_cents", "seller_id", "buyer_id", "is_sold"}

func newTicketHandler(t *testing.T) (*TicketHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewTicketHandler(
		repository.NewUserRepo(db),
		repository.NewTicketRepo(db),
		repository.NewTransactionRepo(db),
		service.NewPublisher("", logrus.New()),
	)
	return h, mock, func() { db.Close() }
}

// expectBuyer queues the user lookup the handler performs to resolve
// the authenticated caller.
func expectBuyer(mock sqlmock.Sqlmock, id uint64, role string) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("buyer@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id, "buyer", "buyer@example.com", "$2a$04$hash", role, nil, time.Now()))
}

func newBuyContext(ticketID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/tickets/"+ticketID+"/buy", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(ticketID)
	c.Set("email", "buyer@example.com")
	c.Set("role", "Buyer")
	return c, rec
}

func TestBuySuccess(t *testing.T) {
	h, mock, closeDB := newTicketHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Buyer")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE id=? LIMIT 1")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(ticketColumns).
			AddRow(10, "The Weeknd Live", "Concert", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 7500, 2, nil, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tickets SET buyer_id=?, is_sold=1 WHERE id=? AND is_sold=0")).
		WithArgs(7, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(10, 2, 7, "Credit Card", 7500).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM transactions WHERE id=?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	c, rec := newBuyContext("10")
	require.NoError(t, h.Buy(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_sold":true`)
	assert.Contains(t, rec.Body.String(), `"buyer_id":7`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuyAlreadySold(t *testing.T) {
	h, mock, closeDB := newTicketHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Buyer")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE id=? LIMIT 1")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(ticketColumns).
			AddRow(10, "The Weeknd Live", "Concert", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 7500, 2, 5, true))
	mock.ExpectRollback()

	c, rec := newBuyContext("10")
	require.NoError(t, h.Buy(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already sold")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The guarded update affects zero rows when a concurrent purchase
// committed between the read and the write. The loser also gets 409.
func TestBuyLostRace(t *testing.T) {
	h, mock, closeDB := newTicketHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Buyer")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE id=? LIMIT 1")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(ticketColumns).
			AddRow(10, "The Weeknd Live", "Concert", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 7500, 2, nil, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tickets SET buyer_id=?, is_sold=1 WHERE id=? AND is_sold=0")).
		WithArgs(7, 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, rec := newBuyContext("10")
	require.NoError(t, h.Buy(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuyMissingTicket(t *testing.T) {
	h, mock, closeDB := newTicketHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Buyer")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE id=? LIMIT 1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(ticketColumns))
	mock.ExpectRollback()

	c, rec := newBuyContext("99")
	require.NoError(t, h.Buy(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuySellerOnlyForbidden(t *testing.T) {
	h, mock, closeDB := newTicketHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Seller")

	c, rec := newBuyContext("10")
	require.NoError(t, h.Buy(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCreateForbiddenForBuyer(t *testing.T) {
	h, mock, closeDB := newTicketHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Buyer")

	c, rec := newJSONContext(http.MethodPost, "/tickets",
		`{"event_name":"Hamlet","category":"Theater","event_date":"2026-10-01","price_cents":3000}`)
	c.Set("email", "buyer@example.com")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketGetNotFound(t *testing.T) {
	h, mock, closeDB := newTicketHandler(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE id=? LIMIT 1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(ticketColumns))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/tickets/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
