package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-marketplace/internal/repository"
	"github.com/iliyamo/ticket-marketplace/internal/service"
)

var (
	requestColumns = []string{"id", "buyer_id", "event_name", "category", "event_date", "max_price_cents", "quantity", "created_at"}
	listingColumns = []string{"id", "seller_id", "event_name", "category", "event_date", "price_cents", "quantity", "is_available", "created_at"}
)

func newListingHandler(t *testing.T) (*ListingHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewListingHandler(
		repository.NewUserRepo(db),
		repository.NewListingRepo(db),
		repository.NewTicketRepo(db),
		repository.NewBuyRequestRepo(db),
		service.NewPublisher("", logrus.New()),
	)
	return h, mock, func() { db.Close() }
}

func expectSellerByEmail(mock sqlmock.Sqlmock, id uint64, role string) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("seller@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id, "seller", "seller@example.com", "$2a$04$hash", role, nil, time.Now()))
}

// Listing creation fans out one unsold ticket per unit of quantity,
// all inside the same transaction as the listing row.
func TestListingCreateFanOut(t *testing.T) {
	h, mock, closeDB := newListingHandler(t)
	defer closeDB()

	expectSellerByEmail(mock, 4, "Seller")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO sell_listings (seller_id, event_name, category, event_date, price_cents, quantity, is_available) VALUES (?,?,?,?,?,?,1)")).
		WithArgs(4, "Hamlet", "Theater", "2026-10-01", 3000, 2).
		WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM sell_listings WHERE id=?")).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO tickets (event_name, category, event_date, price_cents, seller_id, is_sold) VALUES (?,?,?,?,?,0),(?,?,?,?,?,0)")).
		WithArgs(
			"Hamlet", "Theater", "2026-10-01", 3000, 4,
			"Hamlet", "Theater", "2026-10-01", 3000, 4,
		).
		WillReturnResult(sqlmock.NewResult(20, 2))
	mock.ExpectCommit()
	// post-commit symmetric match lookup
	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM buy_requests WHERE event_name=? AND max_price_cents>=? AND event_date=?")).
		WithArgs("Hamlet", 3000, "2026-10-01").
		WillReturnRows(sqlmock.NewRows(requestColumns))

	c, rec := newJSONContext(http.MethodPost, "/sell-listings",
		`{"event_name":"Hamlet","category":"Theater","event_date":"2026-10-01","price_cents":3000,"quantity":2}`)
	c.Set("email", "seller@example.com")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sell_id":6`)
	assert.Contains(t, rec.Body.String(), `"quantity":2`)
	assert.Contains(t, rec.Body.String(), `"is_available":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingCreateForbiddenForBuyer(t *testing.T) {
	h, mock, closeDB := newListingHandler(t)
	defer closeDB()

	expectSellerByEmail(mock, 4, "Buyer")

	c, rec := newJSONContext(http.MethodPost, "/sell-listings",
		`{"event_name":"Hamlet","category":"Theater","event_date":"2026-10-01","price_cents":3000,"quantity":2}`)
	c.Set("email", "seller@example.com")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingCreateQuantityBounds(t *testing.T) {
	h, mock, closeDB := newListingHandler(t)
	defer closeDB()

	for _, body := range []string{
		`{"event_name":"Hamlet","category":"Theater","event_date":"2026-10-01","price_cents":3000,"quantity":0}`,
		`{"event_name":"Hamlet","category":"Theater","event_date":"2026-10-01","price_cents":3000,"quantity":101}`,
	} {
		expectSellerByEmail(mock, 4, "Seller")
		c, rec := newJSONContext(http.MethodPost, "/sell-listings", body)
		c.Set("email", "seller@example.com")
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
