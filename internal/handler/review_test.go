package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-marketplace/internal/repository"
)

var reviewColumns = []string{"id", "buyer_id", "seller_id", "rating", "review_text", "created_at"}

func newReviewHandler(t *testing.T) (*ReviewHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewReviewHandler(
		repository.NewUserRepo(db),
		repository.NewReviewRepo(db),
		repository.NewTransactionRepo(db),
	)
	return h, mock, func() { db.Close() }
}

func expectSeller(mock sqlmock.Sqlmock, id uint64) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=? LIMIT 1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id, "seller", "seller@example.com", "$2a$04$hash", "Seller", nil, time.Now()))
}

func TestReviewCreateSuccess(t *testing.T) {
	h, mock, closeDB := newReviewHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Buyer")
	expectSeller(mock, 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM transactions WHERE buyer_id=? AND seller_id=? LIMIT 1")).
		WithArgs(7, 2).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews (buyer_id, seller_id, rating, review_text) VALUES (?,?,?,?)")).
		WithArgs(7, 2, 5, "great seats").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM reviews WHERE id=?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	c, rec := newJSONContext(http.MethodPost, "/reviews",
		`{"seller_id":2,"rating":5,"review_text":"great seats"}`)
	c.Set("email", "buyer@example.com")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating":5`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A buyer with no completed purchase from the seller may not review.
func TestReviewCreateWithoutPurchase(t *testing.T) {
	h, mock, closeDB := newReviewHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Buyer")
	expectSeller(mock, 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM transactions WHERE buyer_id=? AND seller_id=? LIMIT 1")).
		WithArgs(7, 2).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	c, rec := newJSONContext(http.MethodPost, "/reviews",
		`{"seller_id":2,"rating":4}`)
	c.Set("email", "buyer@example.com")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "bought from")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreateUnknownSeller(t *testing.T) {
	h, mock, closeDB := newReviewHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Buyer")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=? LIMIT 1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(userColumns))

	c, rec := newJSONContext(http.MethodPost, "/reviews",
		`{"seller_id":99,"rating":4}`)
	c.Set("email", "buyer@example.com")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreateInvalidRating(t *testing.T) {
	h, mock, closeDB := newReviewHandler(t)
	defer closeDB()

	expectBuyer(mock, 7, "Buyer")

	c, rec := newJSONContext(http.MethodPost, "/reviews",
		`{"seller_id":2,"rating":6}`)
	c.Set("email", "buyer@example.com")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewListBySeller(t *testing.T) {
	h, mock, closeDB := newReviewHandler(t)
	defer closeDB()

	expectSeller(mock, 2)
	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews WHERE seller_id=? ORDER BY id LIMIT ? OFFSET ?")).
		WithArgs(2, 100, 0).
		WillReturnRows(sqlmock.NewRows(reviewColumns).
			AddRow(3, 7, 2, 5, "great seats", time.Now()).
			AddRow(4, 8, 2, 3, nil, time.Now()))

	c, rec := newJSONContext(http.MethodGet, "/reviews/seller/2", "")
	c.SetParamNames("seller_id")
	c.SetParamValues("2")
	require.NoError(t, h.ListBySeller(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"review_text":"great seats"`)
	assert.Contains(t, rec.Body.String(), `"review_text":null`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
