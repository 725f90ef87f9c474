package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

var listingColumns = []string{"id", "seller_id", "event_name", "category", "event_date", "price_cents", "quantity", "is_available", "created_at"}

var requestColumns = []string{"id", "buyer_id", "event_name", "category", "event_date", "max_price_cents", "quantity", "created_at"}

// FindForRequest matches on event name, event date and the price cap.
// The request's category must not appear in the predicate.
func TestFindForRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	date := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(listingColumns).
		AddRow(3, 9, "Open Air", "Concert", date, 4500, 2, true, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id,seller_id,event_name,category,event_date,price_cents,quantity,is_available,created_at FROM sell_listings WHERE event_name=? AND price_cents<=? AND event_date=? ORDER BY id")).
		WithArgs("Open Air", 5000, "2026-11-20").
		WillReturnRows(rows)

	repo := NewListingRepo(db)
	req := model.BuyRequest{
		BuyerID:       7,
		EventName:     "Open Air",
		Category:      model.CategorySports, // differs from the listing on purpose
		EventDate:     date,
		MaxPriceCents: 5000,
		Quantity:      1,
	}
	listings, err := repo.FindForRequest(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, uint64(3), listings[0].ID)
	assert.Equal(t, uint32(4500), listings[0].PriceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// FindForListing is the symmetric direction: requests whose cap covers
// the listing price.
func TestFindForListing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	date := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(requestColumns).
		AddRow(8, 7, "Open Air", "Concert", date, 5000, 1, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id,buyer_id,event_name,category,event_date,max_price_cents,quantity,created_at FROM buy_requests WHERE event_name=? AND max_price_cents>=? AND event_date=? ORDER BY id")).
		WithArgs("Open Air", 4500, "2026-11-20").
		WillReturnRows(rows)

	repo := NewBuyRequestRepo(db)
	l := model.SellListing{
		ID:         3,
		SellerID:   9,
		EventName:  "Open Air",
		Category:   model.CategoryConcert,
		EventDate:  date,
		PriceCents: 4500,
		Quantity:   2,
	}
	requests, err := repo.FindForListing(context.Background(), l)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, uint64(8), requests[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Ownership is folded into the lookup, so a foreign request scans as
// no rows at all.
func TestGetByIDForBuyer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id,buyer_id,event_name,category,event_date,max_price_cents,quantity,created_at FROM buy_requests WHERE id=? AND buyer_id=? LIMIT 1")).
		WithArgs(8, 99).
		WillReturnRows(sqlmock.NewRows(requestColumns))

	repo := NewBuyRequestRepo(db)
	_, err = repo.GetByIDForBuyer(context.Background(), 8, 99)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
