package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookstore/internal/repositories"
)

func newStatsService(db *gorm.DB) StatsService {
	return NewStatsService(db, repositories.NewStatsRepository(db))
}

func TestStatsSummary(t *testing.T) {
	db := newTestDB(t)
	shelf := newShelfService(db)
	stats := newStatsService(db)

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	bestseller := seedBook(t, db, "Bestseller", 1000)
	slow := seedBook(t, db, "Slow Seller", 2500)

	_, err := shelf.CreatePurchase(alice.ID, PurchaseInput{BookID: bestseller.ID, PriceCents: 1000})
	require.NoError(t, err)
	_, err = shelf.CreatePurchase(bob.ID, PurchaseInput{BookID: bestseller.ID, PriceCents: 1000})
	require.NoError(t, err)
	_, err = shelf.CreatePurchase(alice.ID, PurchaseInput{BookID: slow.ID, PriceCents: 2500})
	require.NoError(t, err)

	summary, err := stats.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(4500), summary.RevenueCents)
	assert.Equal(t, int64(2), summary.Users)
}

func TestTopBooksOrdering(t *testing.T) {
	db := newTestDB(t)
	shelf := newShelfService(db)
	stats := newStatsService(db)

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	bestseller := seedBook(t, db, "Bestseller", 1000)
	slow := seedBook(t, db, "Slow Seller", 2500)

	_, err := shelf.CreatePurchase(alice.ID, PurchaseInput{BookID: bestseller.ID, PriceCents: 1000})
	require.NoError(t, err)
	_, err = shelf.CreatePurchase(bob.ID, PurchaseInput{BookID: bestseller.ID, PriceCents: 1000})
	require.NoError(t, err)
	_, err = shelf.CreatePurchase(alice.ID, PurchaseInput{BookID: slow.ID, PriceCents: 2500})
	require.NoError(t, err)

	rows, err := stats.TopBooks(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bestseller", rows[0].Title)
	assert.Equal(t, int64(2), rows[0].Count)

	rows, err = stats.TopBooks(1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSalesByDayIncludesToday(t *testing.T) {
	db := newTestDB(t)
	shelf := newShelfService(db)
	stats := newStatsService(db)

	user := seedUser(t, db, "alice@example.com")
	book := seedBook(t, db, "Today's Sale", 1000)

	_, err := shelf.CreatePurchase(user.ID, PurchaseInput{BookID: book.ID, PriceCents: 1000})
	require.NoError(t, err)

	rows, err := stats.SalesByDay(1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Count)
	assert.Equal(t, int64(1000), rows[0].RevenueCents)
}

func TestStatsEmptyDatabase(t *testing.T) {
	stats := newStatsService(newTestDB(t))

	summary, err := stats.Summary()
	require.NoError(t, err)
	assert.Zero(t, summary.RevenueCents)
	assert.Zero(t, summary.Users)

	rows, err := stats.TopBooks(10)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	daily, err := stats.SalesByDay(7)
	require.NoError(t, err)
	assert.NotNil(t, daily)
	assert.Empty(t, daily)
}
