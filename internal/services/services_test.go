package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// newTestDB opens an isolated in-memory database with the full schema.
// TranslateError is on so duplicate detection behaves as it does in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Book{},
		&models.Wishlist{},
		&models.Purchase{},
		&models.Library{},
		&models.ReadingProgress{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedBook(t *testing.T, db *gorm.DB, title string, priceCents int) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, Author: "Test Author", PriceCents: priceCents, Currency: "USD"}
	require.NoError(t, db.Create(book).Error)
	return book
}

func newCatalogService(db *gorm.DB) CatalogService {
	return NewCatalogService(db, repositories.NewBookRepository(db), repositories.NewCategoryRepository(db))
}

func newShelfService(db *gorm.DB) ShelfService {
	return NewShelfService(
		db,
		repositories.NewBookRepository(db),
		repositories.NewWishlistRepository(db),
		repositories.NewPurchaseRepository(db),
		repositories.NewLibraryRepository(db),
		repositories.NewReadingProgressRepository(db),
	)
}
