package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

func TestAddToWishlist(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "reader@example.com")
	book := seedBook(t, db, "Wanted", 999)

	entry, err := svc.AddToWishlist(user.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, entry.BookID)

	_, err = svc.AddToWishlist(user.ID, book.ID)
	assert.ErrorIs(t, err, ErrAlreadyInWishlist)

	_, err = svc.AddToWishlist(user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrBookNotFound)
}

// TestWishlistUniqueIndexIsFinalArbiter bypasses the service's fast-path
// existence check and inserts the duplicate directly, so the unique index
// itself has to reject it.
func TestWishlistUniqueIndexIsFinalArbiter(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewWishlistRepository(db)
	user := seedUser(t, db, "reader@example.com")
	book := seedBook(t, db, "Wanted", 999)

	require.NoError(t, repo.Create(nil, &models.Wishlist{UserID: user.ID, BookID: book.ID}))

	err := repo.Create(nil, &models.Wishlist{UserID: user.ID, BookID: book.ID})
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	var count int64
	require.NoError(t, db.Model(&models.Wishlist{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPurchaseUniqueIndexIsFinalArbiter(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewPurchaseRepository(db)
	user := seedUser(t, db, "buyer@example.com")
	book := seedBook(t, db, "Bought", 999)

	require.NoError(t, repo.Create(nil, &models.Purchase{UserID: user.ID, BookID: book.ID}))

	err := repo.Create(nil, &models.Purchase{UserID: user.ID, BookID: book.ID})
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestAddToWishlistConcurrent races two simultaneous adds for the same pair;
// exactly one may land the row, the other must see the conflict sentinel no
// matter which guard caught it.
func TestAddToWishlistConcurrent(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "reader@example.com")
	book := seedBook(t, db, "Wanted", 999)

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			_, errs[idx] = svc.AddToWishlist(user.ID, book.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	var created, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrAlreadyInWishlist):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, conflicts)

	var count int64
	require.NoError(t, db.Model(&models.Wishlist{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWishlistOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	book := seedBook(t, db, "Private", 999)

	entry, err := svc.AddToWishlist(owner.ID, book.ID)
	require.NoError(t, err)

	// Foreign-owned entries are indistinguishable from missing ones.
	_, err = svc.GetWishlistEntry(other.ID, entry.ID)
	assert.ErrorIs(t, err, ErrWishlistEntryNotFound)
	assert.ErrorIs(t, svc.RemoveFromWishlist(other.ID, entry.ID), ErrWishlistEntryNotFound)

	require.NoError(t, svc.RemoveFromWishlist(owner.ID, entry.ID))
	_, err = svc.GetWishlistEntry(owner.ID, entry.ID)
	assert.ErrorIs(t, err, ErrWishlistEntryNotFound)
}

func TestAddToLibraryDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "reader@example.com")
	book := seedBook(t, db, "Owned", 999)

	entry, err := svc.AddToLibrary(user.ID, book.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.LibrarySourceManual, entry.Source)

	_, err = svc.AddToLibrary(user.ID, book.ID, models.LibrarySourceGift)
	assert.ErrorIs(t, err, ErrAlreadyInLibrary)
}

func TestCreatePurchaseAddsLibraryEntry(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "buyer@example.com")
	book := seedBook(t, db, "Bought", 1499)

	purchase, err := svc.CreatePurchase(user.ID, PurchaseInput{BookID: book.ID, PriceCents: 1499})
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusCompleted, purchase.Status)
	assert.Equal(t, "USD", purchase.Currency)

	var lib models.Library
	require.NoError(t, db.Where("user_id = ? AND book_id = ?", user.ID, book.ID).First(&lib).Error)
	assert.Equal(t, models.LibrarySourcePurchase, lib.Source)

	_, err = svc.CreatePurchase(user.ID, PurchaseInput{BookID: book.ID, PriceCents: 1499})
	assert.ErrorIs(t, err, ErrAlreadyPurchased)

	var count int64
	require.NoError(t, db.Model(&models.Library{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreatePurchaseKeepsExistingLibraryRow(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "buyer@example.com")
	book := seedBook(t, db, "Gifted Then Bought", 1499)

	manual, err := svc.AddToLibrary(user.ID, book.ID, models.LibrarySourceGift)
	require.NoError(t, err)

	_, err = svc.CreatePurchase(user.ID, PurchaseInput{BookID: book.ID, PriceCents: 1499})
	require.NoError(t, err)

	// The pre-existing row and its source survive the purchase.
	var lib models.Library
	require.NoError(t, db.Where("user_id = ? AND book_id = ?", user.ID, book.ID).First(&lib).Error)
	assert.Equal(t, manual.ID, lib.ID)
	assert.Equal(t, models.LibrarySourceGift, lib.Source)
}

func TestCreatePurchaseUnknownBook(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "buyer@example.com")

	_, err := svc.CreatePurchase(user.ID, PurchaseInput{BookID: uuid.New()})
	assert.ErrorIs(t, err, ErrBookNotFound)

	// Nothing committed on failure.
	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetPurchaseOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	buyer := seedUser(t, db, "buyer@example.com")
	other := seedUser(t, db, "other@example.com")
	book := seedBook(t, db, "Bought", 999)

	purchase, err := svc.CreatePurchase(buyer.ID, PurchaseInput{BookID: book.ID, PriceCents: 999})
	require.NoError(t, err)

	_, err = svc.GetPurchase(other.ID, purchase.ID)
	assert.ErrorIs(t, err, ErrPurchaseNotFound)

	got, err := svc.GetPurchase(buyer.ID, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase.ID, got.ID)
}

func TestFindPurchaseByTransaction(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "buyer@example.com")
	book := seedBook(t, db, "Bought", 999)

	txID := "txn_123"
	_, err := svc.CreatePurchase(user.ID, PurchaseInput{BookID: book.ID, TransactionID: &txID})
	require.NoError(t, err)

	found, err := svc.FindPurchaseByTransaction("txn_123")
	require.NoError(t, err)
	assert.Equal(t, book.ID, found.BookID)

	_, err = svc.FindPurchaseByTransaction("txn_missing")
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}

func TestUpsertProgressCreateThenPatch(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "reader@example.com")
	book := seedBook(t, db, "In Progress", 999)

	percent := 42.5
	chapter := "Chapter 3"
	progress, created, err := svc.UpsertProgress(user.ID, book.ID, ProgressPatch{
		ProgressPercent: &percent,
		CurrentChapter:  &chapter,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 42.5, progress.ProgressPercent)
	assert.False(t, progress.IsCompleted)

	// Patching only the completion flag leaves the rest untouched.
	done := true
	progress, created, err = svc.UpsertProgress(user.ID, book.ID, ProgressPatch{IsCompleted: &done})
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 42.5, progress.ProgressPercent)
	require.NotNil(t, progress.CurrentChapter)
	assert.Equal(t, "Chapter 3", *progress.CurrentChapter)
}

func TestUpsertProgressValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "reader@example.com")
	book := seedBook(t, db, "In Progress", 999)

	over := 100.5
	_, _, err := svc.UpsertProgress(user.ID, book.ID, ProgressPatch{ProgressPercent: &over})
	assert.ErrorIs(t, err, ErrInvalidProgress)

	under := -0.1
	_, _, err = svc.UpsertProgress(user.ID, book.ID, ProgressPatch{ProgressPercent: &under})
	assert.ErrorIs(t, err, ErrInvalidProgress)

	_, _, err = svc.UpsertProgress(user.ID, uuid.New(), ProgressPatch{})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestGetProgressMissing(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "reader@example.com")
	book := seedBook(t, db, "Unread", 999)

	_, err := svc.GetProgress(user.ID, book.ID)
	assert.ErrorIs(t, err, ErrProgressNotFound)
}

func TestListProgressFiltersCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := newShelfService(db)
	user := seedUser(t, db, "reader@example.com")
	finished := seedBook(t, db, "Finished", 999)
	reading := seedBook(t, db, "Reading", 999)

	done := true
	_, _, err := svc.UpsertProgress(user.ID, finished.ID, ProgressPatch{IsCompleted: &done})
	require.NoError(t, err)
	_, _, err = svc.UpsertProgress(user.ID, reading.ID, ProgressPatch{})
	require.NoError(t, err)

	entries, meta, err := svc.ListProgress(user.ID, &done, 1, 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, finished.ID, entries[0].BookID)
	assert.Equal(t, int64(1), meta.Total)

	entries, meta, err = svc.ListProgress(user.ID, nil, 1, 20)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, int64(2), meta.Total)
}
