package services

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookstore/internal/models"
	"bookstore/internal/pagination"
	"bookstore/internal/repositories"
)

// errProgressRace signals that an upsert lost the create race; the caller
// retries once, which lands on the update path.
var errProgressRace = errors.New("reading progress create race")

// PurchaseInput carries the payment details recorded with a purchase.
type PurchaseInput struct {
	BookID        uuid.UUID
	PriceCents    int
	Currency      string
	TransactionID *string
	Status        models.PurchaseStatus
}

// ProgressPatch carries the reading-progress fields explicitly supplied by the
// caller; nil fields are left untouched on update and take defaults on create.
type ProgressPatch struct {
	ProgressPercent *float64
	CurrentChapter  *string
	CurrentLocation *string
	IsCompleted     *bool
}

// ─── Service Interface ────────────────────────────────────────────────────────

// ShelfService owns the per-user collections: wishlist, purchases, library,
// and reading progress. Every operation acts on behalf of a single principal;
// ownership is enforced here, not in the handlers.
type ShelfService interface {
	ListWishlist(userID uuid.UUID, page, pageSize int) ([]models.Wishlist, pagination.Meta, error)
	AddToWishlist(userID, bookID uuid.UUID) (*models.Wishlist, error)
	GetWishlistEntry(userID, entryID uuid.UUID) (*models.Wishlist, error)
	RemoveFromWishlist(userID, entryID uuid.UUID) error

	ListLibrary(userID uuid.UUID, query string, page, pageSize int) ([]models.Library, pagination.Meta, error)
	AddToLibrary(userID, bookID uuid.UUID, source models.LibrarySource) (*models.Library, error)
	GetLibraryEntry(userID, entryID uuid.UUID) (*models.Library, error)
	RemoveFromLibrary(userID, entryID uuid.UUID) error

	ListPurchases(userID uuid.UUID, page, pageSize int) ([]models.Purchase, pagination.Meta, error)
	CreatePurchase(userID uuid.UUID, input PurchaseInput) (*models.Purchase, error)
	GetPurchase(userID, purchaseID uuid.UUID) (*models.Purchase, error)
	FindPurchaseByTransaction(transactionID string) (*models.Purchase, error)

	ListProgress(userID uuid.UUID, isCompleted *bool, page, pageSize int) ([]models.ReadingProgress, pagination.Meta, error)
	GetProgress(userID, bookID uuid.UUID) (*models.ReadingProgress, error)
	UpsertProgress(userID, bookID uuid.UUID, patch ProgressPatch) (*models.ReadingProgress, bool, error)
}

type shelfService struct {
	db           *gorm.DB
	bookRepo     repositories.BookRepository
	wishlistRepo repositories.WishlistRepository
	purchaseRepo repositories.PurchaseRepository
	libraryRepo  repositories.LibraryRepository
	progressRepo repositories.ReadingProgressRepository
}

func NewShelfService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	wishlistRepo repositories.WishlistRepository,
	purchaseRepo repositories.PurchaseRepository,
	libraryRepo repositories.LibraryRepository,
	progressRepo repositories.ReadingProgressRepository,
) ShelfService {
	return &shelfService{
		db:           db,
		bookRepo:     bookRepo,
		wishlistRepo: wishlistRepo,
		purchaseRepo: purchaseRepo,
		libraryRepo:  libraryRepo,
		progressRepo: progressRepo,
	}
}

func (s *shelfService) bookExists(tx *gorm.DB, bookID uuid.UUID) error {
	if _, err := s.bookRepo.GetByID(tx, bookID); err != nil {
		if isNotFound(err) {
			return ErrBookNotFound
		}
		return err
	}
	return nil
}

// ─── Wishlist ─────────────────────────────────────────────────────────────────

func (s *shelfService) ListWishlist(userID uuid.UUID, page, pageSize int) ([]models.Wishlist, pagination.Meta, error) {
	page, pageSize = pagination.Sanitize(page, pageSize)

	total, err := s.wishlistRepo.CountByUser(nil, userID)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	offset, limit := pagination.OffsetLimit(page, pageSize)
	entries, err := s.wishlistRepo.ListByUser(nil, userID, offset, limit)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return entries, pagination.BuildMeta(total, page, pageSize), nil
}

// AddToWishlist inserts a wishlist row for the (user, book) pair. The
// existence check is only a friendly fast path; the unique index decides the
// race, and its loser gets the same conflict error.
func (s *shelfService) AddToWishlist(userID, bookID uuid.UUID) (*models.Wishlist, error) {
	entry := &models.Wishlist{UserID: userID, BookID: bookID}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bookExists(tx, bookID); err != nil {
			return err
		}
		if _, err := s.wishlistRepo.GetByUserAndBook(tx, userID, bookID); err == nil {
			return ErrAlreadyInWishlist
		} else if !isNotFound(err) {
			return err
		}
		if err := s.wishlistRepo.Create(tx, entry); err != nil {
			if isUniqueViolation(err) {
				log.Printf("[WARN] AddToWishlist: insert race lost for user %s / book %s", userID, bookID)
				return ErrAlreadyInWishlist
			}
			log.Printf("[ERROR] AddToWishlist: failed to create entry for user %s / book %s: %v", userID, bookID, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.wishlistRepo.GetByID(nil, entry.ID)
}

func (s *shelfService) GetWishlistEntry(userID, entryID uuid.UUID) (*models.Wishlist, error) {
	entry, err := s.wishlistRepo.GetByID(nil, entryID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrWishlistEntryNotFound
		}
		return nil, err
	}
	// Foreign-owned entries look exactly like missing ones.
	if entry.UserID != userID {
		return nil, ErrWishlistEntryNotFound
	}
	return entry, nil
}

func (s *shelfService) RemoveFromWishlist(userID, entryID uuid.UUID) error {
	if _, err := s.GetWishlistEntry(userID, entryID); err != nil {
		return err
	}
	return s.wishlistRepo.Delete(nil, entryID)
}

// ─── Library ──────────────────────────────────────────────────────────────────

func (s *shelfService) ListLibrary(userID uuid.UUID, query string, page, pageSize int) ([]models.Library, pagination.Meta, error) {
	page, pageSize = pagination.Sanitize(page, pageSize)

	total, err := s.libraryRepo.CountByUser(nil, userID, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	offset, limit := pagination.OffsetLimit(page, pageSize)
	entries, err := s.libraryRepo.ListByUser(nil, userID, query, offset, limit)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return entries, pagination.BuildMeta(total, page, pageSize), nil
}

func (s *shelfService) AddToLibrary(userID, bookID uuid.UUID, source models.LibrarySource) (*models.Library, error) {
	if source == "" {
		source = models.LibrarySourceManual
	}
	entry := &models.Library{UserID: userID, BookID: bookID, Source: source}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bookExists(tx, bookID); err != nil {
			return err
		}
		if _, err := s.libraryRepo.GetByUserAndBook(tx, userID, bookID); err == nil {
			return ErrAlreadyInLibrary
		} else if !isNotFound(err) {
			return err
		}
		if err := s.libraryRepo.Create(tx, entry); err != nil {
			if isUniqueViolation(err) {
				log.Printf("[WARN] AddToLibrary: insert race lost for user %s / book %s", userID, bookID)
				return ErrAlreadyInLibrary
			}
			log.Printf("[ERROR] AddToLibrary: failed to create entry for user %s / book %s: %v", userID, bookID, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.libraryRepo.GetByID(nil, entry.ID)
}

func (s *shelfService) GetLibraryEntry(userID, entryID uuid.UUID) (*models.Library, error) {
	entry, err := s.libraryRepo.GetByID(nil, entryID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLibraryEntryNotFound
		}
		return nil, err
	}
	if entry.UserID != userID {
		return nil, ErrLibraryEntryNotFound
	}
	return entry, nil
}

func (s *shelfService) RemoveFromLibrary(userID, entryID uuid.UUID) error {
	if _, err := s.GetLibraryEntry(userID, entryID); err != nil {
		return err
	}
	return s.libraryRepo.Delete(nil, entryID)
}

// ─── Purchases ────────────────────────────────────────────────────────────────

func (s *shelfService) ListPurchases(userID uuid.UUID, page, pageSize int) ([]models.Purchase, pagination.Meta, error) {
	page, pageSize = pagination.Sanitize(page, pageSize)

	total, err := s.purchaseRepo.CountByUser(nil, userID)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	offset, limit := pagination.OffsetLimit(page, pageSize)
	purchases, err := s.purchaseRepo.ListByUser(nil, userID, offset, limit)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return purchases, pagination.BuildMeta(total, page, pageSize), nil
}

// CreatePurchase records the purchase and guarantees a library row with
// source "purchase" exists for the pair. Both writes share one transaction so
// a purchase can never be committed without its library entry.
func (s *shelfService) CreatePurchase(userID uuid.UUID, input PurchaseInput) (*models.Purchase, error) {
	status := input.Status
	if status == "" {
		status = models.PurchaseStatusCompleted
	}
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	purchase := &models.Purchase{
		UserID:        userID,
		BookID:        input.BookID,
		PriceCents:    input.PriceCents,
		Currency:      currency,
		TransactionID: input.TransactionID,
		Status:        status,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bookExists(tx, input.BookID); err != nil {
			return err
		}
		if _, err := s.purchaseRepo.GetByUserAndBook(tx, userID, input.BookID); err == nil {
			return ErrAlreadyPurchased
		} else if !isNotFound(err) {
			return err
		}

		if err := s.purchaseRepo.Create(tx, purchase); err != nil {
			if isUniqueViolation(err) {
				log.Printf("[WARN] CreatePurchase: insert race lost for user %s / book %s", userID, input.BookID)
				return ErrAlreadyPurchased
			}
			log.Printf("[ERROR] CreatePurchase: failed to create purchase for user %s / book %s: %v", userID, input.BookID, err)
			return err
		}

		// The library row may already exist through a manual add or gift;
		// Ensure keeps that row and its original source.
		lib := &models.Library{UserID: userID, BookID: input.BookID, Source: models.LibrarySourcePurchase}
		if err := s.libraryRepo.Ensure(tx, lib); err != nil {
			log.Printf("[ERROR] CreatePurchase: failed to ensure library entry for user %s / book %s: %v", userID, input.BookID, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] CreatePurchase: purchase %s recorded for user %s / book %s", purchase.ID, userID, input.BookID)
	return s.purchaseRepo.GetByID(nil, purchase.ID)
}

func (s *shelfService) GetPurchase(userID, purchaseID uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(nil, purchaseID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	if purchase.UserID != userID {
		return nil, ErrPurchaseNotFound
	}
	return purchase, nil
}

func (s *shelfService) FindPurchaseByTransaction(transactionID string) (*models.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByTransactionID(nil, transactionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return purchase, nil
}

// ─── Reading Progress ─────────────────────────────────────────────────────────

func (s *shelfService) ListProgress(userID uuid.UUID, isCompleted *bool, page, pageSize int) ([]models.ReadingProgress, pagination.Meta, error) {
	page, pageSize = pagination.Sanitize(page, pageSize)

	total, err := s.progressRepo.CountByUser(nil, userID, isCompleted)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	offset, limit := pagination.OffsetLimit(page, pageSize)
	entries, err := s.progressRepo.ListByUser(nil, userID, isCompleted, offset, limit)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return entries, pagination.BuildMeta(total, page, pageSize), nil
}

func (s *shelfService) GetProgress(userID, bookID uuid.UUID) (*models.ReadingProgress, error) {
	progress, err := s.progressRepo.GetByUserAndBook(nil, userID, bookID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return progress, nil
}

// UpsertProgress creates the progress row on first write and applies only the
// supplied fields afterwards. The returned bool reports whether a row was
// created, so the handler can answer 201 vs 200.
func (s *shelfService) UpsertProgress(userID, bookID uuid.UUID, patch ProgressPatch) (*models.ReadingProgress, bool, error) {
	if patch.ProgressPercent != nil && (*patch.ProgressPercent < 0 || *patch.ProgressPercent > 100) {
		return nil, false, ErrInvalidProgress
	}

	// A lost create race aborts the transaction, so the retry runs in a
	// fresh one and takes the update path.
	for attempt := 0; attempt < 2; attempt++ {
		progress, created, err := s.tryUpsertProgress(userID, bookID, patch)
		if errors.Is(err, errProgressRace) {
			log.Printf("[WARN] UpsertProgress: create race lost for user %s / book %s, retrying as update", userID, bookID)
			continue
		}
		return progress, created, err
	}
	return nil, false, errProgressRace
}

func (s *shelfService) tryUpsertProgress(userID, bookID uuid.UUID, patch ProgressPatch) (*models.ReadingProgress, bool, error) {
	var result *models.ReadingProgress
	created := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bookExists(tx, bookID); err != nil {
			return err
		}

		progress, err := s.progressRepo.GetByUserAndBook(tx, userID, bookID)
		if err != nil {
			if !isNotFound(err) {
				return err
			}
			progress = &models.ReadingProgress{UserID: userID, BookID: bookID}
			created = true
		}

		if patch.ProgressPercent != nil {
			progress.ProgressPercent = *patch.ProgressPercent
		}
		if patch.CurrentChapter != nil {
			progress.CurrentChapter = patch.CurrentChapter
		}
		if patch.CurrentLocation != nil {
			progress.CurrentLocation = patch.CurrentLocation
		}
		if patch.IsCompleted != nil {
			progress.IsCompleted = *patch.IsCompleted
		}

		if created {
			if err := s.progressRepo.Create(tx, progress); err != nil {
				if isUniqueViolation(err) {
					return errProgressRace
				}
				return err
			}
		} else if err := s.progressRepo.Update(tx, progress); err != nil {
			return err
		}
		result = progress
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}
