package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ─── Sentinel Errors ──────────────────────────────────────────────────────────

var (
	// ErrInvalidCredentials is returned for a wrong email/password combination.
	// The same error covers "unknown email" so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInactiveUser is returned when the referenced account is missing or
	// deactivated.
	ErrInactiveUser = errors.New("inactive or missing user")

	// ErrEmailTaken is returned when registration collides with an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrGoogleNotConfigured is returned when Google sign-in is attempted
	// without a configured client id.
	ErrGoogleNotConfigured = errors.New("google sign-in is not configured")

	// ErrAdminRequired is returned when the principal lacks the admin flag.
	ErrAdminRequired = errors.New("admin access required")

	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrBookNotFound is returned when the referenced book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrCategoryNotFound is returned when the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrSlugTaken is returned when a category slug collides with an existing one.
	ErrSlugTaken = errors.New("category slug already exists")

	// ErrAlreadyInWishlist is returned when the (user, book) pair already has a
	// wishlist row, whether caught by the fast-path check or the DB constraint.
	ErrAlreadyInWishlist = errors.New("book already in wishlist")

	// ErrAlreadyInLibrary is the library counterpart of ErrAlreadyInWishlist.
	ErrAlreadyInLibrary = errors.New("book already in library")

	// ErrAlreadyPurchased is returned when the user already purchased the book.
	ErrAlreadyPurchased = errors.New("book already purchased")

	// ErrWishlistEntryNotFound covers both a missing entry and an entry owned
	// by someone else; the two cases are indistinguishable to the caller.
	ErrWishlistEntryNotFound = errors.New("wishlist entry not found")

	// ErrLibraryEntryNotFound is the library counterpart of ErrWishlistEntryNotFound.
	ErrLibraryEntryNotFound = errors.New("library entry not found")

	// ErrPurchaseNotFound is returned when the purchase is missing or foreign-owned.
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrProgressNotFound is returned when no reading progress exists for the pair.
	ErrProgressNotFound = errors.New("reading progress not found")

	// ErrInvalidProgress is returned when progress_percent falls outside [0, 100].
	ErrInvalidProgress = errors.New("progress percent must be between 0 and 100")
)

// isUniqueViolation checks whether an insert hit a uniqueness constraint.
// PostgreSQL surfaces error code 23505; the sqlite driver used in tests reports
// "UNIQUE constraint failed"; gorm translates both when TranslateError is on.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "UNIQUE constraint")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
