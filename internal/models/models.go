package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identifier and audit timestamps shared by every entity.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate assigns an ID so inserts do not depend on a server-side default.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type User struct {
	Base
	Email        string  `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"`
	FullName     *string `gorm:"size:255" json:"full_name"`
	AvatarURL    *string `gorm:"size:512" json:"avatar_url"`
	IsActive     bool    `gorm:"not null;default:true" json:"is_active"`
	IsAdmin      bool    `gorm:"not null;default:false" json:"is_admin"`
}

type Category struct {
	Base
	Name string `gorm:"size:100;not null;index" json:"name"`
	Slug string `gorm:"size:120;not null;uniqueIndex" json:"slug"`

	Books []Book `gorm:"many2many:book_categories;constraint:OnDelete:CASCADE" json:"-"`
}

type Book struct {
	Base
	Title       string  `gorm:"size:255;not null;index" json:"title"`
	Author      string  `gorm:"size:255;not null;index" json:"author"`
	Description *string `gorm:"type:text" json:"description"`

	CoverImageURL *string `gorm:"size:512" json:"cover_image_url"`
	FileURL       *string `gorm:"size:512" json:"file_url"`
	SampleFileURL *string `gorm:"size:512" json:"sample_file_url"`

	// PriceCents is stored in minor currency units; never a float.
	PriceCents int    `gorm:"not null;default:0" json:"price_cents"`
	Currency   string `gorm:"size:8;not null;default:USD" json:"currency"`

	PublishedDate *time.Time `gorm:"type:date" json:"published_date"`
	ISBN          *string    `gorm:"size:32;uniqueIndex" json:"isbn"`
	Language      *string    `gorm:"size:32" json:"language"`
	PageCount     *int       `json:"page_count"`
	Rating        *float64   `json:"rating"`

	Categories []Category `gorm:"many2many:book_categories;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

// Wishlist links a user to a book they want. At most one row per (user, book);
// the unique index is the final arbiter under concurrent inserts.
type Wishlist struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_wishlists_user_book" json:"user_id"`
	User   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	BookID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_wishlists_user_book" json:"book_id"`
	Book   Book      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"book,omitempty"`
}

type PurchaseStatus string

const (
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusRefunded  PurchaseStatus = "refunded"
)

type Purchase struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_purchases_user_book" json:"user_id"`
	User   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	BookID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_purchases_user_book" json:"book_id"`
	Book   Book      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"book,omitempty"`

	PriceCents    int            `gorm:"not null;default:0" json:"price_cents"`
	Currency      string         `gorm:"size:8;not null;default:USD" json:"currency"`
	TransactionID *string        `gorm:"size:128;index" json:"transaction_id"`
	Status        PurchaseStatus `gorm:"size:32;not null;default:completed" json:"status"`
}

// LibrarySource tags how a book entered a user's library.
type LibrarySource string

const (
	LibrarySourcePurchase LibrarySource = "purchase"
	LibrarySourceManual   LibrarySource = "manual"
	LibrarySourceGift     LibrarySource = "gift"
)

type Library struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_libraries_user_book" json:"user_id"`
	User   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	BookID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_libraries_user_book" json:"book_id"`
	Book   Book      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"book,omitempty"`

	Source LibrarySource `gorm:"size:32;not null;default:manual" json:"source"`
}

type ReadingProgress struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reading_progress_user_book" json:"user_id"`
	User   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	BookID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reading_progress_user_book" json:"book_id"`
	Book   Book      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"book,omitempty"`

	ProgressPercent float64 `gorm:"not null;default:0" json:"progress_percent"`
	CurrentChapter  *string `gorm:"size:255" json:"current_chapter"`
	CurrentLocation *string `gorm:"size:255" json:"current_location"`
	IsCompleted     bool    `gorm:"not null;default:false" json:"is_completed"`
}

func (ReadingProgress) TableName() string { return "reading_progress" }
