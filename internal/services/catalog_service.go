package services

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookstore/internal/models"
	"bookstore/internal/pagination"
	"bookstore/internal/repositories"
)

// defaultSlug is the fallback when slugification of a name yields nothing.
const defaultSlug = "category"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name, collapses runs of non-alphanumeric characters
// into a single hyphen, and trims leading/trailing hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonAlnum.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return defaultSlug
	}
	return slug
}

// ─── Inputs ───────────────────────────────────────────────────────────────────

type BookInput struct {
	Title         string
	Author        string
	Description   *string
	CoverImageURL *string
	FileURL       *string
	SampleFileURL *string
	PriceCents    int
	Currency      string
	PublishedDate *time.Time
	ISBN          *string
	Language      *string
	PageCount     *int
	Rating        *float64
	CategoryIDs   []uuid.UUID
}

// BookPatch carries the fields of a partial update; nil means "leave as is".
type BookPatch struct {
	Title         *string
	Author        *string
	Description   *string
	CoverImageURL *string
	FileURL       *string
	SampleFileURL *string
	PriceCents    *int
	Currency      *string
	PublishedDate *time.Time
	ISBN          *string
	Language      *string
	PageCount     *int
	Rating        *float64
	CategoryIDs   *[]uuid.UUID
}

type CategoryInput struct {
	Name string
	Slug *string
}

type CategoryPatch struct {
	Name *string
	Slug *string
}

// ─── Service Interface ────────────────────────────────────────────────────────

// CatalogService owns the book catalog and its categories.
type CatalogService interface {
	ListBooks(filters repositories.BookFilters, page, pageSize int) ([]models.Book, pagination.Meta, error)
	CreateBook(input BookInput) (*models.Book, error)
	GetBook(id uuid.UUID) (*models.Book, error)
	UpdateBook(id uuid.UUID, patch BookPatch) (*models.Book, error)
	DeleteBook(id uuid.UUID) error

	ListCategories(query string, page, pageSize int) ([]models.Category, pagination.Meta, error)
	CreateCategory(input CategoryInput) (*models.Category, error)
	GetCategory(id uuid.UUID) (*models.Category, error)
	GetCategoryBySlug(slug string) (*models.Category, error)
	UpdateCategory(id uuid.UUID, patch CategoryPatch) (*models.Category, error)
	DeleteCategory(id uuid.UUID) error
}

type catalogService struct {
	db           *gorm.DB
	bookRepo     repositories.BookRepository
	categoryRepo repositories.CategoryRepository
}

func NewCatalogService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	categoryRepo repositories.CategoryRepository,
) CatalogService {
	return &catalogService{db: db, bookRepo: bookRepo, categoryRepo: categoryRepo}
}

// ─── Books ────────────────────────────────────────────────────────────────────

func (s *catalogService) ListBooks(filters repositories.BookFilters, page, pageSize int) ([]models.Book, pagination.Meta, error) {
	page, pageSize = pagination.Sanitize(page, pageSize)

	total, err := s.bookRepo.Count(nil, filters)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	offset, limit := pagination.OffsetLimit(page, pageSize)
	books, err := s.bookRepo.List(nil, filters, offset, limit)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return books, pagination.BuildMeta(total, page, pageSize), nil
}

func (s *catalogService) CreateBook(input BookInput) (*models.Book, error) {
	book := &models.Book{
		Title:         input.Title,
		Author:        input.Author,
		Description:   input.Description,
		CoverImageURL: input.CoverImageURL,
		FileURL:       input.FileURL,
		SampleFileURL: input.SampleFileURL,
		PriceCents:    input.PriceCents,
		Currency:      input.Currency,
		PublishedDate: input.PublishedDate,
		ISBN:          input.ISBN,
		Language:      input.Language,
		PageCount:     input.PageCount,
		Rating:        input.Rating,
	}
	if book.Currency == "" {
		book.Currency = "USD"
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(input.CategoryIDs) > 0 {
			categories, err := s.categoryRepo.GetByIDs(tx, input.CategoryIDs)
			if err != nil {
				return err
			}
			if len(categories) != len(input.CategoryIDs) {
				return ErrCategoryNotFound
			}
			book.Categories = categories
		}
		if err := s.bookRepo.Create(tx, book); err != nil {
			log.Printf("[ERROR] CreateBook: failed to create book %q: %v", input.Title, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] CreateBook: created book %q (id=%s)", book.Title, book.ID)
	return book, nil
}

func (s *catalogService) GetBook(id uuid.UUID) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(nil, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *catalogService) UpdateBook(id uuid.UUID, patch BookPatch) (*models.Book, error) {
	var updated *models.Book

	err := s.db.Transaction(func(tx *gorm.DB) error {
		book, err := s.bookRepo.GetByID(tx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrBookNotFound
			}
			return err
		}

		if patch.Title != nil {
			book.Title = *patch.Title
		}
		if patch.Author != nil {
			book.Author = *patch.Author
		}
		if patch.Description != nil {
			book.Description = patch.Description
		}
		if patch.CoverImageURL != nil {
			book.CoverImageURL = patch.CoverImageURL
		}
		if patch.FileURL != nil {
			book.FileURL = patch.FileURL
		}
		if patch.SampleFileURL != nil {
			book.SampleFileURL = patch.SampleFileURL
		}
		if patch.PriceCents != nil {
			book.PriceCents = *patch.PriceCents
		}
		if patch.Currency != nil {
			book.Currency = *patch.Currency
		}
		if patch.PublishedDate != nil {
			book.PublishedDate = patch.PublishedDate
		}
		if patch.ISBN != nil {
			book.ISBN = patch.ISBN
		}
		if patch.Language != nil {
			book.Language = patch.Language
		}
		if patch.PageCount != nil {
			book.PageCount = patch.PageCount
		}
		if patch.Rating != nil {
			book.Rating = patch.Rating
		}

		if err := s.bookRepo.Update(tx, book); err != nil {
			log.Printf("[ERROR] UpdateBook: failed to update book %s: %v", id, err)
			return err
		}

		if patch.CategoryIDs != nil {
			categories, err := s.categoryRepo.GetByIDs(tx, *patch.CategoryIDs)
			if err != nil {
				return err
			}
			if len(categories) != len(*patch.CategoryIDs) {
				return ErrCategoryNotFound
			}
			if err := s.bookRepo.ReplaceCategories(tx, book, categories); err != nil {
				return err
			}
			book.Categories = categories
		}

		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *catalogService) DeleteBook(id uuid.UUID) error {
	if _, err := s.bookRepo.GetByID(nil, id); err != nil {
		if isNotFound(err) {
			return ErrBookNotFound
		}
		return err
	}
	if err := s.bookRepo.Delete(nil, id); err != nil {
		log.Printf("[ERROR] DeleteBook: failed to delete book %s: %v", id, err)
		return err
	}
	log.Printf("[INFO] DeleteBook: deleted book %s", id)
	return nil
}

// ─── Categories ───────────────────────────────────────────────────────────────

func (s *catalogService) ListCategories(query string, page, pageSize int) ([]models.Category, pagination.Meta, error) {
	page, pageSize = pagination.Sanitize(page, pageSize)

	total, err := s.categoryRepo.Count(nil, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	offset, limit := pagination.OffsetLimit(page, pageSize)
	categories, err := s.categoryRepo.List(nil, query, offset, limit)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return categories, pagination.BuildMeta(total, page, pageSize), nil
}

// CreateCategory derives a slug from the name when none is supplied. The
// pre-check gives a friendly conflict; the unique index is the final guard.
func (s *catalogService) CreateCategory(input CategoryInput) (*models.Category, error) {
	slug := Slugify(input.Name)
	if input.Slug != nil && *input.Slug != "" {
		slug = *input.Slug
	}

	category := &models.Category{Name: input.Name, Slug: slug}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := s.categoryRepo.SlugExists(tx, slug, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlugTaken
		}
		if err := s.categoryRepo.Create(tx, category); err != nil {
			if isUniqueViolation(err) {
				return ErrSlugTaken
			}
			log.Printf("[ERROR] CreateCategory: failed to create category %q: %v", input.Name, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] CreateCategory: created category %q (slug=%s, id=%s)", category.Name, category.Slug, category.ID)
	return category, nil
}

func (s *catalogService) GetCategory(id uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(nil, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *catalogService) GetCategoryBySlug(slug string) (*models.Category, error) {
	category, err := s.categoryRepo.GetBySlug(nil, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// UpdateCategory re-derives the slug when the name changes without an explicit
// slug, and re-checks uniqueness whenever the slug would change.
func (s *catalogService) UpdateCategory(id uuid.UUID, patch CategoryPatch) (*models.Category, error) {
	var updated *models.Category

	err := s.db.Transaction(func(tx *gorm.DB) error {
		category, err := s.categoryRepo.GetByID(tx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrCategoryNotFound
			}
			return err
		}

		if patch.Name != nil && *patch.Name != "" {
			category.Name = *patch.Name
		}

		newSlug := category.Slug
		switch {
		case patch.Slug != nil && *patch.Slug != "":
			newSlug = *patch.Slug
		case patch.Slug != nil:
			newSlug = Slugify(category.Name)
		case patch.Name != nil && *patch.Name != "":
			newSlug = Slugify(*patch.Name)
		}

		if newSlug != category.Slug {
			taken, err := s.categoryRepo.SlugExists(tx, newSlug, category.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlugTaken
			}
			category.Slug = newSlug
		}

		if err := s.categoryRepo.Update(tx, category); err != nil {
			if isUniqueViolation(err) {
				return ErrSlugTaken
			}
			return err
		}
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *catalogService) DeleteCategory(id uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(nil, id); err != nil {
		if isNotFound(err) {
			return ErrCategoryNotFound
		}
		return err
	}
	// Deleting a category removes its association rows only, never the books.
	if err := s.categoryRepo.Delete(nil, id); err != nil {
		log.Printf("[ERROR] DeleteCategory: failed to delete category %s: %v", id, err)
		return err
	}
	log.Printf("[INFO] DeleteCategory: deleted category %s", id)
	return nil
}
