package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore/internal/models"
)

// Every repository method accepts an optional *gorm.DB so services can run
// several calls inside one transaction; passing nil uses the default handle.

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.User, error)
	GetByEmail(db *gorm.DB, email string) (*models.User, error)
	Update(db *gorm.DB, user *models.User) error
	Delete(db *gorm.DB, id uuid.UUID) error
}

// BookFilters is the composable predicate set for catalog listings. Category
// filters require a join to the association table; the join is applied exactly
// once regardless of how many relationship filters are set.
type BookFilters struct {
	Query        string
	Author       string
	CategoryID   *uuid.UUID
	CategorySlug string
	PriceMin     *int
	PriceMax     *int
}

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error)
	Update(db *gorm.DB, book *models.Book) error
	ReplaceCategories(db *gorm.DB, book *models.Book, categories []models.Category) error
	Delete(db *gorm.DB, id uuid.UUID) error
	List(db *gorm.DB, filters BookFilters, offset, limit int) ([]models.Book, error)
	Count(db *gorm.DB, filters BookFilters) (int64, error)
}

type CategoryRepository interface {
	Create(db *gorm.DB, category *models.Category) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Category, error)
	GetBySlug(db *gorm.DB, slug string) (*models.Category, error)
	SlugExists(db *gorm.DB, slug string, excludeID uuid.UUID) (bool, error)
	GetByIDs(db *gorm.DB, ids []uuid.UUID) ([]models.Category, error)
	Update(db *gorm.DB, category *models.Category) error
	Delete(db *gorm.DB, id uuid.UUID) error
	List(db *gorm.DB, query string, offset, limit int) ([]models.Category, error)
	Count(db *gorm.DB, query string) (int64, error)
}

type WishlistRepository interface {
	Create(db *gorm.DB, entry *models.Wishlist) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Wishlist, error)
	GetByUserAndBook(db *gorm.DB, userID, bookID uuid.UUID) (*models.Wishlist, error)
	ListByUser(db *gorm.DB, userID uuid.UUID, offset, limit int) ([]models.Wishlist, error)
	CountByUser(db *gorm.DB, userID uuid.UUID) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) error
}

type PurchaseRepository interface {
	Create(db *gorm.DB, purchase *models.Purchase) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Purchase, error)
	GetByUserAndBook(db *gorm.DB, userID, bookID uuid.UUID) (*models.Purchase, error)
	GetByTransactionID(db *gorm.DB, transactionID string) (*models.Purchase, error)
	ListByUser(db *gorm.DB, userID uuid.UUID, offset, limit int) ([]models.Purchase, error)
	CountByUser(db *gorm.DB, userID uuid.UUID) (int64, error)
}

type LibraryRepository interface {
	Create(db *gorm.DB, entry *models.Library) error
	// Ensure inserts the entry unless a row for the (user, book) pair already
	// exists; an existing row is left untouched and is not an error.
	Ensure(db *gorm.DB, entry *models.Library) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Library, error)
	GetByUserAndBook(db *gorm.DB, userID, bookID uuid.UUID) (*models.Library, error)
	ListByUser(db *gorm.DB, userID uuid.UUID, query string, offset, limit int) ([]models.Library, error)
	CountByUser(db *gorm.DB, userID uuid.UUID, query string) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) error
}

type ReadingProgressRepository interface {
	Create(db *gorm.DB, progress *models.ReadingProgress) error
	GetByUserAndBook(db *gorm.DB, userID, bookID uuid.UUID) (*models.ReadingProgress, error)
	Update(db *gorm.DB, progress *models.ReadingProgress) error
	ListByUser(db *gorm.DB, userID uuid.UUID, isCompleted *bool, offset, limit int) ([]models.ReadingProgress, error)
	CountByUser(db *gorm.DB, userID uuid.UUID, isCompleted *bool) (int64, error)
}

// DailySales is one row of the sales-by-day aggregate.
type DailySales struct {
	Day          string `gorm:"column:day" json:"date"`
	Count        int64  `gorm:"column:count" json:"count"`
	RevenueCents int64  `gorm:"column:revenue_cents" json:"revenue_cents"`
}

// BookSales is one row of the top-books aggregate.
type BookSales struct {
	Title string `gorm:"column:title" json:"title"`
	Count int64  `gorm:"column:count" json:"count"`
}

type StatsRepository interface {
	SalesByDay(db *gorm.DB, since time.Time) ([]DailySales, error)
	TopBooks(db *gorm.DB, limit int) ([]BookSales, error)
	TotalRevenueCents(db *gorm.DB) (int64, error)
	TotalUsers(db *gorm.DB) (int64, error)
}

// ─── Users ────────────────────────────────────────────────────────────────────

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Create(user).Error
}

func (r *userRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Save(user).Error
}

func (r *userRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.User{}, "id = ?", id).Error
}

// ─── Books ────────────────────────────────────────────────────────────────────

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Create(book).Error
}

func (r *bookRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.Preload("Categories").First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Update(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Save(book).Error
}

func (r *bookRepository) ReplaceCategories(db *gorm.DB, book *models.Book, categories []models.Category) error {
	if db == nil {
		db = r.db
	}
	return db.Model(book).Association("Categories").Replace(categories)
}

func (r *bookRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	// Selecting the association removes book_categories rows, never the
	// categories themselves.
	return db.Select("Categories").Delete(&models.Book{Base: models.Base{ID: id}}).Error
}

// applyBookFilters attaches filter predicates to a books query. The category
// join is added at most once; callers that need an exact total must count
// DISTINCT book ids because the join can multiply rows.
func applyBookFilters(tx *gorm.DB, filters BookFilters) (*gorm.DB, bool) {
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		tx = tx.Where(
			"LOWER(books.title) LIKE LOWER(?) OR LOWER(books.author) LIKE LOWER(?) OR LOWER(books.description) LIKE LOWER(?)",
			like, like, like,
		)
	}
	if filters.Author != "" {
		tx = tx.Where("LOWER(books.author) LIKE LOWER(?)", "%"+filters.Author+"%")
	}
	if filters.PriceMin != nil {
		tx = tx.Where("books.price_cents >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		tx = tx.Where("books.price_cents <= ?", *filters.PriceMax)
	}

	joined := false
	if filters.CategoryID != nil || filters.CategorySlug != "" {
		tx = tx.
			Joins("JOIN book_categories ON book_categories.book_id = books.id").
			Joins("JOIN categories ON categories.id = book_categories.category_id")
		joined = true
		if filters.CategoryID != nil {
			tx = tx.Where("categories.id = ?", *filters.CategoryID)
		}
		if filters.CategorySlug != "" {
			tx = tx.Where("categories.slug = ?", filters.CategorySlug)
		}
	}
	return tx, joined
}

func (r *bookRepository) List(db *gorm.DB, filters BookFilters, offset, limit int) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	tx, joined := applyBookFilters(db.Model(&models.Book{}), filters)
	if joined {
		tx = tx.Distinct("books.*")
	}
	var books []models.Book
	err := tx.Preload("Categories").
		Order("books.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) Count(db *gorm.DB, filters BookFilters) (int64, error) {
	if db == nil {
		db = r.db
	}
	// The count reproduces the exact join+filter set and counts distinct
	// primary keys so joined rows are never counted twice.
	tx, _ := applyBookFilters(db.Model(&models.Book{}), filters)
	var total int64
	if err := tx.Distinct("books.id").Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ─── Categories ───────────────────────────────────────────────────────────────

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(db *gorm.DB, category *models.Category) error {
	if db == nil {
		db = r.db
	}
	return db.Create(category).Error
}

func (r *categoryRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Category, error) {
	if db == nil {
		db = r.db
	}
	var category models.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(db *gorm.DB, slug string) (*models.Category, error) {
	if db == nil {
		db = r.db
	}
	var category models.Category
	if err := db.First(&category, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) SlugExists(db *gorm.DB, slug string, excludeID uuid.UUID) (bool, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.Category{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) GetByIDs(db *gorm.DB, ids []uuid.UUID) ([]models.Category, error) {
	if db == nil {
		db = r.db
	}
	var categories []models.Category
	if err := db.Find(&categories, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Update(db *gorm.DB, category *models.Category) error {
	if db == nil {
		db = r.db
	}
	return db.Save(category).Error
}

func (r *categoryRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Select("Books").Delete(&models.Category{Base: models.Base{ID: id}}).Error
}

func categorySearch(tx *gorm.DB, query string) *gorm.DB {
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("LOWER(name) LIKE LOWER(?) OR LOWER(slug) LIKE LOWER(?)", like, like)
	}
	return tx
}

func (r *categoryRepository) List(db *gorm.DB, query string, offset, limit int) ([]models.Category, error) {
	if db == nil {
		db = r.db
	}
	var categories []models.Category
	err := categorySearch(db.Model(&models.Category{}), query).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Count(db *gorm.DB, query string) (int64, error) {
	if db == nil {
		db = r.db
	}
	var total int64
	err := categorySearch(db.Model(&models.Category{}), query).Count(&total).Error
	return total, err
}

// ─── Wishlist ─────────────────────────────────────────────────────────────────

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Create(db *gorm.DB, entry *models.Wishlist) error {
	if db == nil {
		db = r.db
	}
	return db.Create(entry).Error
}

func (r *wishlistRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Wishlist, error) {
	if db == nil {
		db = r.db
	}
	var entry models.Wishlist
	if err := db.Preload("Book").First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *wishlistRepository) GetByUserAndBook(db *gorm.DB, userID, bookID uuid.UUID) (*models.Wishlist, error) {
	if db == nil {
		db = r.db
	}
	var entry models.Wishlist
	err := db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *wishlistRepository) ListByUser(db *gorm.DB, userID uuid.UUID, offset, limit int) ([]models.Wishlist, error) {
	if db == nil {
		db = r.db
	}
	var entries []models.Wishlist
	err := db.Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *wishlistRepository) CountByUser(db *gorm.DB, userID uuid.UUID) (int64, error) {
	if db == nil {
		db = r.db
	}
	var total int64
	err := db.Model(&models.Wishlist{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

func (r *wishlistRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Wishlist{}, "id = ?", id).Error
}

// ─── Purchases ────────────────────────────────────────────────────────────────

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(db *gorm.DB, purchase *models.Purchase) error {
	if db == nil {
		db = r.db
	}
	return db.Create(purchase).Error
}

func (r *purchaseRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Purchase, error) {
	if db == nil {
		db = r.db
	}
	var purchase models.Purchase
	if err := db.Preload("Book").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) GetByUserAndBook(db *gorm.DB, userID, bookID uuid.UUID) (*models.Purchase, error) {
	if db == nil {
		db = r.db
	}
	var purchase models.Purchase
	err := db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) GetByTransactionID(db *gorm.DB, transactionID string) (*models.Purchase, error) {
	if db == nil {
		db = r.db
	}
	var purchase models.Purchase
	err := db.Where("transaction_id = ?", transactionID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) ListByUser(db *gorm.DB, userID uuid.UUID, offset, limit int) ([]models.Purchase, error) {
	if db == nil {
		db = r.db
	}
	var purchases []models.Purchase
	err := db.Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) CountByUser(db *gorm.DB, userID uuid.UUID) (int64, error) {
	if db == nil {
		db = r.db
	}
	var total int64
	err := db.Model(&models.Purchase{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

// ─── Library ──────────────────────────────────────────────────────────────────

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) Create(db *gorm.DB, entry *models.Library) error {
	if db == nil {
		db = r.db
	}
	return db.Create(entry).Error
}

func (r *libraryRepository) Ensure(db *gorm.DB, entry *models.Library) error {
	if db == nil {
		db = r.db
	}
	// ON CONFLICT DO NOTHING keeps the surrounding transaction alive when the
	// pair already has a row.
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoNothing: true,
	}).Create(entry).Error
}

func (r *libraryRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Library, error) {
	if db == nil {
		db = r.db
	}
	var entry models.Library
	if err := db.Preload("Book").First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *libraryRepository) GetByUserAndBook(db *gorm.DB, userID, bookID uuid.UUID) (*models.Library, error) {
	if db == nil {
		db = r.db
	}
	var entry models.Library
	err := db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func libraryScope(tx *gorm.DB, userID uuid.UUID, query string) *gorm.DB {
	tx = tx.Where("libraries.user_id = ?", userID)
	if query != "" {
		like := "%" + query + "%"
		tx = tx.
			Joins("JOIN books ON books.id = libraries.book_id").
			Where("LOWER(books.title) LIKE LOWER(?) OR LOWER(books.author) LIKE LOWER(?)", like, like)
	}
	return tx
}

func (r *libraryRepository) ListByUser(db *gorm.DB, userID uuid.UUID, query string, offset, limit int) ([]models.Library, error) {
	if db == nil {
		db = r.db
	}
	var entries []models.Library
	err := libraryScope(db.Model(&models.Library{}), userID, query).
		Preload("Book").
		Order("libraries.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *libraryRepository) CountByUser(db *gorm.DB, userID uuid.UUID, query string) (int64, error) {
	if db == nil {
		db = r.db
	}
	var total int64
	err := libraryScope(db.Model(&models.Library{}), userID, query).Count(&total).Error
	return total, err
}

func (r *libraryRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Library{}, "id = ?", id).Error
}

// ─── Reading Progress ─────────────────────────────────────────────────────────

type readingProgressRepository struct {
	db *gorm.DB
}

func NewReadingProgressRepository(db *gorm.DB) ReadingProgressRepository {
	return &readingProgressRepository{db: db}
}

func (r *readingProgressRepository) Create(db *gorm.DB, progress *models.ReadingProgress) error {
	if db == nil {
		db = r.db
	}
	return db.Create(progress).Error
}

func (r *readingProgressRepository) GetByUserAndBook(db *gorm.DB, userID, bookID uuid.UUID) (*models.ReadingProgress, error) {
	if db == nil {
		db = r.db
	}
	var progress models.ReadingProgress
	err := db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *readingProgressRepository) Update(db *gorm.DB, progress *models.ReadingProgress) error {
	if db == nil {
		db = r.db
	}
	return db.Save(progress).Error
}

func (r *readingProgressRepository) ListByUser(db *gorm.DB, userID uuid.UUID, isCompleted *bool, offset, limit int) ([]models.ReadingProgress, error) {
	if db == nil {
		db = r.db
	}
	tx := db.Preload("Book").Where("user_id = ?", userID)
	if isCompleted != nil {
		tx = tx.Where("is_completed = ?", *isCompleted)
	}
	var entries []models.ReadingProgress
	err := tx.Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *readingProgressRepository) CountByUser(db *gorm.DB, userID uuid.UUID, isCompleted *bool) (int64, error) {
	if db == nil {
		db = r.db
	}
	tx := db.Model(&models.ReadingProgress{}).Where("user_id = ?", userID)
	if isCompleted != nil {
		tx = tx.Where("is_completed = ?", *isCompleted)
	}
	var total int64
	err := tx.Count(&total).Error
	return total, err
}

// ─── Stats ────────────────────────────────────────────────────────────────────

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) SalesByDay(db *gorm.DB, since time.Time) ([]DailySales, error) {
	if db == nil {
		db = r.db
	}
	var rows []DailySales
	err := db.Model(&models.Purchase{}).
		Select("DATE(created_at) AS day, COUNT(id) AS count, COALESCE(SUM(price_cents), 0) AS revenue_cents").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("DATE(created_at)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *statsRepository) TopBooks(db *gorm.DB, limit int) ([]BookSales, error) {
	if db == nil {
		db = r.db
	}
	var rows []BookSales
	err := db.Model(&models.Purchase{}).
		Select("books.title AS title, COUNT(purchases.id) AS count").
		Joins("JOIN books ON books.id = purchases.book_id").
		Group("books.id, books.title").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *statsRepository) TotalRevenueCents(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var revenue int64
	err := db.Model(&models.Purchase{}).
		Select("COALESCE(SUM(price_cents), 0)").
		Scan(&revenue).Error
	return revenue, err
}

func (r *statsRepository) TotalUsers(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var total int64
	err := db.Model(&models.User{}).Count(&total).Error
	return total, err
}
