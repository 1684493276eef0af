// Package catalog provides database operations for books and publishers.
package catalog

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// Repository handles all book and publisher database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Publishers ---

// PublisherWithCount is a publisher listing row with its book count.
type PublisherWithCount struct {
	entities.Publisher
	BookCount int64 `json:"book_count"`
}

// ListPublishers returns all publishers with their book counts.
func (r *Repository) ListPublishers() ([]PublisherWithCount, error) {
	var rows []PublisherWithCount
	err := r.db.Model(&entities.Publisher{}).
		Select(`publishers.*,
			(SELECT COUNT(*) FROM books WHERE books.publisher_id = publishers.id) AS book_count`).
		Order("publishers.name ASC").
		Scan(&rows).Error
	return rows, err
}

// GetPublisher retrieves a publisher by id.
func (r *Repository) GetPublisher(id uint) (*entities.Publisher, error) {
	var publisher entities.Publisher
	err := r.db.First(&publisher, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &publisher, nil
}

// CreatePublisher inserts a publisher; duplicate names are rejected.
func (r *Repository) CreatePublisher(publisher *entities.Publisher) error {
	err := r.db.Create(publisher).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return database.ErrConflict
	}
	return err
}

// --- Books ---

// CreateBook inserts a book. Exactly one of publisherID and newPublisherName
// should be set: an id must reference an existing publisher, a name creates
// one in the same transaction so a failed book insert leaves no orphan.
func (r *Repository) CreateBook(book *entities.Book, publisherID *uint, newPublisherName string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		switch {
		case publisherID != nil:
			var publisher entities.Publisher
			if err := tx.First(&publisher, *publisherID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return database.ErrNotFound
				}
				return err
			}
			book.PublisherID = &publisher.ID
		case newPublisherName != "":
			publisher := entities.Publisher{Name: newPublisherName}
			err := tx.Where("name = ?", newPublisherName).First(&publisher).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&publisher).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			book.PublisherID = &publisher.ID
		}
		return tx.Create(book).Error
	})
}

// GetBook retrieves a book with its seller and publisher.
func (r *Repository) GetBook(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Seller").Preload("Publisher").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// ListBooks returns the whole catalog.
func (r *Repository) ListBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id ASC").Find(&books).Error
	return books, err
}

// ListBooksAdmin returns the catalog with sellers and publishers preloaded.
func (r *Repository) ListBooksAdmin() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Seller").Preload("Publisher").Order("id ASC").Find(&books).Error
	return books, err
}

// ListBooksBySeller returns all books listed by one seller.
func (r *Repository) ListBooksBySeller(sellerID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("seller_id = ?", sellerID).Order("id ASC").Find(&books).Error
	return books, err
}

// ListNewestBooks returns the n most recently created books.
func (r *Repository) ListNewestBooks(n int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("created_at DESC").Limit(n).Find(&books).Error
	return books, err
}

// ListRandomBooks returns up to n arbitrary books. Backs the trending and
// discounted listings, which promise "some N items" and no ordering.
func (r *Repository) ListRandomBooks(n int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("RANDOM()").Limit(n).Find(&books).Error
	return books, err
}

// UpdateBook applies mutable fields to a book.
func (r *Repository) UpdateBook(id uint, updates map[string]any) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// DeleteBook removes a book unconditionally. Order history keeps its own
// frozen prices, so past orders are unaffected; cart and wishlist rows that
// reference the book are cleaned up with it.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Where("book_id = ?", id).Delete(&entities.WishlistItem{}).Error
	})
}
