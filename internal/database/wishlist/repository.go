// Package wishlist provides database operations for per-user wishlists.
package wishlist

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// Repository handles all wishlist database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new wishlist repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Toggle flips wishlist membership for (user, book) and reports the
// resulting state: true when the entry was added, false when removed.
func (r *Repository) Toggle(userID, bookID uint) (added bool, err error) {
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, database.ErrNotFound
		}
		return false, err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		var item entities.WishlistItem
		findErr := tx.Where("user_id = ? AND book_id = ?", userID, bookID).First(&item).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			added = true
			return tx.Create(&entities.WishlistItem{UserID: userID, BookID: bookID}).Error
		}
		if findErr != nil {
			return findErr
		}
		added = false
		return tx.Delete(&item).Error
	})
	return added, err
}

// List returns the user's wishlist with the books joined in.
func (r *Repository) List(userID uint) ([]entities.WishlistItem, error) {
	var items []entities.WishlistItem
	err := r.db.Preload("Book").Where("user_id = ?", userID).Order("id ASC").Find(&items).Error
	return items, err
}
