// Package cart provides database operations for the per-user shopping cart.
package cart

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// Repository handles all cart database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new cart repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add puts quantity of a book into the user's cart. Adding a book the user
// sells themselves is refused. An existing (user, book) row is incremented
// instead of duplicated. Stock is not checked here: availability is only
// enforced at settlement.
func (r *Repository) Add(userID, bookID uint, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.ErrNotFound
		}
		return err
	}
	if book.SellerID == userID {
		return database.ErrSelfPurchase
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var item entities.CartItem
		err := tx.Where("user_id = ? AND book_id = ?", userID, bookID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&entities.CartItem{
				UserID:   userID,
				BookID:   bookID,
				Quantity: quantity,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&item).Update("quantity", item.Quantity+quantity).Error
	})
}

// List returns the user's cart rows with their books joined in.
func (r *Repository) List(userID uint) ([]entities.CartItem, error) {
	var items []entities.CartItem
	err := r.db.Preload("Book").Where("user_id = ?", userID).Order("id ASC").Find(&items).Error
	return items, err
}

// Count returns the number of cart rows for a user.
func (r *Repository) Count(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.CartItem{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Remove deletes a cart row. Rows belonging to other users are reported as
// not found, never as forbidden, to avoid leaking row existence.
func (r *Repository) Remove(userID, itemID uint) error {
	result := r.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&entities.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// UpdateQuantity sets the quantity of a cart row. Unlike Add, this checks
// the book's current stock so a cart cannot be inflated past availability.
func (r *Repository) UpdateQuantity(userID, itemID uint, quantity int) error {
	var item entities.CartItem
	err := r.db.Preload("Book").Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.ErrNotFound
		}
		return err
	}

	if quantity > item.Book.Stock {
		return &database.InsufficientStockError{
			BookID:    item.BookID,
			Title:     item.Book.Title,
			Available: item.Book.Stock,
		}
	}

	return r.db.Model(&item).Update("quantity", quantity).Error
}
