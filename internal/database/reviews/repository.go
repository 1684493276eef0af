// Package reviews provides database operations for book reviews.
package reviews

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// Repository handles all review database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a user's review of a book: an existing (user, book) row is
// overwritten, otherwise one is inserted. The unique index keeps a racing
// double-submit from creating a second row.
func (r *Repository) Upsert(userID, bookID uint, rating int, comment string) (*entities.Review, error) {
	var review entities.Review
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND book_id = ?", userID, bookID).First(&review).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			review = entities.Review{
				UserID:  userID,
				BookID:  bookID,
				Rating:  rating,
				Comment: comment,
			}
			return tx.Create(&review).Error
		}
		if err != nil {
			return err
		}
		review.Rating = rating
		review.Comment = comment
		return tx.Model(&review).Updates(map[string]any{
			"rating":  rating,
			"comment": comment,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListForBook returns all reviews of a book with reviewer info, newest first.
func (r *Repository) ListForBook(bookID uint) ([]entities.Review, error) {
	var reviews []entities.Review
	err := r.db.Preload("User").
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// Get retrieves a single review.
func (r *Repository) Get(id uint) (*entities.Review, error) {
	var review entities.Review
	err := r.db.First(&review, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// Delete removes a review.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
