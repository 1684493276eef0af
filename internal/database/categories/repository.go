// Package categories provides database operations for the category list.
package categories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// Repository handles category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all categories in name order.
func (r *Repository) List() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// Create inserts a category; duplicate names are rejected.
func (r *Repository) Create(category *entities.Category) error {
	err := r.db.Create(category).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return database.ErrConflict
	}
	return err
}

// Delete removes a category. Books keep their free-form category tag even
// if the backing row goes away.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
