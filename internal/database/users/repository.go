// Package users provides database operations for account management.
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// Repository handles all user database operations. Balance mutations are
// deliberately absent: they happen only inside the order settlement
// transaction in the orders package.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a user by primary key.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *Repository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. A uniqueness violation (email, username, or
// google id) is reported as database.ErrConflict so callers can retry
// username derivation without parsing driver errors.
func (r *Repository) Create(user *entities.User) error {
	err := r.db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return database.ErrConflict
	}
	return err
}

// UpdateProfile applies mutable profile fields. Username re-uniqueness is
// enforced by the index, not a pre-check.
func (r *Repository) UpdateProfile(id uint, updates map[string]any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(updates)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return database.ErrConflict
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// UpdateAvatar stores the new avatar path and returns the previous one so
// the caller can clean up the old file after the commit.
func (r *Repository) UpdateAvatar(id uint, path string) (string, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return "", err
	}
	old := user.Avatar
	if err := r.db.Model(user).Update("avatar", path).Error; err != nil {
		return "", err
	}
	return old, nil
}

// Counts returns how many books a user sells and how many orders they placed.
func (r *Repository) Counts(userID uint) (books int64, orders int64, err error) {
	if err = r.db.Model(&entities.Book{}).Where("seller_id = ?", userID).Count(&books).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.Model(&entities.Order{}).Where("user_id = ?", userID).Count(&orders).Error; err != nil {
		return 0, 0, err
	}
	return books, orders, nil
}

// UserWithCounts is the admin listing row.
type UserWithCounts struct {
	entities.User
	BookCount  int64 `json:"book_count"`
	OrderCount int64 `json:"order_count"`
}

// ListWithCounts returns all users with their book and order counts.
func (r *Repository) ListWithCounts() ([]UserWithCounts, error) {
	var rows []UserWithCounts
	err := r.db.Model(&entities.User{}).
		Select(`users.*,
			(SELECT COUNT(*) FROM books WHERE books.seller_id = users.id) AS book_count,
			(SELECT COUNT(*) FROM orders WHERE orders.user_id = users.id) AS order_count`).
		Order("users.id ASC").
		Scan(&rows).Error
	return rows, err
}
