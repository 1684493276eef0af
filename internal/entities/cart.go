package entities

import "time"

// CartItem is a pending purchase line. At most one row exists per
// (user, book) pair; adding the same book again increments Quantity.
// Rows are deleted on checkout or explicit removal.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_cart_user_book;not null" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_cart_user_book;not null" json:"book_id"`
	Book      Book      `gorm:"foreignKey:BookID" json:"book"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
