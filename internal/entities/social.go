package entities

import "time"

// Review holds a rating and comment for a book. One row per (user, book)
// pair with upsert semantics.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_review_user_book;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	BookID    uint      `gorm:"uniqueIndex:idx_review_user_book;not null" json:"book_id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WishlistItem marks a book a user wants. Membership is toggled: the same
// endpoint adds on absence and removes on presence.
type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_wishlist_user_book;not null" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_wishlist_user_book;not null" json:"book_id"`
	Book      Book      `gorm:"foreignKey:BookID" json:"book"`
	CreatedAt time.Time `json:"created_at"`
}
