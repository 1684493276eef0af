package entities

import "time"

type Publisher struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:200" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Book is a catalog listing. SellerID is set at creation and owns the
// listing; PublisherID is optional. Relations are plain foreign keys with
// forward belongs-to references only, no back-reference graphs.
type Book struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"index;size:200" json:"title"`
	Author      string     `gorm:"size:100" json:"author"`
	Price       float64    `gorm:"not null" json:"price"`
	Stock       int        `gorm:"not null" json:"stock"`
	Category    string     `gorm:"index;size:100" json:"category"`
	Description string     `gorm:"type:text" json:"description"`
	ImagePath   string     `gorm:"size:500" json:"-"`
	PublisherID *uint      `gorm:"index" json:"publisher_id,omitempty"`
	Publisher   *Publisher `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	SellerID    uint       `gorm:"index;not null" json:"seller_id"`
	Seller      User       `gorm:"foreignKey:SellerID" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Category rows back the free-form Book.Category tags so the list survives
// restarts and is editable like every other entity.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
