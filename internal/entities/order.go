package entities

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the immutable record of a settled cart. Only Status may change
// after creation, and only through the admin status transition.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	TotalAmount float64     `gorm:"not null" json:"total_amount"`
	Status      OrderStatus `gorm:"size:50;default:pending" json:"status"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// OrderItem freezes the unit price at settlement time. Price must never be
// recomputed from the book's current price.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	OrderID  uint    `gorm:"index;not null" json:"order_id"`
	BookID   uint    `gorm:"index;not null" json:"book_id"`
	Book     Book    `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Quantity int     `gorm:"not null" json:"quantity"`
	Price    float64 `gorm:"not null" json:"price"`
}
