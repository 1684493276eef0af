package entities

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is a buyer, seller, or administrator. Every account can list books;
// Balance accumulates sale proceeds credited at order settlement.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string    `gorm:"size:200" json:"-"` // empty for external-identity accounts
	Name         string    `gorm:"size:100" json:"name"`
	GoogleID     *string   `gorm:"uniqueIndex;size:100" json:"-"`
	Role         UserRole  `gorm:"size:20;default:user" json:"role"`
	Balance      float64   `gorm:"default:0" json:"balance"`
	Avatar       string    `gorm:"size:255" json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
