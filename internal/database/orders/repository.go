// Package orders implements order settlement: the one code path that
// mutates inventory and seller balances together.
package orders

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// ErrCancelledImmutable is returned when an admin tries to move an order
// out of the cancelled state. Cancellation reverses stock and balances, and
// there is no re-apply path.
var ErrCancelledImmutable = errors.New("cancelled orders cannot change status")

// Repository handles order settlement and order queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new orders repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Checkout converts the user's cart into a completed order inside a single
// transaction: per line it decrements stock, freezes the unit price, and
// credits the seller's balance; the cart rows are consumed at the end.
// Any failure rolls the whole operation back.
//
// The stock decrement is guarded (stock >= quantity in the UPDATE itself),
// so concurrent checkouts touching the same book serialize on the row and
// stock can never go negative under race.
func (r *Repository) Checkout(userID uint) (*entities.Order, error) {
	var order entities.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var items []entities.CartItem
		if err := tx.Preload("Book").Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return database.ErrEmptyCart
		}

		order = entities.Order{UserID: userID, Status: entities.OrderStatusCompleted}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, item := range items {
			result := tx.Model(&entities.Book{}).
				Where("id = ? AND stock >= ?", item.BookID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Re-read inside the transaction so the reported
				// availability is current, not the preloaded value.
				var book entities.Book
				if err := tx.Select("title", "stock").First(&book, item.BookID).Error; err != nil {
					return err
				}
				return &database.InsufficientStockError{
					BookID:    item.BookID,
					Title:     book.Title,
					Available: book.Stock,
				}
			}

			lineTotal := item.Book.Price * float64(item.Quantity)
			orderItem := entities.OrderItem{
				OrderID:  order.ID,
				BookID:   item.BookID,
				Quantity: item.Quantity,
				Price:    item.Book.Price,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}

			if err := tx.Model(&entities.User{}).
				Where("id = ?", item.Book.SellerID).
				UpdateColumn("balance", gorm.Expr("balance + ?", lineTotal)).Error; err != nil {
				return err
			}

			total += lineTotal
		}

		if err := tx.Model(&order).Update("total_amount", total).Error; err != nil {
			return err
		}
		order.TotalAmount = total

		return tx.Where("user_id = ?", userID).Delete(&entities.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForUser returns a user's orders, newest first, with their items and
// the referenced books.
func (r *Repository) ListForUser(userID uint) ([]entities.Order, error) {
	var orders []entities.Order
	err := r.db.Preload("Items").Preload("Items.Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// ListAll returns every order with its buyer, for the admin panel.
func (r *Repository) ListAll() ([]entities.Order, error) {
	var orders []entities.Order
	err := r.db.Preload("User").Preload("Items").Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// UpdateStatus performs an admin status transition. Cancelling reverses the
// order's effects in the same transaction: stock is restored and each
// seller's balance is debited by exactly what settlement credited. Every
// order is settled at creation and a label change does not unsettle it, so
// the reversal runs on any transition into cancelled, whatever status the
// order carries at the time. Balances only ever accumulate sale proceeds,
// so the debit cannot push a balance negative. A cancelled order cannot
// change status again.
func (r *Repository) UpdateStatus(orderID uint, status entities.OrderStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order entities.Order
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return database.ErrNotFound
			}
			return err
		}

		if order.Status == status {
			return nil
		}
		if order.Status == entities.OrderStatusCancelled {
			return ErrCancelledImmutable
		}

		if status == entities.OrderStatusCancelled {
			if err := reverseSettlement(tx, order); err != nil {
				return err
			}
		}

		return tx.Model(&order).Update("status", status).Error
	})
}

// reverseSettlement undoes the inventory and balance effects of a completed
// order. Books deleted since the purchase are skipped: their stock row is
// gone and the frozen order items remain the historical record.
func reverseSettlement(tx *gorm.DB, order entities.Order) error {
	for _, item := range order.Items {
		var book entities.Book
		err := tx.First(&book, item.BookID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&book).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return err
		}

		lineTotal := item.Price * float64(item.Quantity)
		if err := tx.Model(&entities.User{}).
			Where("id = ?", book.SellerID).
			UpdateColumn("balance", gorm.Expr("balance - ?", lineTotal)).Error; err != nil {
			return err
		}
	}
	return nil
}
