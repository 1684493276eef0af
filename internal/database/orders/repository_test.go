package orders

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, cleanup
}

func createUser(t *testing.T, db *gorm.DB, email, username string) *entities.User {
	t.Helper()
	user := &entities.User{Email: email, Username: username, Name: username}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createBook(t *testing.T, db *gorm.DB, sellerID uint, title string, price float64, stock int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:    title,
		Author:   "Author",
		Price:    price,
		Stock:    stock,
		SellerID: sellerID,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func addToCart(t *testing.T, db *gorm.DB, userID, bookID uint, quantity int) {
	t.Helper()
	require.NoError(t, db.Create(&entities.CartItem{
		UserID:   userID,
		BookID:   bookID,
		Quantity: quantity,
	}).Error)
}

func TestCheckout(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	seller := createUser(t, db, "seller@example.com", "seller")
	buyer := createUser(t, db, "buyer@example.com", "buyer")
	book := createBook(t, db, seller.ID, "The Trial", 20.0, 5)

	t.Run("settles cart into a completed order", func(t *testing.T) {
		addToCart(t, db, buyer.ID, book.ID, 2)

		order, err := repo.Checkout(buyer.ID)
		require.NoError(t, err)

		assert.Equal(t, entities.OrderStatusCompleted, order.Status)
		assert.Equal(t, 40.0, order.TotalAmount)

		var updatedBook entities.Book
		require.NoError(t, db.First(&updatedBook, book.ID).Error)
		assert.Equal(t, 3, updatedBook.Stock)

		var updatedSeller entities.User
		require.NoError(t, db.First(&updatedSeller, seller.ID).Error)
		assert.Equal(t, 40.0, updatedSeller.Balance)

		var cartCount int64
		require.NoError(t, db.Model(&entities.CartItem{}).Where("user_id = ?", buyer.ID).Count(&cartCount).Error)
		assert.Zero(t, cartCount)

		var items []entities.OrderItem
		require.NoError(t, db.Where("order_id = ?", order.ID).Find(&items).Error)
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
		assert.Equal(t, 20.0, items[0].Price)
	})

	t.Run("fails entirely when stock is insufficient", func(t *testing.T) {
		addToCart(t, db, buyer.ID, book.ID, 4) // only 3 left

		_, err := repo.Checkout(buyer.ID)
		require.Error(t, err)

		var stockErr *database.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, book.ID, stockErr.BookID)
		assert.Equal(t, 3, stockErr.Available)

		// Nothing moved: stock, balance, and order count are untouched.
		var updatedBook entities.Book
		require.NoError(t, db.First(&updatedBook, book.ID).Error)
		assert.Equal(t, 3, updatedBook.Stock)

		var updatedSeller entities.User
		require.NoError(t, db.First(&updatedSeller, seller.ID).Error)
		assert.Equal(t, 40.0, updatedSeller.Balance)

		var orderCount int64
		require.NoError(t, db.Model(&entities.Order{}).Count(&orderCount).Error)
		assert.Equal(t, int64(1), orderCount)

		// The failed cart stays for the user to fix.
		var cartCount int64
		require.NoError(t, db.Model(&entities.CartItem{}).Where("user_id = ?", buyer.ID).Count(&cartCount).Error)
		assert.Equal(t, int64(1), cartCount)
	})
}

func TestCheckoutEmptyCart(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	buyer := createUser(t, db, "buyer@example.com", "buyer")

	_, err := repo.Checkout(buyer.ID)
	assert.ErrorIs(t, err, database.ErrEmptyCart)
}

func TestCheckoutAllOrNothing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	seller := createUser(t, db, "seller@example.com", "seller")
	buyer := createUser(t, db, "buyer@example.com", "buyer")
	inStock := createBook(t, db, seller.ID, "Available", 10.0, 10)
	outOfStock := createBook(t, db, seller.ID, "Scarce", 15.0, 1)

	addToCart(t, db, buyer.ID, inStock.ID, 2)
	addToCart(t, db, buyer.ID, outOfStock.ID, 3)

	_, err := repo.Checkout(buyer.ID)
	var stockErr *database.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, outOfStock.ID, stockErr.BookID)

	// The in-stock line rolled back with the rest.
	var book entities.Book
	require.NoError(t, db.First(&book, inStock.ID).Error)
	assert.Equal(t, 10, book.Stock)

	var updatedSeller entities.User
	require.NoError(t, db.First(&updatedSeller, seller.ID).Error)
	assert.Zero(t, updatedSeller.Balance)
}

func TestCheckoutFreezesPrices(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	seller := createUser(t, db, "seller@example.com", "seller")
	buyer := createUser(t, db, "buyer@example.com", "buyer")
	book := createBook(t, db, seller.ID, "Repriced", 30.0, 5)

	addToCart(t, db, buyer.ID, book.ID, 1)
	order, err := repo.Checkout(buyer.ID)
	require.NoError(t, err)

	// A later price change must not rewrite history.
	require.NoError(t, db.Model(&entities.Book{}).Where("id = ?", book.ID).Update("price", 99.0).Error)

	orders, err := repo.ListForUser(buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 30.0, orders[0].Items[0].Price)
	assert.Equal(t, 30.0, order.TotalAmount)
}

func TestUpdateStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	seller := createUser(t, db, "seller@example.com", "seller")
	buyer := createUser(t, db, "buyer@example.com", "buyer")
	book := createBook(t, db, seller.ID, "Returnable", 25.0, 4)

	addToCart(t, db, buyer.ID, book.ID, 2)
	order, err := repo.Checkout(buyer.ID)
	require.NoError(t, err)

	t.Run("cancellation reverses stock and balances", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus(order.ID, entities.OrderStatusCancelled))

		var updatedBook entities.Book
		require.NoError(t, db.First(&updatedBook, book.ID).Error)
		assert.Equal(t, 4, updatedBook.Stock)

		var updatedSeller entities.User
		require.NoError(t, db.First(&updatedSeller, seller.ID).Error)
		assert.Zero(t, updatedSeller.Balance)

		var reloaded entities.Order
		require.NoError(t, db.First(&reloaded, order.ID).Error)
		assert.Equal(t, entities.OrderStatusCancelled, reloaded.Status)
	})

	t.Run("cancelled orders are terminal", func(t *testing.T) {
		err := repo.UpdateStatus(order.ID, entities.OrderStatusCompleted)
		assert.ErrorIs(t, err, ErrCancelledImmutable)
	})

	t.Run("unknown order", func(t *testing.T) {
		err := repo.UpdateStatus(99999, entities.OrderStatusPending)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestCancellationAfterPendingDetour(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	seller := createUser(t, db, "seller@example.com", "seller")
	buyer := createUser(t, db, "buyer@example.com", "buyer")
	book := createBook(t, db, seller.ID, "Detoured", 25.0, 4)

	addToCart(t, db, buyer.ID, book.ID, 2)
	order, err := repo.Checkout(buyer.ID)
	require.NoError(t, err)

	// Relabelling does not unsettle the order; cancelling from pending
	// must reverse the settlement all the same.
	require.NoError(t, repo.UpdateStatus(order.ID, entities.OrderStatusPending))
	require.NoError(t, repo.UpdateStatus(order.ID, entities.OrderStatusCancelled))

	var updatedBook entities.Book
	require.NoError(t, db.First(&updatedBook, book.ID).Error)
	assert.Equal(t, 4, updatedBook.Stock)

	var updatedSeller entities.User
	require.NoError(t, db.First(&updatedSeller, seller.ID).Error)
	assert.Zero(t, updatedSeller.Balance)
}

func TestCancellationSkipsDeletedBooks(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	seller := createUser(t, db, "seller@example.com", "seller")
	buyer := createUser(t, db, "buyer@example.com", "buyer")
	book := createBook(t, db, seller.ID, "Ephemeral", 12.0, 3)

	addToCart(t, db, buyer.ID, book.ID, 1)
	order, err := repo.Checkout(buyer.ID)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&entities.Book{}, book.ID).Error)

	// The book row is gone, so the line is skipped and the seller
	// keeps the proceeds.
	require.NoError(t, repo.UpdateStatus(order.ID, entities.OrderStatusCancelled))

	var updatedSeller entities.User
	require.NoError(t, db.First(&updatedSeller, seller.ID).Error)
	assert.Equal(t, 12.0, updatedSeller.Balance)
}

func TestListForUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	seller := createUser(t, db, "seller@example.com", "seller")
	buyer := createUser(t, db, "buyer@example.com", "buyer")
	other := createUser(t, db, "other@example.com", "other")
	book := createBook(t, db, seller.ID, "Shared", 5.0, 100)

	addToCart(t, db, buyer.ID, book.ID, 1)
	_, err := repo.Checkout(buyer.ID)
	require.NoError(t, err)

	addToCart(t, db, other.ID, book.ID, 2)
	_, err = repo.Checkout(other.ID)
	require.NoError(t, err)

	orders, err := repo.ListForUser(buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, buyer.ID, orders[0].UserID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Shared", orders[0].Items[0].Book.Title)

	all, err := repo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
