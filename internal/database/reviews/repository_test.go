package reviews

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

func TestUpsert(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	reviewer := &entities.User{Email: "r@example.com", Username: "reviewer"}
	require.NoError(t, db.Create(reviewer).Error)
	book := &entities.Book{Title: "Reviewed", Author: "A", Price: 1, Stock: 1, SellerID: reviewer.ID}
	require.NoError(t, db.Create(book).Error)

	t.Run("creates a review", func(t *testing.T) {
		review, err := repo.Upsert(reviewer.ID, book.ID, 4, "solid")
		require.NoError(t, err)
		assert.Equal(t, 4, review.Rating)
	})

	t.Run("resubmission overwrites, never duplicates", func(t *testing.T) {
		review, err := repo.Upsert(reviewer.ID, book.ID, 2, "changed my mind")
		require.NoError(t, err)
		assert.Equal(t, 2, review.Rating)
		assert.Equal(t, "changed my mind", review.Comment)

		var count int64
		require.NoError(t, db.Model(&entities.Review{}).
			Where("user_id = ? AND book_id = ?", reviewer.ID, book.ID).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestListForBook(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	first := &entities.User{Email: "a@example.com", Username: "a"}
	second := &entities.User{Email: "b@example.com", Username: "b"}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)
	book := &entities.Book{Title: "Popular", Author: "A", Price: 1, Stock: 1, SellerID: first.ID}
	require.NoError(t, db.Create(book).Error)

	_, err := repo.Upsert(first.ID, book.ID, 5, "great")
	require.NoError(t, err)
	_, err = repo.Upsert(second.ID, book.ID, 3, "fine")
	require.NoError(t, err)

	reviews, err := repo.ListForBook(book.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.NotEmpty(t, reviews[0].User.Username)
}

func TestDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	reviewer := &entities.User{Email: "r@example.com", Username: "r"}
	require.NoError(t, db.Create(reviewer).Error)
	book := &entities.Book{Title: "Fleeting", Author: "A", Price: 1, Stock: 1, SellerID: reviewer.ID}
	require.NoError(t, db.Create(book).Error)

	review, err := repo.Upsert(reviewer.ID, book.ID, 1, "gone soon")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(review.ID))

	_, err = repo.Get(review.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	err = repo.Delete(review.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
