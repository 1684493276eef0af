package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/database/wishlist"
	"github.com/bookmarket/bookmarket/internal/entities"
	"github.com/bookmarket/bookmarket/internal/storage"
)

// WishlistController handles per-user wishlists.
type WishlistController struct {
	wishlist *wishlist.Repository
	store    *storage.Store
}

// NewWishlistController creates a new WishlistController.
func NewWishlistController(repo *wishlist.Repository, store *storage.Store) *WishlistController {
	return &WishlistController{wishlist: repo, store: store}
}

type wishlistItemResponse struct {
	ID       uint    `json:"id"`
	BookID   uint    `json:"book_id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL string  `json:"image_url,omitempty"`
}

// Toggle flips wishlist membership for a book and reports the new state.
// POST /api/wishlist/:bookId
func (wc *WishlistController) Toggle(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	added, err := wc.wishlist.Toggle(auth.GetUserID(c), bookID)
	if err != nil {
		respondDomainError(c, err, "toggle wishlist")
		return
	}

	message := "removed from wishlist"
	if added {
		message = "added to wishlist"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "in_wishlist": added})
}

// List returns the caller's wishlist.
// GET /api/wishlist
func (wc *WishlistController) List(c *gin.Context) {
	items, err := wc.wishlist.List(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list wishlist")
		return
	}
	c.JSON(http.StatusOK, lo.Map(items, func(item entities.WishlistItem, _ int) wishlistItemResponse {
		return wishlistItemResponse{
			ID:       item.ID,
			BookID:   item.BookID,
			Title:    item.Book.Title,
			Author:   item.Book.Author,
			Price:    item.Book.Price,
			Stock:    item.Book.Stock,
			ImageURL: wc.store.URL(item.Book.ImagePath),
		}
	}))
}
