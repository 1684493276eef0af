package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/database/cart"
	"github.com/bookmarket/bookmarket/internal/entities"
	"github.com/bookmarket/bookmarket/internal/storage"
)

// CartController handles the caller's shopping cart.
type CartController struct {
	cart  *cart.Repository
	store *storage.Store
}

// NewCartController creates a new CartController.
func NewCartController(repo *cart.Repository, store *storage.Store) *CartController {
	return &CartController{cart: repo, store: store}
}

type addToCartRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type cartItemResponse struct {
	ID       uint    `json:"id"`
	BookID   uint    `json:"book_id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Quantity int     `json:"quantity"`
	ImageURL string  `json:"image_url,omitempty"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

// Add puts a book into the cart, incrementing quantity if already present.
// POST /api/cart
func (cc *CartController) Add(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	if err := cc.cart.Add(auth.GetUserID(c), req.BookID, req.Quantity); err != nil {
		respondDomainError(c, err, "add to cart")
		return
	}
	respondSuccess(c, "added to cart")
}

// List returns the cart with a running total at current book prices.
// GET /api/cart
func (cc *CartController) List(c *gin.Context) {
	items, err := cc.cart.List(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list cart")
		return
	}

	resp := cartResponse{
		Items: lo.Map(items, func(item entities.CartItem, _ int) cartItemResponse {
			return cartItemResponse{
				ID:       item.ID,
				BookID:   item.BookID,
				Title:    item.Book.Title,
				Author:   item.Book.Author,
				Price:    item.Book.Price,
				Stock:    item.Book.Stock,
				Quantity: item.Quantity,
				ImageURL: cc.store.URL(item.Book.ImagePath),
			}
		}),
	}
	for _, item := range items {
		resp.Total += item.Book.Price * float64(item.Quantity)
	}

	c.JSON(http.StatusOK, resp)
}

// Count returns the number of cart rows, for the header badge.
// GET /api/cart/count
func (cc *CartController) Count(c *gin.Context) {
	count, err := cc.cart.Count(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "count cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// UpdateItem sets a cart row's quantity.
// PUT /api/cart/:itemId
func (cc *CartController) UpdateItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "quantity must be a positive integer")
		return
	}

	if err := cc.cart.UpdateQuantity(auth.GetUserID(c), itemID, req.Quantity); err != nil {
		respondDomainError(c, err, "update cart item")
		return
	}
	respondSuccess(c, "cart updated")
}

// RemoveItem deletes a cart row.
// DELETE /api/cart/:itemId
func (cc *CartController) RemoveItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	if err := cc.cart.Remove(auth.GetUserID(c), itemID); err != nil {
		respondDomainError(c, err, "remove cart item")
		return
	}
	respondSuccess(c, "removed from cart")
}
