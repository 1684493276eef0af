package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/bookmarket/bookmarket/internal/database/catalog"
	"github.com/bookmarket/bookmarket/internal/database/orders"
	"github.com/bookmarket/bookmarket/internal/database/users"
	"github.com/bookmarket/bookmarket/internal/entities"
	"github.com/bookmarket/bookmarket/internal/storage"
)

// AdminController backs the admin panel. Every route is behind RequireAdmin.
type AdminController struct {
	users   *users.Repository
	catalog *catalog.Repository
	orders  *orders.Repository
	store   *storage.Store
}

// NewAdminController creates a new AdminController.
func NewAdminController(usersRepo *users.Repository, catalogRepo *catalog.Repository, ordersRepo *orders.Repository, store *storage.Store) *AdminController {
	return &AdminController{users: usersRepo, catalog: catalogRepo, orders: ordersRepo, store: store}
}

type adminUserResponse struct {
	ID         uint              `json:"id"`
	Email      string            `json:"email"`
	Username   string            `json:"username"`
	Name       string            `json:"name"`
	Role       entities.UserRole `json:"role"`
	Balance    float64           `json:"balance"`
	BookCount  int64             `json:"book_count"`
	OrderCount int64             `json:"order_count"`
}

type adminBookResponse struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Category  string  `json:"category"`
	ImageURL  string  `json:"image_url,omitempty"`
	Seller    string  `json:"seller"`
	Publisher string  `json:"publisher,omitempty"`
}

type adminOrderResponse struct {
	ID          uint                 `json:"id"`
	Buyer       string               `json:"buyer"`
	Status      entities.OrderStatus `json:"status"`
	TotalAmount float64              `json:"total_amount"`
	ItemCount   int                  `json:"item_count"`
	CreatedAt   time.Time            `json:"created_at"`
}

type updateOrderStatusRequest struct {
	Status entities.OrderStatus `json:"status" binding:"required"`
}

// ListUsers returns all accounts with activity counts.
// GET /api/admin/users
func (ac *AdminController) ListUsers(c *gin.Context) {
	rows, err := ac.users.ListWithCounts()
	if err != nil {
		respondInternalError(c, err, "admin list users")
		return
	}
	c.JSON(http.StatusOK, lo.Map(rows, func(row users.UserWithCounts, _ int) adminUserResponse {
		return adminUserResponse{
			ID:         row.ID,
			Email:      row.Email,
			Username:   row.Username,
			Name:       row.Name,
			Role:       row.Role,
			Balance:    row.Balance,
			BookCount:  row.BookCount,
			OrderCount: row.OrderCount,
		}
	}))
}

// ListBooks returns the full catalog with sellers and publishers.
// GET /api/admin/books
func (ac *AdminController) ListBooks(c *gin.Context) {
	books, err := ac.catalog.ListBooksAdmin()
	if err != nil {
		respondInternalError(c, err, "admin list books")
		return
	}
	c.JSON(http.StatusOK, lo.Map(books, func(book entities.Book, _ int) adminBookResponse {
		resp := adminBookResponse{
			ID:       book.ID,
			Title:    book.Title,
			Author:   book.Author,
			Price:    book.Price,
			Stock:    book.Stock,
			Category: book.Category,
			ImageURL: ac.store.URL(book.ImagePath),
			Seller:   book.Seller.Username,
		}
		if book.Publisher != nil {
			resp.Publisher = book.Publisher.Name
		}
		return resp
	}))
}

// ListOrders returns every order with its buyer.
// GET /api/admin/orders
func (ac *AdminController) ListOrders(c *gin.Context) {
	allOrders, err := ac.orders.ListAll()
	if err != nil {
		respondInternalError(c, err, "admin list orders")
		return
	}
	c.JSON(http.StatusOK, lo.Map(allOrders, func(order entities.Order, _ int) adminOrderResponse {
		return adminOrderResponse{
			ID:          order.ID,
			Buyer:       order.User.Username,
			Status:      order.Status,
			TotalAmount: order.TotalAmount,
			ItemCount:   len(order.Items),
			CreatedAt:   order.CreatedAt,
		}
	}))
}

// UpdateOrderStatus transitions an order. Cancelling a completed order
// restores stock and claws back seller balances.
// PUT /api/admin/orders/:id
func (ac *AdminController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	switch req.Status {
	case entities.OrderStatusPending, entities.OrderStatusCompleted, entities.OrderStatusCancelled:
	default:
		respondBadRequest(c, "unknown order status")
		return
	}

	if err := ac.orders.UpdateStatus(id, req.Status); err != nil {
		respondDomainError(c, err, "update order status")
		return
	}
	respondSuccess(c, "order status updated")
}
