package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/database/orders"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// OrdersController handles checkout and order history.
type OrdersController struct {
	orders *orders.Repository
}

// NewOrdersController creates a new OrdersController.
func NewOrdersController(repo *orders.Repository) *OrdersController {
	return &OrdersController{orders: repo}
}

type orderItemResponse struct {
	BookID   uint    `json:"book_id"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type orderResponse struct {
	ID          uint                 `json:"id"`
	Status      entities.OrderStatus `json:"status"`
	TotalAmount float64              `json:"total_amount"`
	CreatedAt   time.Time            `json:"created_at"`
	Items       []orderItemResponse  `json:"items"`
}

func toOrderResponse(order entities.Order) orderResponse {
	return orderResponse{
		ID:          order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
		Items: lo.Map(order.Items, func(item entities.OrderItem, _ int) orderItemResponse {
			return orderItemResponse{
				BookID:   item.BookID,
				Title:    item.Book.Title,
				Quantity: item.Quantity,
				Price:    item.Price,
			}
		}),
	}
}

// Checkout settles the caller's cart into a completed order. All-or-nothing:
// one out-of-stock line fails the whole purchase.
// POST /api/orders
func (oc *OrdersController) Checkout(c *gin.Context) {
	order, err := oc.orders.Checkout(auth.GetUserID(c))
	if err != nil {
		respondDomainError(c, err, "checkout")
		return
	}
	respondCreated(c, toOrderResponse(*order))
}

// ListMine returns the caller's order history, newest first.
// GET /api/orders
func (oc *OrdersController) ListMine(c *gin.Context) {
	userOrders, err := oc.orders.ListForUser(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, lo.Map(userOrders, func(order entities.Order, _ int) orderResponse {
		return toOrderResponse(order)
	}))
}
