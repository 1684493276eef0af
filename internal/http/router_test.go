package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/config"
	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/database/users"
	"github.com/bookmarket/bookmarket/internal/mail"
	"github.com/bookmarket/bookmarket/internal/storage"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.Service) {
	t.Helper()

	cfg := &config.Config{
		HTTP: config.HTTP{
			Mode:           gin.TestMode,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: config.Database{Path: filepath.Join(t.TempDir(), "test.db")},
		Auth: config.Auth{
			JWTSecret:   "test-secret",
			TokenExpiry: time.Hour,
			BcryptCost:  bcrypt.MinCost,
		},
		Uploads: config.Uploads{Dir: t.TempDir(), MaxBytes: 1 << 20},
		Global:  config.Global{ShutdownTimeoutInSeconds: 1},
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(cfg.Auth)
	require.NoError(t, err)

	usersRepo := users.NewRepository(db.DB)
	authService := auth.NewService(usersRepo, tokens, nil, cfg.Auth)
	guards := auth.NewMiddleware(tokens, authService)

	router := NewRouter(RouterConfig{
		Config:      cfg,
		Logger:      zap.NewNop(),
		Database:    db,
		AuthService: authService,
		Guards:      guards,
		Store:       store,
		Mailer:      mail.NewLogMailer(),
	})
	return router, authService
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func registerUser(t *testing.T, router *gin.Engine, email, name string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"name":     name,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func createTestBook(t *testing.T, router *gin.Engine, token string, title string, price float64, stock int) uint {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"title":         title,
		"author":        "Author",
		"price":         fmt.Sprintf("%g", price),
		"stock":         fmt.Sprintf("%d", stock),
		"category":      "Fiction",
		"new_publisher": "Test Press",
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(t, w)["id"].(float64))
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestAuthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("register returns a token and derived username", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
			"email":    "john.doe@example.com",
			"name":     "John Doe",
			"password": "password123",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		payload := decode(t, w)
		assert.NotEmpty(t, payload["token"])
		user := payload["user"].(map[string]any)
		assert.Equal(t, "johndoe", user["username"])
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
			"email":    "john.doe@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email_taken", decode(t, w)["error"])
	})

	t.Run("login round trip", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "john.doe@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, w.Code)
		token := decode(t, w)["token"].(string)

		w = doJSON(t, router, http.MethodGet, "/api/auth/user", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "john.doe@example.com", decode(t, w)["email"])
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "john.doe@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("google sign-in without a configured verifier", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/google", "", gin.H{"token": "any"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "google_disabled", decode(t, w)["error"])
	})

	t.Run("protected routes demand a token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/auth/user", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/auth/user", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBookEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	sellerToken := registerUser(t, router, "seller@example.com", "Seller")
	otherToken := registerUser(t, router, "other@example.com", "Other")

	bookID := createTestBook(t, router, sellerToken, "For Sale", 20, 5)

	t.Run("catalog lists the book", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/books", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var books []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
		require.Len(t, books, 1)
		assert.Equal(t, "For Sale", books[0]["title"])
	})

	t.Run("detail includes seller and publisher", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/books/%d", bookID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		payload := decode(t, w)
		seller := payload["seller"].(map[string]any)
		assert.Equal(t, "Seller", seller["name"])
		assert.NotNil(t, payload["publisher"])
	})

	t.Run("only the seller may edit", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/books/%d", bookID), otherToken, gin.H{"price": 25.0})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/books/%d", bookID), sellerToken, gin.H{"price": 25.0})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("my-books is scoped to the caller", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/my-books", otherToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var books []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
		assert.Empty(t, books)
	})

	t.Run("unknown book is 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/books/99999", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCartAndCheckout(t *testing.T) {
	router, _ := newTestRouter(t)

	sellerToken := registerUser(t, router, "seller@example.com", "Seller")
	buyerToken := registerUser(t, router, "buyer@example.com", "Buyer")

	bookID := createTestBook(t, router, sellerToken, "Checkout Me", 20, 5)

	t.Run("sellers cannot buy their own book", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/cart", sellerToken, gin.H{"book_id": bookID, "quantity": 1})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "self_purchase", decode(t, w)["error"])
	})

	t.Run("checkout with an empty cart fails", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/orders", buyerToken, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "empty_cart", decode(t, w)["error"])
	})

	t.Run("cart settles into an order", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/cart", buyerToken, gin.H{"book_id": bookID, "quantity": 2})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/orders", buyerToken, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		payload := decode(t, w)
		assert.Equal(t, 40.0, payload["total_amount"])
		assert.Equal(t, "completed", payload["status"])

		// Cart is consumed.
		w = doJSON(t, router, http.MethodGet, "/api/cart/count", buyerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, decode(t, w)["count"])

		// Proceeds land on the seller's balance.
		w = doJSON(t, router, http.MethodGet, "/api/user/info", sellerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 40.0, decode(t, w)["balance"])
	})

	t.Run("insufficient stock fails the whole checkout", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/cart", buyerToken, gin.H{"book_id": bookID, "quantity": 4})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/orders", buyerToken, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "insufficient_stock", decode(t, w)["error"])
	})

	t.Run("order history lists the purchase", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/orders", buyerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var orders []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
		require.Len(t, orders, 1)
	})
}

func TestAdminEndpoints(t *testing.T) {
	router, authService := newTestRouter(t)

	require.NoError(t, authService.SeedAdmin("admin@example.com", "admin-password"))

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "admin-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	adminToken := decode(t, w)["token"].(string)

	userToken := registerUser(t, router, "plain@example.com", "Plain")

	t.Run("admin routes reject regular users", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/admin/users", userToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin lists users with counts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/admin/users", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var rows []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		assert.Len(t, rows, 2)
	})

	t.Run("admin manages categories", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/admin/categories", adminToken, gin.H{"name": "Numismatics"})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/admin/categories", adminToken, gin.H{"name": "Numismatics"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("admin cancels an order and stock comes back", func(t *testing.T) {
		sellerToken := registerUser(t, router, "seller@example.com", "Seller")
		bookID := createTestBook(t, router, sellerToken, "Refundable", 10, 3)

		w := doJSON(t, router, http.MethodPost, "/api/cart", userToken, gin.H{"book_id": bookID, "quantity": 2})
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, router, http.MethodPost, "/api/orders", userToken, nil)
		require.Equal(t, http.StatusCreated, w.Code)
		orderID := uint(decode(t, w)["id"].(float64))

		w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/admin/orders/%d", orderID), adminToken, gin.H{"status": "cancelled"})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/books/%d", bookID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3.0, decode(t, w)["stock"])

		// Cancelled orders refuse further transitions.
		w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/admin/orders/%d", orderID), adminToken, gin.H{"status": "completed"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWishlistEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	sellerToken := registerUser(t, router, "seller@example.com", "Seller")
	userToken := registerUser(t, router, "user@example.com", "User")
	bookID := createTestBook(t, router, sellerToken, "Wishable", 5, 1)

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/wishlist/%d", bookID), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["in_wishlist"])

	w = doJSON(t, router, http.MethodGet, "/api/wishlist", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/wishlist/%d", bookID), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["in_wishlist"])
}

func TestReviewEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	sellerToken := registerUser(t, router, "seller@example.com", "Seller")
	userToken := registerUser(t, router, "user@example.com", "User")
	bookID := createTestBook(t, router, sellerToken, "Reviewable", 5, 1)

	t.Run("rating is range-checked", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/books/%d/reviews", bookID), userToken, gin.H{"rating": 6})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("resubmitting replaces the review", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/books/%d/reviews", bookID), userToken, gin.H{"rating": 5, "comment": "great"})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/books/%d/reviews", bookID), userToken, gin.H{"rating": 3, "comment": "okay"})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/books/%d/reviews", bookID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var reviews []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
		require.Len(t, reviews, 1)
		assert.Equal(t, 3.0, reviews[0]["rating"])
	})

	t.Run("only the author or an admin may delete", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/books/%d/reviews", bookID), "", nil)
		var reviews []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
		reviewID := uint(reviews[0]["id"].(float64))

		w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/reviews/%d", reviewID), sellerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/reviews/%d", reviewID), userToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
