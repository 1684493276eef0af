package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/config"
	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/database/cart"
	"github.com/bookmarket/bookmarket/internal/database/catalog"
	"github.com/bookmarket/bookmarket/internal/database/categories"
	"github.com/bookmarket/bookmarket/internal/database/orders"
	"github.com/bookmarket/bookmarket/internal/database/reviews"
	"github.com/bookmarket/bookmarket/internal/database/users"
	"github.com/bookmarket/bookmarket/internal/database/wishlist"
	"github.com/bookmarket/bookmarket/internal/mail"
	"github.com/bookmarket/bookmarket/internal/storage"
)

// RouterConfig bundles everything the router needs.
type RouterConfig struct {
	Config      *config.Config
	Logger      *zap.Logger
	Database    *database.Database
	AuthService *auth.Service
	Guards      *auth.Middleware
	Store       *storage.Store
	Mailer      mail.Mailer
}

// NewRouter builds the gin engine with all routes attached.
func NewRouter(rc RouterConfig) *gin.Engine {
	gin.SetMode(rc.Config.HTTP.Mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(rc.Logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     rc.Config.HTTP.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	db := rc.Database.DB
	usersRepo := users.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	categoriesRepo := categories.NewRepository(db)
	cartRepo := cart.NewRepository(db)
	ordersRepo := orders.NewRepository(db)
	reviewsRepo := reviews.NewRepository(db)
	wishlistRepo := wishlist.NewRepository(db)

	authController := NewAuthController(rc.AuthService, rc.Mailer)
	booksController := NewBooksController(catalogRepo, rc.Store)
	cartController := NewCartController(cartRepo, rc.Store)
	ordersController := NewOrdersController(ordersRepo)
	reviewsController := NewReviewsController(reviewsRepo)
	wishlistController := NewWishlistController(wishlistRepo, rc.Store)
	publishersController := NewPublishersController(catalogRepo)
	categoriesController := NewCategoriesController(categoriesRepo)
	usersController := NewUsersController(usersRepo, rc.Store)
	adminController := NewAdminController(usersRepo, catalogRepo, ordersRepo, rc.Store)
	healthController := NewHealthController(rc.Database)

	router.Static("/uploads", rc.Store.Dir())
	router.GET("/health", healthController.Health)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authController.Register)
			authGroup.POST("/login", authController.Login)
			authGroup.POST("/google", authController.GoogleAuth)
			authGroup.GET("/user", rc.Guards.RequireAuth(), authController.CurrentUser)
		}

		books := api.Group("/books")
		{
			books.GET("", booksController.ListBooks)
			books.GET("/new", booksController.NewBooks)
			books.GET("/trending", booksController.TrendingBooks)
			books.GET("/discounted", booksController.DiscountedBooks)
			books.GET("/:id", booksController.GetBook)
			books.GET("/:id/reviews", reviewsController.ListForBook)

			books.POST("", rc.Guards.RequireAuth(), booksController.CreateBook)
			books.PUT("/:id", rc.Guards.RequireAuth(), booksController.UpdateBook)
			books.DELETE("/:id", rc.Guards.RequireAuth(), booksController.DeleteBook)
			books.POST("/:id/reviews", rc.Guards.RequireAuth(), reviewsController.Submit)
		}

		api.GET("/my-books", rc.Guards.RequireAuth(), booksController.MyBooks)
		api.DELETE("/reviews/:id", rc.Guards.RequireAuth(), reviewsController.Delete)

		api.GET("/publishers", publishersController.List)
		api.POST("/publishers", rc.Guards.RequireAuth(), rc.Guards.RequireAdmin(), publishersController.Create)
		api.GET("/categories", categoriesController.List)

		cartGroup := api.Group("/cart", rc.Guards.RequireAuth())
		{
			cartGroup.GET("", cartController.List)
			cartGroup.POST("", cartController.Add)
			cartGroup.GET("/count", cartController.Count)
			cartGroup.PUT("/:itemId", cartController.UpdateItem)
			cartGroup.DELETE("/:itemId", cartController.RemoveItem)
		}

		ordersGroup := api.Group("/orders", rc.Guards.RequireAuth())
		{
			ordersGroup.GET("", ordersController.ListMine)
			ordersGroup.POST("", ordersController.Checkout)
		}

		wishlistGroup := api.Group("/wishlist", rc.Guards.RequireAuth())
		{
			wishlistGroup.GET("", wishlistController.List)
			wishlistGroup.POST("/:bookId", wishlistController.Toggle)
		}

		userGroup := api.Group("/user", rc.Guards.RequireAuth())
		{
			userGroup.GET("/info", usersController.Info)
			userGroup.PUT("/profile", usersController.UpdateProfile)
			userGroup.POST("/avatar", usersController.UploadAvatar)
		}

		adminGroup := api.Group("/admin", rc.Guards.RequireAuth(), rc.Guards.RequireAdmin())
		{
			adminGroup.GET("/users", adminController.ListUsers)
			adminGroup.GET("/books", adminController.ListBooks)
			adminGroup.GET("/orders", adminController.ListOrders)
			adminGroup.PUT("/orders/:id", adminController.UpdateOrderStatus)
			adminGroup.POST("/categories", categoriesController.Create)
			adminGroup.DELETE("/categories/:id", categoriesController.Delete)
		}
	}

	return router
}
