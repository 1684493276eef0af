package http

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/database/catalog"
	"github.com/bookmarket/bookmarket/internal/entities"
	"github.com/bookmarket/bookmarket/internal/storage"
)

// homeListingSize is how many books the new/trending/discounted listings return.
const homeListingSize = 8

// BooksController handles catalog endpoints.
type BooksController struct {
	catalog *catalog.Repository
	store   *storage.Store
}

// NewBooksController creates a new BooksController.
func NewBooksController(repo *catalog.Repository, store *storage.Store) *BooksController {
	return &BooksController{catalog: repo, store: store}
}

type bookResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url,omitempty"`
	PublisherID *uint   `json:"publisher_id,omitempty"`
}

type sellerInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type bookDetailResponse struct {
	bookResponse
	Publisher *entities.Publisher `json:"publisher,omitempty"`
	Seller    sellerInfo          `json:"seller"`
}

type discountedBookResponse struct {
	bookResponse
	OriginalPrice float64 `json:"original_price"`
	Discount      int     `json:"discount"`
}

func (bc *BooksController) toResponse(book entities.Book) bookResponse {
	return bookResponse{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Price:       book.Price,
		Stock:       book.Stock,
		Category:    book.Category,
		Description: book.Description,
		ImageURL:    bc.store.URL(book.ImagePath),
		PublisherID: book.PublisherID,
	}
}

func (bc *BooksController) toResponses(books []entities.Book) []bookResponse {
	return lo.Map(books, func(book entities.Book, _ int) bookResponse {
		return bc.toResponse(book)
	})
}

// ListBooks returns the whole catalog.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	books, err := bc.catalog.ListBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, bc.toResponses(books))
}

// GetBook returns one book with its seller and publisher.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.GetBook(id)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, bookDetailResponse{
		bookResponse: bc.toResponse(*book),
		Publisher:    book.Publisher,
		Seller:       sellerInfo{ID: book.SellerID, Name: book.Seller.Name},
	})
}

// NewBooks returns the most recently listed books.
// GET /api/books/new
func (bc *BooksController) NewBooks(c *gin.Context) {
	books, err := bc.catalog.ListNewestBooks(homeListingSize)
	if err != nil {
		respondInternalError(c, err, "new books")
		return
	}
	c.JSON(http.StatusOK, bc.toResponses(books))
}

// TrendingBooks returns an arbitrary sample; no ranking is promised.
// GET /api/books/trending
func (bc *BooksController) TrendingBooks(c *gin.Context) {
	books, err := bc.catalog.ListRandomBooks(homeListingSize)
	if err != nil {
		respondInternalError(c, err, "trending books")
		return
	}
	c.JSON(http.StatusOK, bc.toResponses(books))
}

// DiscountedBooks returns an arbitrary sample with a display discount
// applied. The stored price is untouched; checkout always settles at the
// book's real price.
// GET /api/books/discounted
func (bc *BooksController) DiscountedBooks(c *gin.Context) {
	books, err := bc.catalog.ListRandomBooks(homeListingSize)
	if err != nil {
		respondInternalError(c, err, "discounted books")
		return
	}
	c.JSON(http.StatusOK, lo.Map(books, func(book entities.Book, _ int) discountedBookResponse {
		resp := bc.toResponse(book)
		resp.Price = book.Price * 0.8
		return discountedBookResponse{
			bookResponse:  resp,
			OriginalPrice: book.Price,
			Discount:      20,
		}
	}))
}

// MyBooks returns the caller's own listings.
// GET /api/my-books
func (bc *BooksController) MyBooks(c *gin.Context) {
	books, err := bc.catalog.ListBooksBySeller(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "my books")
		return
	}
	c.JSON(http.StatusOK, bc.toResponses(books))
}

// CreateBook lists a new book for sale. Multipart form: the listing fields
// plus an optional image. The image is written before the insert and
// removed again if the insert fails.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	title := c.PostForm("title")
	author := c.PostForm("author")
	if title == "" || author == "" {
		respondBadRequest(c, "title and author are required")
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price <= 0 {
		respondBadRequest(c, "price must be a positive number")
		return
	}
	stock, err := strconv.Atoi(c.PostForm("stock"))
	if err != nil || stock < 0 {
		respondBadRequest(c, "stock must be a non-negative integer")
		return
	}

	var publisherID *uint
	newPublisher := c.PostForm("new_publisher")
	if idStr := c.PostForm("publisher_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid publisher_id")
			return
		}
		uid := uint(id)
		publisherID = &uid
	} else if newPublisher == "" {
		respondBadRequest(c, "publisher_id or new_publisher is required")
		return
	}

	book := &entities.Book{
		Title:       title,
		Author:      author,
		Price:       price,
		Stock:       stock,
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		SellerID:    auth.GetUserID(c),
	}

	imagePath, ok := bc.saveImage(c, "image")
	if !ok {
		return
	}
	book.ImagePath = imagePath

	if err := bc.catalog.CreateBook(book, publisherID, newPublisher); err != nil {
		if removeErr := bc.store.Remove(imagePath); removeErr != nil {
			respondInternalError(c, removeErr, "create book cleanup")
			return
		}
		respondDomainError(c, err, "create book")
		return
	}

	respondCreated(c, bc.toResponse(*book))
}

// saveImage stores an optional uploaded image. Returns ("", true) when no
// file was sent; responds and returns false on a rejected upload.
func (bc *BooksController) saveImage(c *gin.Context, field string) (string, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", true
	}
	return bc.storeFile(c, file, "book")
}

func (bc *BooksController) storeFile(c *gin.Context, file *multipart.FileHeader, prefix string) (string, bool) {
	name, err := bc.store.SaveImage(file, prefix)
	if err != nil {
		switch err {
		case storage.ErrFileTooLarge, storage.ErrUnsupportedFormat:
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "save image")
		}
		return "", false
	}
	return name, true
}

type updateBookRequest struct {
	Title       *string  `json:"title"`
	Author      *string  `json:"author"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
}

// UpdateBook edits a listing. Only the book's seller may edit it.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.GetBook(id)
	if err != nil {
		respondDomainError(c, err, "update book")
		return
	}
	if book.SellerID != auth.GetUserID(c) {
		respondForbidden(c, "only the seller may edit this book")
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			respondBadRequest(c, "price must be a positive number")
			return
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			respondBadRequest(c, "stock must be a non-negative integer")
			return
		}
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	if err := bc.catalog.UpdateBook(id, updates); err != nil {
		respondDomainError(c, err, "update book")
		return
	}
	respondSuccess(c, "book updated")
}

// DeleteBook removes a listing. The seller or an admin may delete; order
// history is untouched because order items carry their own frozen prices.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.GetBook(id)
	if err != nil {
		respondDomainError(c, err, "delete book")
		return
	}
	if book.SellerID != auth.GetUserID(c) && auth.GetUserRole(c) != entities.UserRoleAdmin {
		respondForbidden(c, "only the seller may delete this book")
		return
	}

	if err := bc.catalog.DeleteBook(id); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}

	// Best-effort cleanup after the delete committed.
	if book.ImagePath != "" {
		_ = bc.store.Remove(book.ImagePath)
	}

	respondSuccess(c, "book deleted")
}
