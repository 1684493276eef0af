package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/database/reviews"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// ReviewsController handles book reviews.
type ReviewsController struct {
	reviews *reviews.Repository
}

// NewReviewsController creates a new ReviewsController.
func NewReviewsController(repo *reviews.Repository) *ReviewsController {
	return &ReviewsController{reviews: repo}
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        uint      `json:"id"`
	BookID    uint      `json:"book_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func toReviewResponse(review entities.Review) reviewResponse {
	return reviewResponse{
		ID:        review.ID,
		BookID:    review.BookID,
		UserID:    review.UserID,
		Username:  review.User.Username,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

// Submit writes the caller's review of a book. One review per user per
// book: a resubmission overwrites the earlier one.
// POST /api/books/:id/reviews
func (rc *ReviewsController) Submit(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "rating must be between 1 and 5")
		return
	}

	review, err := rc.reviews.Upsert(auth.GetUserID(c), bookID, req.Rating, req.Comment)
	if err != nil {
		respondDomainError(c, err, "submit review")
		return
	}
	respondCreated(c, toReviewResponse(*review))
}

// ListForBook returns a book's reviews, newest first.
// GET /api/books/:id/reviews
func (rc *ReviewsController) ListForBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bookReviews, err := rc.reviews.ListForBook(bookID)
	if err != nil {
		respondInternalError(c, err, "list reviews")
		return
	}
	c.JSON(http.StatusOK, lo.Map(bookReviews, func(review entities.Review, _ int) reviewResponse {
		return toReviewResponse(review)
	}))
}

// Delete removes a review. The author or an admin may delete it.
// DELETE /api/reviews/:id
func (rc *ReviewsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	review, err := rc.reviews.Get(id)
	if err != nil {
		respondDomainError(c, err, "delete review")
		return
	}
	if review.UserID != auth.GetUserID(c) && auth.GetUserRole(c) != entities.UserRoleAdmin {
		respondForbidden(c, "only the author may delete this review")
		return
	}

	if err := rc.reviews.Delete(id); err != nil {
		respondDomainError(c, err, "delete review")
		return
	}
	respondSuccess(c, "review deleted")
}
