package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookmarket/bookmarket/internal/database/catalog"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// PublishersController handles the publisher directory.
type PublishersController struct {
	catalog *catalog.Repository
}

// NewPublishersController creates a new PublishersController.
func NewPublishersController(repo *catalog.Repository) *PublishersController {
	return &PublishersController{catalog: repo}
}

type createPublisherRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// List returns all publishers with their book counts.
// GET /api/publishers
func (pc *PublishersController) List(c *gin.Context) {
	publishers, err := pc.catalog.ListPublishers()
	if err != nil {
		respondInternalError(c, err, "list publishers")
		return
	}
	c.JSON(http.StatusOK, publishers)
}

// Create adds a publisher to the directory. Admin only.
// POST /api/publishers
func (pc *PublishersController) Create(c *gin.Context) {
	var req createPublisherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	publisher := entities.Publisher{Name: req.Name, Description: req.Description}
	if err := pc.catalog.CreatePublisher(&publisher); err != nil {
		respondDomainError(c, err, "create publisher")
		return
	}
	respondCreated(c, publisher)
}
