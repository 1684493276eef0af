package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookmarket/bookmarket/internal/database/categories"
	"github.com/bookmarket/bookmarket/internal/entities"
)

// CategoriesController handles the category list.
type CategoriesController struct {
	categories *categories.Repository
}

// NewCategoriesController creates a new CategoriesController.
func NewCategoriesController(repo *categories.Repository) *CategoriesController {
	return &CategoriesController{categories: repo}
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// List returns all categories.
// GET /api/categories
func (cc *CategoriesController) List(c *gin.Context) {
	list, err := cc.categories.List()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create adds a category. Admin only.
// POST /api/admin/categories
func (cc *CategoriesController) Create(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	category := entities.Category{Name: req.Name}
	if err := cc.categories.Create(&category); err != nil {
		respondDomainError(c, err, "create category")
		return
	}
	respondCreated(c, category)
}

// Delete removes a category. Admin only.
// DELETE /api/admin/categories/:id
func (cc *CategoriesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := cc.categories.Delete(id); err != nil {
		respondDomainError(c, err, "delete category")
		return
	}
	respondSuccess(c, "category deleted")
}
