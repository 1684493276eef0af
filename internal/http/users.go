package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/database/users"
	"github.com/bookmarket/bookmarket/internal/entities"
	"github.com/bookmarket/bookmarket/internal/storage"
)

// UsersController handles the caller's own profile.
type UsersController struct {
	users *users.Repository
	store *storage.Store
}

// NewUsersController creates a new UsersController.
func NewUsersController(repo *users.Repository, store *storage.Store) *UsersController {
	return &UsersController{users: repo, store: store}
}

type userInfoResponse struct {
	ID         uint              `json:"id"`
	Email      string            `json:"email"`
	Username   string            `json:"username"`
	Name       string            `json:"name"`
	Role       entities.UserRole `json:"role"`
	Balance    float64           `json:"balance"`
	AvatarURL  string            `json:"avatar_url,omitempty"`
	BookCount  int64             `json:"book_count"`
	OrderCount int64             `json:"order_count"`
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
}

// Info returns the caller's profile with balance and activity counts.
// GET /api/user/info
func (uc *UsersController) Info(c *gin.Context) {
	userID := auth.GetUserID(c)

	user, err := uc.users.GetByID(userID)
	if err != nil {
		respondDomainError(c, err, "user info")
		return
	}
	bookCount, orderCount, err := uc.users.Counts(userID)
	if err != nil {
		respondInternalError(c, err, "user info")
		return
	}

	c.JSON(http.StatusOK, userInfoResponse{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Username,
		Name:       user.Name,
		Role:       user.Role,
		Balance:    user.Balance,
		AvatarURL:  uc.store.URL(user.Avatar),
		BookCount:  bookCount,
		OrderCount: orderCount,
	})
}

// UpdateProfile edits the caller's name and username. A username already
// held by another account is a conflict.
// PUT /api/user/profile
func (uc *UsersController) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Username != nil {
		if *req.Username == "" {
			respondBadRequest(c, "username cannot be empty")
			return
		}
		updates["username"] = *req.Username
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	if err := uc.users.UpdateProfile(auth.GetUserID(c), updates); err != nil {
		respondDomainError(c, err, "update profile")
		return
	}
	respondSuccess(c, "profile updated")
}

// UploadAvatar replaces the caller's avatar. The new file is written first;
// the previous one is removed only after the database row points at the
// replacement.
// POST /api/user/avatar
func (uc *UsersController) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		respondBadRequest(c, "avatar file is required")
		return
	}

	name, err := uc.store.SaveImage(file, "avatar")
	if err != nil {
		switch err {
		case storage.ErrFileTooLarge, storage.ErrUnsupportedFormat:
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "save avatar")
		}
		return
	}

	old, err := uc.users.UpdateAvatar(auth.GetUserID(c), name)
	if err != nil {
		_ = uc.store.Remove(name)
		respondDomainError(c, err, "update avatar")
		return
	}
	if old != "" {
		_ = uc.store.Remove(old)
	}

	c.JSON(http.StatusOK, gin.H{"message": "avatar updated", "avatar_url": uc.store.URL(name)})
}
