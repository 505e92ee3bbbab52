package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/classhub/internal/config"
	"github.com/geocoder89/classhub/internal/domain/instructor"
	"github.com/geocoder89/classhub/internal/domain/user"
	"github.com/geocoder89/classhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type UsersRepository interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	CreateIfAbsent(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error)
	HasRole(ctx context.Context, email string, role user.Role) (bool, error)
}

// InstructorsDirectory receives a directory row when an admin promotes a
// user to instructor, so the public instructor listing stays in step with
// the roles table.
type InstructorsDirectory interface {
	Upsert(ctx context.Context, ins instructor.Instructor) error
}

type UsersHandler struct {
	repo        UsersRepository
	instructors InstructorsDirectory
}

func NewUsersHandler(repo UsersRepository, instructors InstructorsDirectory) *UsersHandler {
	return &UsersHandler{repo: repo, instructors: instructors}
}

// Register is the first-sign-in upsert. Posting an email that already exists
// is not an error; the caller gets the "exists" message and no duplicate row.
func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.CreateIfAbsent(cctx, req)

	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			ctx.JSON(http.StatusOK, gin.H{
				"message":    "user already exists",
				"insertedId": nil,
			})
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"insertedId": u.ID})
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	users, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// IsAdmin answers {"admin": bool} for the caller's own email. The self-match
// guard runs before this, so the answer never leaks another user's role.
func (h *UsersHandler) IsAdmin(ctx *gin.Context) {
	h.hasRole(ctx, user.RoleAdmin, "admin")
}

func (h *UsersHandler) IsInstructor(ctx *gin.Context) {
	h.hasRole(ctx, user.RoleInstructor, "instructor")
}

func (h *UsersHandler) hasRole(ctx *gin.Context, role user.Role, field string) {
	email := ctx.Param("email")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	ok, err := h.repo.HasRole(cctx, email, role)

	if err != nil {
		RespondInternal(ctx, "Could not resolve role")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{field: ok})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=none instructor admin"`
}

func (h *UsersHandler) UpdateRole(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid user id", nil)
		return
	}

	var req updateRoleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	role := user.Role(req.Role)

	u, err := h.repo.UpdateRole(cctx, id, role)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update role")
		return
	}

	// promotions feed the public instructor directory; the upsert is
	// idempotent, so a retried request is harmless
	if role == user.RoleInstructor && h.instructors != nil {
		ins := instructor.Instructor{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Image: u.Image,
		}

		if err := h.instructors.Upsert(cctx, ins); err != nil {
			RespondInternal(ctx, "Could not sync instructor directory")
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"modifiedCount": 1})
}
