package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/classhub/internal/config"
	"github.com/geocoder89/classhub/internal/domain/selection"
	"github.com/geocoder89/classhub/internal/http/middlewares"
	"github.com/geocoder89/classhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type SelectionsRepository interface {
	Insert(ctx context.Context, s selection.Selection) error
	ListByEmail(ctx context.Context, email string) ([]selection.Selection, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type SelectionsHandler struct {
	repo SelectionsRepository
}

func NewSelectionsHandler(repo SelectionsRepository) *SelectionsHandler {
	return &SelectionsHandler{repo: repo}
}

// List returns the caller's cart; the self-match guard already vetted the
// email parameter against the token.
func (h *SelectionsHandler) List(ctx *gin.Context) {
	email := ctx.Query("email")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	selections, err := h.repo.ListByEmail(cctx, email)

	if err != nil {
		RespondInternal(ctx, "Could not list selections")
		return
	}

	ctx.JSON(http.StatusOK, selections)
}

func (h *SelectionsHandler) Create(ctx *gin.Context) {
	var req selection.CreateSelectionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email, _ := middlewares.EmailFromContext(ctx)

	if !strings.EqualFold(req.Email, email) {
		RespondForbidden(ctx, "Selections can only be added to your own cart")
		return
	}

	s := selection.NewFromCreateRequest(req)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Insert(cctx, s)

	if err != nil {
		RespondInternal(ctx, "Could not save selection")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"insertedId": s.ID})
}

// Remove deletes a cart entry by id. The count passes through so a repeat
// delete reads {"deletedCount": 0} rather than an error.
func (h *SelectionsHandler) Remove(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid selection id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	deleted, err := h.repo.Delete(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not delete selection")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}
