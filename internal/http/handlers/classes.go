package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/classhub/internal/cache"
	"github.com/geocoder89/classhub/internal/config"
	"github.com/geocoder89/classhub/internal/domain/class"
	"github.com/geocoder89/classhub/internal/http/middlewares"
	"github.com/geocoder89/classhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type ClassesRepository interface {
	Create(ctx context.Context, req class.CreateClassRequest) (class.Class, error)
	Upsert(ctx context.Context, id string, req class.UpsertClassRequest) (class.Class, error)
	GetByID(ctx context.Context, id string) (class.Class, error)
	ListApproved(ctx context.Context) ([]class.Class, error)
	ListManaged(ctx context.Context, filter class.ListFilter) ([]class.Class, error)
	ListByInstructor(ctx context.Context, email string) ([]class.Class, error)
	ListPopular(ctx context.Context) ([]class.Summary, error)
	SetStatus(ctx context.Context, id string, status class.Status) error
	SetFeedback(ctx context.Context, id string, message string) error
}

type ClassesHandler struct {
	repo  ClassesRepository
	cache *cache.Cache
}

func NewClassesHandler(repo ClassesRepository, c *cache.Cache) *ClassesHandler {
	return &ClassesHandler{repo: repo, cache: c}
}

// ListApproved serves the public catalog, cached briefly and ETagged.
func (h *ClassesHandler) ListApproved(ctx *gin.Context) {
	key := utils.BuildClassesListCacheKey("approved", "")

	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			RespondJSONWithETag(ctx, http.StatusOK, v)
			return
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	classes, err := h.repo.ListApproved(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list classes")
		return
	}

	if h.cache != nil {
		h.cache.Set(key, classes)
	}

	RespondJSONWithETag(ctx, http.StatusOK, classes)
}

func (h *ClassesHandler) ListPopular(ctx *gin.Context) {
	key := utils.BuildPopularClassesCacheKey()

	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			RespondJSONWithETag(ctx, http.StatusOK, v)
			return
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	summaries, err := h.repo.ListPopular(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list popular classes")
		return
	}

	if h.cache != nil {
		h.cache.Set(key, summaries)
	}

	RespondJSONWithETag(ctx, http.StatusOK, summaries)
}

// Create inserts a new submission in pending state. The posted instructor
// email must be the caller's own.
func (h *ClassesHandler) Create(ctx *gin.Context) {
	var req class.CreateClassRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email, _ := middlewares.EmailFromContext(ctx)

	if !strings.EqualFold(req.InstructorEmail, email) {
		RespondForbidden(ctx, "Classes can only be submitted under your own email")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create class")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusCreated, gin.H{"insertedId": c.ID})
}

// Upsert is the full replace-or-insert behind PUT /myClasses/:id. An
// existing class owned by someone else answers 403, not a takeover.
func (h *ClassesHandler) Upsert(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid class id", nil)
		return
	}

	var req class.UpsertClassRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email, _ := middlewares.EmailFromContext(ctx)

	if !strings.EqualFold(req.InstructorEmail, email) {
		RespondForbidden(ctx, "Classes can only be managed under your own email")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err == nil && !strings.EqualFold(existing.InstructorEmail, email) {
		RespondForbidden(ctx, "This class belongs to another instructor")
		return
	}

	if err != nil && !errors.Is(err, class.ErrNotFound) {
		RespondInternal(ctx, "Could not load class")
		return
	}

	c, err := h.repo.Upsert(cctx, id, req)

	if err != nil {
		RespondInternal(ctx, "Could not save class")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusOK, gin.H{"upsertedId": c.ID})
}

// ListMine serves an instructor's own dashboard; the self-match guard has
// already checked the email parameter.
func (h *ClassesHandler) ListMine(ctx *gin.Context) {
	email := ctx.Query("email")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	classes, err := h.repo.ListByInstructor(cctx, email)

	if err != nil {
		RespondInternal(ctx, "Could not list classes")
		return
	}

	ctx.JSON(http.StatusOK, classes)
}

// ListManaged is the admin review queue.
func (h *ClassesHandler) ListManaged(ctx *gin.Context) {
	var filter class.ListFilter

	if raw := strings.TrimSpace(ctx.Query("status")); raw != "" {
		st := class.Status(raw)

		if !st.IsValid() {
			RespondBadRequest(ctx, "Invalid status filter", nil)
			return
		}

		filter.Status = &st
	}

	if raw := strings.TrimSpace(ctx.Query("email")); raw != "" {
		filter.InstructorEmail = &raw
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	classes, err := h.repo.ListManaged(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list classes")
		return
	}

	ctx.JSON(http.StatusOK, classes)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved denied"`
}

// UpdateStatus applies the admin review decision; posting "pending" resets
// a previous decision.
func (h *ClassesHandler) UpdateStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid class id", nil)
		return
	}

	var req updateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.SetStatus(cctx, id, class.Status(req.Status))

	if err != nil {
		if errors.Is(err, class.ErrNotFound) {
			RespondNotFound(ctx, "Class not found")
			return
		}

		RespondInternal(ctx, "Could not update status")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusOK, gin.H{"modifiedCount": 1})
}

type feedbackRequest struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}

func (h *ClassesHandler) SetFeedback(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid class id", nil)
		return
	}

	var req feedbackRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.SetFeedback(cctx, id, req.Message)

	if err != nil {
		if errors.Is(err, class.ErrNotFound) {
			RespondNotFound(ctx, "Class not found")
			return
		}

		RespondInternal(ctx, "Could not save feedback")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"modifiedCount": 1})
}
