package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/classhub/internal/cache"
	"github.com/geocoder89/classhub/internal/config"
	"github.com/geocoder89/classhub/internal/domain/instructor"
	"github.com/geocoder89/classhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type InstructorsRepository interface {
	List(ctx context.Context) ([]instructor.Instructor, error)
	ListPopular(ctx context.Context) ([]instructor.Summary, error)
}

type InstructorsHandler struct {
	repo  InstructorsRepository
	cache *cache.Cache
}

func NewInstructorsHandler(repo InstructorsRepository, c *cache.Cache) *InstructorsHandler {
	return &InstructorsHandler{repo: repo, cache: c}
}

func (h *InstructorsHandler) List(ctx *gin.Context) {
	key := utils.BuildInstructorsCacheKey()

	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			RespondJSONWithETag(ctx, http.StatusOK, v)
			return
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	instructors, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list instructors")
		return
	}

	if h.cache != nil {
		h.cache.Set(key, instructors)
	}

	RespondJSONWithETag(ctx, http.StatusOK, instructors)
}

func (h *InstructorsHandler) ListPopular(ctx *gin.Context) {
	key := utils.BuildPopularInstructorsCacheKey()

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
		RespondInternal(ctx, "Could not list popular instructors")
		return
	}

	if h.cache != nil {
		h.cache.Set(key, summaries)
	}

	RespondJSONWithETag(ctx, http.StatusOK, summaries)
}
