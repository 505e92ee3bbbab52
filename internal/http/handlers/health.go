package handlers

import (
	"net/http"
	"time"

	"github.com/geocoder89/classhub/internal/config"
	"github.com/geocoder89/classhub/internal/queue/redisclient"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthHandler struct {
	pool *pgxpool.Pool
	rdb  *redisclient.Client
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redisclient.Client) *HealthHandler {
	return &HealthHandler{pool: pool, rdb: rdb}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz answers 503 until both backing stores respond.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if h.pool != nil {
		if err := h.pool.Ping(cctx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "dependency": "postgres"})
			return
		}
	}

	if h.rdb != nil {
		if err := h.rdb.Ping(cctx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "dependency": "redis"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Root is the plain liveness string at /.
func (h *HealthHandler) Root(ctx *gin.Context) {
	ctx.String(http.StatusOK, "classhub api is running")
}
