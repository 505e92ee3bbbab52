package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/classhub/internal/config"
	"github.com/geocoder89/classhub/internal/domain/class"
	"github.com/geocoder89/classhub/internal/domain/payment"
	"github.com/geocoder89/classhub/internal/http/middlewares"
	"github.com/geocoder89/classhub/internal/observability"
	"github.com/geocoder89/classhub/internal/payments/stripe"
	"github.com/geocoder89/classhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type IntentCreator interface {
	CreateIntent(ctx context.Context, price float64) (stripe.Intent, error)
}

type PaymentsRepository interface {
	Finalize(ctx context.Context, req payment.CreatePaymentRequest) (payment.Payment, payment.FinalizeResult, error)
	ListByEmailCursor(ctx context.Context, email string, limit int, beforePaidAt time.Time, beforeID string) ([]payment.Payment, *string, bool, error)
	CountByEmail(ctx context.Context, email string) (int, error)
}

type PaymentsHandler struct {
	repo    PaymentsRepository
	intents IntentCreator
	prom    *observability.Prom
}

func NewPaymentsHandler(repo PaymentsRepository, intents IntentCreator, prom *observability.Prom) *PaymentsHandler {
	return &PaymentsHandler{repo: repo, intents: intents, prom: prom}
}

type createIntentRequest struct {
	Price float64 `json:"price" binding:"required,gt=0"`
}

// CreateIntent asks the payment provider for a client secret. The price is
// taken as posted; the trust boundary sits at finalization, not here.
func (h *PaymentsHandler) CreateIntent(ctx *gin.Context) {
	var req createIntentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(12 * time.Second)
	defer cancel()

	intent, err := h.intents.CreateIntent(cctx, req.Price)

	if err != nil {
		if h.prom != nil {
			h.prom.PaymentIntentsTotal.WithLabelValues("error").Inc()
		}

		RespondError(ctx, http.StatusBadGateway, "upstream_error", "Payment provider is unavailable", nil)
		return
	}

	if h.prom != nil {
		h.prom.PaymentIntentsTotal.WithLabelValues("ok").Inc()
	}

	ctx.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

// Finalize records the confirmed purchase. Everything inside commits
// together; a sold-out class mid-basket answers 409 and nothing is applied.
func (h *PaymentsHandler) Finalize(ctx *gin.Context) {
	var req payment.CreatePaymentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email, _ := middlewares.EmailFromContext(ctx)

	if !strings.EqualFold(req.Email, email) {
		RespondForbidden(ctx, "Payments can only be recorded for your own account")
		return
	}

	if err := req.Normalize(); err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	_, result, err := h.repo.Finalize(cctx, req)

	if err != nil {
		if errors.Is(err, class.ErrNoSeatsAvailable) {
			RespondConflict(ctx, "no_seats_available", "A class in this purchase is sold out")
			return
		}

		if errors.Is(err, class.ErrNotFound) {
			RespondNotFound(ctx, "A class in this purchase does not exist")
			return
		}

		RespondInternal(ctx, "Could not record payment")
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// History lists the caller's purchases newest first, keyset-paginated.
func (h *PaymentsHandler) History(ctx *gin.Context) {
	email := ctx.Query("email")

	limit := utils.ParseIntDefault(ctx.Query("limit"), 20)

	if limit < 1 {
		limit = 1
	}

	if limit > 100 {
		limit = 100
	}

	// default anchor: now, zero-uuid boundary sorts after any real id
	beforePaidAt := time.Now().UTC().Add(time.Hour)
	beforeID := "ffffffff-ffff-ffff-ffff-ffffffffffff"

	if raw := ctx.Query("cursor"); raw != "" {
		cur, err := utils.DecodePaymentCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", nil)
			return
		}

		beforePaidAt = cur.PaidAt
		beforeID = cur.ID
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, nextCursor, hasMore, err := h.repo.ListByEmailCursor(cctx, email, limit, beforePaidAt, beforeID)

	if err != nil {
		RespondInternal(ctx, "Could not list payments")
		return
	}

	total, err := h.repo.CountByEmail(cctx, email)

	if err != nil {
		RespondInternal(ctx, "Could not list payments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":      items,
		"total":      total,
		"nextCursor": nextCursor,
		"hasMore":    hasMore,
	})
}
