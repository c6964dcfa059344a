package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MacMoment/coding/internal/http/response"
	"github.com/MacMoment/coding/internal/services"
)

type TokenHandler struct {
	ledger services.LedgerService
	now    func() time.Time
}

func NewTokenHandler(ledger services.LedgerService) *TokenHandler {
	return &TokenHandler{ledger: ledger, now: time.Now}
}

// GET /api/tokens/balance
func (h *TokenHandler) Balance(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	summary, err := h.ledger.Summary(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, summary)
}

// GET /api/tokens/history?page=&limit=
func (h *TokenHandler) History(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	page, err := h.ledger.History(c.Request.Context(), userID, intQuery(c, "page", 1), intQuery(c, "limit", 0))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// POST /api/tokens/daily-claim
func (h *TokenHandler) DailyClaim(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	res, err := h.ledger.ClaimDaily(c.Request.Context(), userID, h.now())
	if err != nil {
		var cooldown *services.ClaimCooldownError
		if errors.As(err, &cooldown) {
			c.Header("Retry-After", cooldown.NextClaimAt.UTC().Format(time.RFC1123))
		}
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/tokens/audit
func (h *TokenHandler) Audit(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	res, err := h.ledger.Audit(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
