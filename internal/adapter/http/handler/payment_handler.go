package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tableserve-backend/internal/adapter/http/dto"
	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports"
	"tableserve-backend/pkg/apperror"
	"tableserve-backend/pkg/response"
)

// PaymentHandler is the single trigger surface for settlement. Embedded
// browser redirects, deep links, resume polls and postMessage handlers all
// submit the same structured signal here; none of them touch the ledger
// or wallet directly.
type PaymentHandler struct {
	settlement ports.SettlementService
	logger     zerolog.Logger
}

func NewPaymentHandler(settlement ports.SettlementService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		settlement: settlement,
		logger:     logger.With().Str("handler", "payment").Logger(),
	}
}

// Settle handles POST /payments/settle.
func (h *PaymentHandler) Settle(c *gin.Context) {
	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.NewValidation("invalid settle signal: "+err.Error()))
		return
	}

	signal := req.Signal()
	h.logger.Debug().
		Str("reference", signal.Reference).
		Str("outcome", string(signal.Outcome)).
		Str("source", string(signal.Source)).
		Msg("payment signal received")

	// A cancel signal takes the non-settlement path. Success and error
	// both settle: the claimed outcome is only a hint and the gateway is
	// asked what actually happened either way.
	if signal.Outcome == domain.OutcomeCancel {
		if err := h.settlement.Cancel(c.Request.Context(), signal.Reference); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"reference": signal.Reference, "status": string(domain.TransactionPending)})
		return
	}

	result, err := h.settlement.Settle(c.Request.Context(), signal.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, dto.FromSettlementResult(result))
}
