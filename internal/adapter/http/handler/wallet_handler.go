package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tableserve-backend/internal/adapter/http/dto"
	"tableserve-backend/internal/adapter/http/middleware"
	"tableserve-backend/internal/core/ports"
	"tableserve-backend/pkg/apperror"
	"tableserve-backend/pkg/response"
)

type WalletHandler struct {
	wallets        ports.WalletService
	reconciliation ports.ReconciliationService
	logger         zerolog.Logger
}

func NewWalletHandler(wallets ports.WalletService, reconciliation ports.ReconciliationService, logger zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		wallets:        wallets,
		reconciliation: reconciliation,
		logger:         logger.With().Str("handler", "wallet").Logger(),
	}
}

// GetWallet handles GET /wallet. Creates the wallet on first access.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.NewUnauthorized(""))
		return
	}

	wallet, err := h.wallets.EnsureWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, dto.FromWallet(wallet))
}

// Topup handles POST /wallet/topup.
func (h *WalletHandler) Topup(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.NewUnauthorized(""))
		return
	}

	var req dto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.NewValidation("invalid top-up request: "+err.Error()))
		return
	}

	initiation, err := h.wallets.InitiateTopup(c.Request.Context(), userID, req.Amount, req.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, dto.TopupResponse{
		Reference: initiation.Reference,
		Amount:    initiation.Amount,
	})
}

// ListTransactions handles GET /wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.NewUnauthorized(""))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txns, err := h.wallets.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, dto.FromTransactions(txns))
}

// Reconcile handles POST /wallets/:id/reconcile. Operational endpoint:
// compares the wallet balance to its ledger and optionally repairs drift.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.NewValidation("invalid wallet id"))
		return
	}
	repair := c.Query("repair") == "true"

	report, err := h.reconciliation.CheckWallet(c.Request.Context(), walletID, repair)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, dto.FromDriftReport(report))
}
