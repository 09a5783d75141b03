package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tableserve-backend/internal/core/ports"
	"tableserve-backend/pkg/apperror"
)

// ReconciliationService audits wallet balances against the ledger. The
// ledger is authoritative: a wallet whose balance disagrees with the sum
// of its completed transactions has drifted and can be repaired by
// resetting the balance to the ledger sum.
type ReconciliationService struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	logger     zerolog.Logger
}

func NewReconciliationService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	logger zerolog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		logger:     logger.With().Str("component", "reconciliation").Logger(),
	}
}

func (s *ReconciliationService) CheckWallet(ctx context.Context, walletID uuid.UUID, repair bool) (*ports.DriftReport, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if wallet == nil {
		return nil, apperror.NewWalletNotFound()
	}

	sum, err := s.txRepo.LedgerSum(ctx, walletID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	report := &ports.DriftReport{
		WalletID:      walletID,
		WalletBalance: wallet.Balance,
		LedgerSum:     sum,
		Drift:         wallet.Balance - sum,
	}

	if report.Drift == 0 {
		return report, nil
	}

	s.logger.Error().
		Str("wallet_id", walletID.String()).
		Int64("balance", wallet.Balance).
		Int64("ledger_sum", sum).
		Int64("drift", report.Drift).
		Msg("wallet balance disagrees with ledger")

	if repair {
		if err := s.walletRepo.AdjustBalance(ctx, walletID, sum); err != nil {
			return nil, apperror.NewInternal(err)
		}
		report.Repaired = true
		report.WalletBalance = sum
		s.logger.Warn().
			Str("wallet_id", walletID.String()).
			Int64("new_balance", sum).
			Msg("wallet balance repaired from ledger")
	}

	return report, nil
}
