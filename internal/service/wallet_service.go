package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports"
	"tableserve-backend/pkg/apperror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// WalletService manages stored-value accounts. Wallets are created lazily
// on first qualifying action; only the settlement engine ever mutates a
// balance for gateway-funded money.
type WalletService struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	userRepo   ports.UserRepository
	accounts   ports.VirtualAccountProvider
	logger     zerolog.Logger
}

func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	userRepo ports.UserRepository,
	accounts ports.VirtualAccountProvider,
	logger zerolog.Logger,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		userRepo:   userRepo,
		accounts:   accounts,
		logger:     logger.With().Str("component", "wallet").Logger(),
	}
}

// EnsureWallet returns the user's wallet, creating it on first use. A
// dedicated virtual account is provisioned best-effort; failure leaves the
// wallet usable without bank-transfer top-ups.
func (s *WalletService) EnsureWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = &domain.Wallet{
		ID:     uuid.New(),
		UserID: userID,
		Status: domain.WalletActive,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		if errors.Is(err, domain.ErrWalletExists) {
			// Lost a concurrent first-use race; the other writer's wallet
			// is the wallet.
			return s.mustGetByUserID(ctx, userID)
		}
		return nil, apperror.NewInternal(err)
	}

	s.provisionAccount(ctx, wallet)

	s.logger.Info().Str("wallet_id", wallet.ID.String()).Str("user_id", userID.String()).Msg("wallet created")
	return wallet, nil
}

func (s *WalletService) mustGetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if wallet == nil {
		return nil, apperror.NewWalletNotFound()
	}
	return wallet, nil
}

func (s *WalletService) provisionAccount(ctx context.Context, wallet *domain.Wallet) {
	user, err := s.userRepo.GetByID(ctx, wallet.UserID)
	if err != nil || user == nil {
		s.logger.Warn().Err(err).Str("wallet_id", wallet.ID.String()).Msg("skipping account provisioning, user lookup failed")
		return
	}

	acct, err := s.accounts.CreateAccount(ctx, user.ID, user.Email, user.FullName)
	if err != nil {
		s.logger.Warn().Err(err).Str("wallet_id", wallet.ID.String()).Msg("virtual account provisioning failed")
		return
	}

	if err := s.walletRepo.SetAccountNumber(ctx, wallet.ID, acct.AccountNumber, acct.BankName); err != nil {
		s.logger.Error().Err(err).Str("wallet_id", wallet.ID.String()).Msg("failed to persist virtual account")
		return
	}

	wallet.AccountNumber = acct.AccountNumber
	wallet.BankName = acct.BankName
}

func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	return s.mustGetByUserID(ctx, userID)
}

// InitiateTopup records the PENDING credit before the client is handed to
// the gateway. The reference written here is the idempotency key every
// later settle signal carries.
func (s *WalletService) InitiateTopup(ctx context.Context, userID uuid.UUID, amount int64, reference string) (*ports.TopupInitiation, error) {
	if amount <= 0 {
		return nil, apperror.NewInvalidAmount()
	}

	wallet, err := s.EnsureWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	if reference == "" {
		reference = fmt.Sprintf("TOPUP-%s", uuid.NewString())
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		WalletID:  wallet.ID,
		Reference: reference,
		Direction: domain.DirectionCredit,
		Purpose:   domain.PurposeTopup,
		Method:    domain.MethodGateway,
		Amount:    amount,
	}
	if err := s.txRepo.CreatePending(ctx, txn); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			return nil, apperror.NewDuplicateReference(reference)
		}
		return nil, apperror.NewInternal(err)
	}

	s.logger.Info().
		Str("reference", reference).
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", amount).
		Msg("top-up initiated")
	return &ports.TopupInitiation{Reference: reference, Amount: amount}, nil
}

func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	wallet, err := s.mustGetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	txns, err := s.txRepo.ListByWallet(ctx, wallet.ID, limit, offset)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return txns, nil
}
