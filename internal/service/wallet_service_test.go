package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports"
	"tableserve-backend/internal/core/ports/mocks"
)

type walletDeps struct {
	walletRepo *mocks.MockWalletRepository
	txRepo     *mocks.MockTransactionRepository
	userRepo   *mocks.MockUserRepository
	accounts   *mocks.MockVirtualAccountProvider
}

func newWalletService(t *testing.T) (*WalletService, walletDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	deps := walletDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		userRepo:   mocks.NewMockUserRepository(ctrl),
		accounts:   mocks.NewMockVirtualAccountProvider(ctrl),
	}
	svc := NewWalletService(deps.walletRepo, deps.txRepo, deps.userRepo, deps.accounts, zerolog.Nop())
	return svc, deps
}

func TestWalletService_EnsureWallet_CreatesLazily(t *testing.T) {
	svc, deps := newWalletService(t)
	userID := uuid.New()

	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(nil, nil)
	deps.walletRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w *domain.Wallet) error {
			assert.Equal(t, userID, w.UserID)
			assert.Equal(t, int64(0), w.Balance)
			assert.Equal(t, domain.WalletActive, w.Status)
			return nil
		})
	deps.userRepo.EXPECT().GetByID(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Email: "ada@example.com", FullName: "Ada Obi"}, nil)
	deps.accounts.EXPECT().CreateAccount(gomock.Any(), userID, "ada@example.com", "Ada Obi").
		Return(&ports.VirtualAccount{AccountNumber: "0123456789", BankName: "Wema Bank"}, nil)
	deps.walletRepo.EXPECT().SetAccountNumber(gomock.Any(), gomock.Any(), "0123456789", "Wema Bank").Return(nil)

	wallet, err := svc.EnsureWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", wallet.AccountNumber)
}

func TestWalletService_EnsureWallet_ExistingWallet(t *testing.T) {
	svc, deps := newWalletService(t)
	userID := uuid.New()
	existing := &domain.Wallet{ID: uuid.New(), UserID: userID, Balance: 5000}

	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(existing, nil)
	// No create, no provisioning.

	wallet, err := svc.EnsureWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, existing, wallet)
}

func TestWalletService_EnsureWallet_LosesCreationRace(t *testing.T) {
	svc, deps := newWalletService(t)
	userID := uuid.New()
	winner := &domain.Wallet{ID: uuid.New(), UserID: userID}

	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(nil, nil)
	deps.walletRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrWalletExists)
	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(winner, nil)

	wallet, err := svc.EnsureWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, winner, wallet)
}

func TestWalletService_EnsureWallet_ProvisioningFailureIsNonFatal(t *testing.T) {
	svc, deps := newWalletService(t)
	userID := uuid.New()

	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(nil, nil)
	deps.walletRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	deps.userRepo.EXPECT().GetByID(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Email: "ada@example.com"}, nil)
	deps.accounts.EXPECT().CreateAccount(gomock.Any(), userID, gomock.Any(), gomock.Any()).
		Return(nil, errors.New("provider down"))

	wallet, err := svc.EnsureWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, wallet.AccountNumber)
}

func TestWalletService_InitiateTopup(t *testing.T) {
	svc, deps := newWalletService(t)
	userID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), UserID: userID}

	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(wallet, nil)
	deps.txRepo.EXPECT().CreatePending(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txn *domain.Transaction) error {
			assert.Equal(t, wallet.ID, txn.WalletID)
			assert.Equal(t, "TOPUP-1", txn.Reference)
			assert.Equal(t, domain.DirectionCredit, txn.Direction)
			assert.Equal(t, domain.PurposeTopup, txn.Purpose)
			assert.Equal(t, domain.MethodGateway, txn.Method)
			assert.Equal(t, int64(5000), txn.Amount)
			return nil
		})

	initiation, err := svc.InitiateTopup(context.Background(), userID, 5000, "TOPUP-1")
	require.NoError(t, err)
	assert.Equal(t, "TOPUP-1", initiation.Reference)
	assert.Equal(t, int64(5000), initiation.Amount)
}

func TestWalletService_InitiateTopup_GeneratesReference(t *testing.T) {
	svc, deps := newWalletService(t)
	userID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), UserID: userID}

	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(wallet, nil)
	deps.txRepo.EXPECT().CreatePending(gomock.Any(), gomock.Any()).Return(nil)

	initiation, err := svc.InitiateTopup(context.Background(), userID, 5000, "")
	require.NoError(t, err)
	assert.Contains(t, initiation.Reference, "TOPUP-")
}

func TestWalletService_InitiateTopup_InvalidAmount(t *testing.T) {
	svc, _ := newWalletService(t)

	_, err := svc.InitiateTopup(context.Background(), uuid.New(), 0, "TOPUP-1")
	assertAppError(t, err, "WLT_002")

	_, err = svc.InitiateTopup(context.Background(), uuid.New(), -100, "TOPUP-1")
	assertAppError(t, err, "WLT_002")
}

func TestWalletService_InitiateTopup_DuplicateReference(t *testing.T) {
	svc, deps := newWalletService(t)
	userID := uuid.New()

	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).
		Return(&domain.Wallet{ID: uuid.New(), UserID: userID}, nil)
	deps.txRepo.EXPECT().CreatePending(gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateReference)

	_, err := svc.InitiateTopup(context.Background(), userID, 5000, "TOPUP-1")
	assertAppError(t, err, "WLT_004")
}

func TestWalletService_GetBalance_NoWallet(t *testing.T) {
	svc, deps := newWalletService(t)
	userID := uuid.New()

	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(nil, nil)

	_, err := svc.GetBalance(context.Background(), userID)
	assertAppError(t, err, "WLT_003")
}

func TestWalletService_ListTransactions_ClampsPaging(t *testing.T) {
	svc, deps := newWalletService(t)
	userID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), UserID: userID}

	deps.walletRepo.EXPECT().GetByUserID(gomock.Any(), userID).Return(wallet, nil)
	deps.txRepo.EXPECT().ListByWallet(gomock.Any(), wallet.ID, 100, 0).Return(nil, nil)

	_, err := svc.ListTransactions(context.Background(), userID, 5000, -3)
	assert.NoError(t, err)
}
