package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports/mocks"
)

func newReconciliationService(t *testing.T) (*ReconciliationService, *mocks.MockWalletRepository, *mocks.MockTransactionRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	return NewReconciliationService(walletRepo, txRepo, zerolog.Nop()), walletRepo, txRepo
}

func TestReconciliationService_CheckWallet_InSync(t *testing.T) {
	svc, walletRepo, txRepo := newReconciliationService(t)
	walletID := uuid.New()

	walletRepo.EXPECT().GetByID(gomock.Any(), walletID).
		Return(&domain.Wallet{ID: walletID, Balance: 5000}, nil)
	txRepo.EXPECT().LedgerSum(gomock.Any(), walletID).Return(int64(5000), nil)

	report, err := svc.CheckWallet(context.Background(), walletID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Drift)
	assert.False(t, report.Repaired)
}

func TestReconciliationService_CheckWallet_DriftDetected(t *testing.T) {
	svc, walletRepo, txRepo := newReconciliationService(t)
	walletID := uuid.New()

	walletRepo.EXPECT().GetByID(gomock.Any(), walletID).
		Return(&domain.Wallet{ID: walletID, Balance: 7000}, nil)
	txRepo.EXPECT().LedgerSum(gomock.Any(), walletID).Return(int64(5000), nil)
	// repair=false only reports.

	report, err := svc.CheckWallet(context.Background(), walletID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), report.Drift)
	assert.False(t, report.Repaired)
}

func TestReconciliationService_CheckWallet_Repairs(t *testing.T) {
	svc, walletRepo, txRepo := newReconciliationService(t)
	walletID := uuid.New()

	walletRepo.EXPECT().GetByID(gomock.Any(), walletID).
		Return(&domain.Wallet{ID: walletID, Balance: 7000}, nil)
	txRepo.EXPECT().LedgerSum(gomock.Any(), walletID).Return(int64(5000), nil)
	walletRepo.EXPECT().AdjustBalance(gomock.Any(), walletID, int64(5000)).Return(nil)

	report, err := svc.CheckWallet(context.Background(), walletID, true)
	require.NoError(t, err)
	assert.True(t, report.Repaired)
	assert.Equal(t, int64(5000), report.WalletBalance)
}

func TestReconciliationService_CheckWallet_NotFound(t *testing.T) {
	svc, walletRepo, _ := newReconciliationService(t)
	walletID := uuid.New()

	walletRepo.EXPECT().GetByID(gomock.Any(), walletID).Return(nil, nil)

	_, err := svc.CheckWallet(context.Background(), walletID, false)
	assertAppError(t, err, "WLT_003")
}
