package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports"
	"tableserve-backend/pkg/apperror"
)

// gatewayStatusFailed is the raw status the gateway reports for a
// terminally declined charge. Anything else that is not success leaves
// the transaction PENDING so a later signal can retry.
const gatewayStatusFailed = "failed"

// SettlementService finalizes externally paid transactions exactly once.
//
// Layered defenses, cheapest first:
//  1. process-lifetime seen set (fast path, optimization only),
//  2. singleflight keyed on reference (collapses concurrent callers in
//     this process; unrelated references never contend),
//  3. Redis claim (keeps other processes from redundant gateway calls),
//  4. database compare-and-swap PENDING -> COMPLETED (the correctness
//     guarantee; wallet credit commits atomically with it).
type SettlementService struct {
	transactor ports.DBTransactor
	txRepo     ports.TransactionRepository
	walletRepo ports.WalletRepository
	verifier   ports.GatewayVerifier
	claims     ports.SettleClaimStore
	logger     zerolog.Logger

	verifyTimeout time.Duration
	claimTTL      time.Duration

	group singleflight.Group

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewSettlementService(
	transactor ports.DBTransactor,
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	verifier ports.GatewayVerifier,
	claims ports.SettleClaimStore,
	logger zerolog.Logger,
	verifyTimeout, claimTTL time.Duration,
) *SettlementService {
	if verifyTimeout <= 0 {
		verifyTimeout = 15 * time.Second
	}
	if claimTTL <= 0 {
		claimTTL = 30 * time.Second
	}
	return &SettlementService{
		transactor:    transactor,
		txRepo:        txRepo,
		walletRepo:    walletRepo,
		verifier:      verifier,
		claims:        claims,
		logger:        logger.With().Str("component", "settlement").Logger(),
		verifyTimeout: verifyTimeout,
		claimTTL:      claimTTL,
		seen:          make(map[string]struct{}),
	}
}

// Settle finalizes the transaction behind reference. Safe to call any
// number of times from any number of goroutines and processes; the wallet
// is credited at most once per reference.
func (s *SettlementService) Settle(ctx context.Context, reference string) (*ports.SettlementResult, error) {
	if reference == "" {
		return nil, apperror.NewValidation("reference is required")
	}

	// Fast path. Not a correctness guarantee (it dies with the process),
	// so a hit still answers from durable state.
	if s.alreadySeen(reference) {
		return s.settledResult(ctx, reference)
	}

	v, err, _ := s.group.Do(reference, func() (interface{}, error) {
		return s.settleOnce(ctx, reference)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ports.SettlementResult), nil
}

// settleOnce runs with singleflight guaranteeing it is the only in-process
// attempt for this reference.
func (s *SettlementService) settleOnce(ctx context.Context, reference string) (*ports.SettlementResult, error) {
	log := s.logger.With().Str("reference", reference).Logger()

	// A caller that queued behind the winner re-checks the seen set.
	if s.alreadySeen(reference) {
		return s.settledResult(ctx, reference)
	}

	// Cross-process claim. A claim failure is logged and ignored: the
	// database CAS below still prevents double credit. In that case nothing
	// was acquired, so nothing is released either; a Release after the store
	// recovers could delete a claim another process legitimately holds.
	claimed, err := s.claims.Claim(ctx, reference, s.claimTTL)
	if err != nil {
		log.Warn().Err(err).Msg("settle claim unavailable, relying on database CAS")
		claimed = true
	} else if claimed {
		defer func() {
			if err := s.claims.Release(context.WithoutCancel(ctx), reference); err != nil {
				log.Warn().Err(err).Msg("failed to release settle claim")
			}
		}()
	}

	// Durable status check. This, not any in-memory state, decides whether
	// work remains.
	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if txn == nil {
		return nil, apperror.NewReferenceNotFound(reference)
	}

	switch txn.Status {
	case domain.TransactionCompleted:
		s.markSeen(reference)
		return s.resultFor(ctx, txn, true)
	case domain.TransactionFailed:
		return nil, apperror.NewAlreadyFailed(reference)
	}

	if !claimed {
		// Another process is mid-settlement. The row is still PENDING, so
		// tell the caller to retry shortly rather than double-verify.
		return nil, apperror.NewSettlementInProgress(reference)
	}

	// Gateway verification, bounded. One call, no retry; a later trigger
	// signal is the retry.
	verifyCtx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	verification, err := s.verifier.VerifyTransaction(verifyCtx, reference)
	if err != nil {
		log.Error().Err(err).Msg("gateway verification call failed")
		return nil, apperror.NewGatewayUnavailable(err)
	}

	if !verification.Success {
		if verification.RawStatus == gatewayStatusFailed {
			// Terminal decline. Persist it so later signals stop retrying.
			if _, err := s.txRepo.FailIfPending(ctx, reference); err != nil {
				log.Error().Err(err).Msg("failed to persist gateway decline")
			}
		}
		log.Info().Str("raw_status", verification.RawStatus).Msg("payment not confirmed, leaving transaction pending")
		return nil, apperror.NewVerificationFailed(reference, fmt.Errorf("gateway status %q", verification.RawStatus))
	}

	if verification.PaidAmount < txn.Amount {
		log.Warn().
			Int64("expected", txn.Amount).
			Int64("paid", verification.PaidAmount).
			Msg("short payment, leaving transaction pending")
		return nil, apperror.NewAmountMismatch(reference, txn.Amount, verification.PaidAmount)
	}

	result, err := s.finalize(ctx, txn)
	if err != nil {
		return nil, err
	}

	s.markSeen(reference)
	log.Info().
		Int64("amount", txn.Amount).
		Bool("already_settled", result.AlreadySettled).
		Msg("settlement finished")
	return result, nil
}

// finalize flips the ledger row and applies the wallet effect in one
// database transaction. Exactly one caller across all processes wins the
// CAS; losers report the already-settled state.
func (s *SettlementService) finalize(ctx context.Context, txn *domain.Transaction) (*ports.SettlementResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck // no-op after commit

	won, err := s.txRepo.CompleteIfPending(ctx, dbTx, txn.Reference)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if !won {
		// Lost the cross-process race. Re-read the terminal state.
		current, err := s.txRepo.GetByReference(ctx, txn.Reference)
		if err != nil {
			return nil, apperror.NewInternal(err)
		}
		if current == nil || current.Status == domain.TransactionFailed {
			return nil, apperror.NewAlreadyFailed(txn.Reference)
		}
		return s.resultFor(ctx, current, true)
	}

	if txn.CreditsWallet() {
		if err := s.walletRepo.Credit(ctx, dbTx, txn.WalletID, txn.Amount, txn.LoyaltyAccrual()); err != nil {
			return nil, apperror.NewInternal(err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.NewInternal(err)
	}

	txn.Status = domain.TransactionCompleted
	return s.resultFor(ctx, txn, false)
}

// Cancel acknowledges an in-app abort. Permitted only while the
// transaction is PENDING, and deliberately writes nothing: the gateway may
// still process the charge asynchronously, and a later success signal must
// be able to settle it.
func (s *SettlementService) Cancel(ctx context.Context, reference string) error {
	if reference == "" {
		return apperror.NewValidation("reference is required")
	}

	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if txn == nil {
		return apperror.NewReferenceNotFound(reference)
	}
	if txn.Status != domain.TransactionPending {
		return apperror.NewCancelNotPending(reference)
	}

	s.logger.Info().Str("reference", reference).Msg("payment cancelled by user, transaction left pending")
	return nil
}

func (s *SettlementService) alreadySeen(reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[reference]
	return ok
}

func (s *SettlementService) markSeen(reference string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[reference] = struct{}{}
}

// settledResult answers a fast-path hit from durable state.
func (s *SettlementService) settledResult(ctx context.Context, reference string) (*ports.SettlementResult, error) {
	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if txn == nil {
		return nil, apperror.NewReferenceNotFound(reference)
	}
	if txn.Status != domain.TransactionCompleted {
		// Seen set and durable state disagree; trust the database.
		if txn.Status == domain.TransactionFailed {
			return nil, apperror.NewAlreadyFailed(reference)
		}
		return nil, apperror.NewVerificationFailed(reference, errors.New("transaction still pending"))
	}
	return s.resultFor(ctx, txn, true)
}

func (s *SettlementService) resultFor(ctx context.Context, txn *domain.Transaction, alreadySettled bool) (*ports.SettlementResult, error) {
	wallet, err := s.walletRepo.GetByID(ctx, txn.WalletID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	result := &ports.SettlementResult{
		Reference:      txn.Reference,
		Transaction:    txn,
		AlreadySettled: alreadySettled,
	}
	if wallet != nil {
		result.NewBalance = wallet.Balance
		result.LoyaltyPoints = wallet.LoyaltyPoints
	}
	return result, nil
}
