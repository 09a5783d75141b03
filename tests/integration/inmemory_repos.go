// Package integration exercises the service layer end to end against
// in-memory adapters that preserve the stores' atomicity semantics: the
// transaction CAS, the wallet balance guard and the one-active-booking
// slot constraint all behave as the SQL schema does.
package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports"
)

// memTx satisfies pgx.Tx with a journal of undo closures, so a rollback
// really does return debited funds the way the database would.
type memTx struct {
	pgx.Tx
	store *memStore
	undo  []func()
	done  bool
}

func (t *memTx) Commit(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.done = true
	t.undo = nil
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return nil
}

// recordUndo must be called with the store lock held.
func recordUndo(tx pgx.Tx, fn func()) {
	if mt, ok := tx.(*memTx); ok {
		mt.undo = append(mt.undo, fn)
	}
}

// memStore holds all tables behind one mutex, so every exported method is
// as atomic as its SQL counterpart.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*domain.User
	wallets  map[uuid.UUID]*domain.Wallet
	txns     map[string]*domain.Transaction
	bookings map[uuid.UUID]*domain.Booking
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*domain.User),
		wallets:  make(map[uuid.UUID]*domain.Wallet),
		txns:     make(map[string]*domain.Transaction),
		bookings: make(map[uuid.UUID]*domain.Booking),
	}
}

func (s *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{store: s}, nil
}

func slotKey(tableID uuid.UUID, date time.Time) string {
	return tableID.String() + "|" + date.Format("2006-01-02")
}

// --- WalletRepository ---

func (s *memStore) Create(ctx context.Context, wallet *domain.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.UserID == wallet.UserID {
			return domain.ErrWalletExists
		}
	}
	cp := *wallet
	s.wallets[wallet.ID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (s *memStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.AccountNumber == accountNumber {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	return s.GetByUserID(ctx, userID)
}

func (s *memStore) Credit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount, points int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet %s not found", walletID)
	}
	w.Balance += amount
	w.LoyaltyPoints += points
	recordUndo(tx, func() {
		w.Balance -= amount
		w.LoyaltyPoints -= points
	})
	return nil
}

func (s *memStore) Debit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok || w.Balance < amount {
		return errors.New("insufficient balance or missing row")
	}
	w.Balance -= amount
	recordUndo(tx, func() { w.Balance += amount })
	return nil
}

func (s *memStore) SetAccountNumber(ctx context.Context, walletID uuid.UUID, accountNumber, bankName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet %s not found", walletID)
	}
	w.AccountNumber = accountNumber
	w.BankName = bankName
	return nil
}

func (s *memStore) AdjustBalance(ctx context.Context, walletID uuid.UUID, newBalance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet %s not found", walletID)
	}
	w.Balance = newBalance
	return nil
}

// setBalance corrupts a wallet balance directly, bypassing the ledger.
// Reconciliation tests only.
func (s *memStore) setBalance(walletID uuid.UUID, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[walletID].Balance = balance
}

// --- TransactionRepository ---

func (s *memStore) CreatePending(ctx context.Context, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.txns[txn.Reference]; exists {
		return domain.ErrDuplicateReference
	}
	cp := *txn
	cp.Status = domain.TransactionPending
	s.txns[txn.Reference] = &cp
	return nil
}

func (s *memStore) CreateCompleted(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.txns[txn.Reference]; exists {
		return domain.ErrDuplicateReference
	}
	cp := *txn
	cp.Status = domain.TransactionCompleted
	s.txns[txn.Reference] = &cp
	recordUndo(tx, func() { delete(s.txns, cp.Reference) })
	return nil
}

func (s *memStore) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.txns[reference]
	if !ok {
		return nil, nil
	}
	cp := *txn
	return &cp, nil
}

func (s *memStore) CompleteIfPending(ctx context.Context, tx pgx.Tx, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.txns[reference]
	if !ok || txn.Status != domain.TransactionPending {
		return false, nil
	}
	txn.Status = domain.TransactionCompleted
	recordUndo(tx, func() { txn.Status = domain.TransactionPending })
	return true, nil
}

func (s *memStore) FailIfPending(ctx context.Context, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.txns[reference]
	if !ok || txn.Status != domain.TransactionPending {
		return false, nil
	}
	txn.Status = domain.TransactionFailed
	return true, nil
}

func (s *memStore) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Transaction
	for _, txn := range s.txns {
		if txn.WalletID == walletID {
			cp := *txn
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) LedgerSum(ctx context.Context, walletID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, txn := range s.txns {
		if txn.WalletID != walletID || txn.Status != domain.TransactionCompleted {
			continue
		}
		switch {
		case txn.Direction == domain.DirectionCredit:
			sum += txn.Amount
		case txn.Direction == domain.DirectionDebit && txn.Method == domain.MethodWallet:
			sum -= txn.Amount
		}
	}
	return sum, nil
}

// --- BookingRepository ---

func (s *memStore) insertBooking(booking *domain.Booking) error {
	key := slotKey(booking.TableID, booking.BookingDate)
	for _, b := range s.bookings {
		if booking.PaymentReference != nil && b.PaymentReference != nil &&
			*b.PaymentReference == *booking.PaymentReference {
			return domain.ErrReferenceConsumed
		}
		if b.Status.IsActive() && slotKey(b.TableID, b.BookingDate) == key {
			return domain.ErrSlotTaken
		}
	}
	cp := *booking
	s.bookings[booking.ID] = &cp
	return nil
}

func (s *memStore) InsertActive(ctx context.Context, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertBooking(booking)
}

func (s *memStore) InsertActiveTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertBooking(booking); err != nil {
		return err
	}
	recordUndo(tx, func() { delete(s.bookings, booking.ID) })
	return nil
}

func (s *memStore) GetBookingByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) CancelIfActive(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || !b.Status.IsActive() {
		return false, nil
	}
	b.Status = domain.BookingCancelled
	return true, nil
}

func (s *memStore) ListByUser(ctx context.Context, userID uuid.UUID, from time.Time) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Booking
	for _, b := range s.bookings {
		if b.UserID == userID && !b.BookingDate.Before(from) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- UserRepository ---

func (s *memStore) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrEmailExists
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// bookingRepoView adapts memStore method names to ports.BookingRepository.
type bookingRepoView struct{ *memStore }

func (v bookingRepoView) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return v.GetBookingByID(ctx, id)
}

// userRepoView adapts memStore method names to ports.UserRepository.
type userRepoView struct{ *memStore }

func (v userRepoView) Create(ctx context.Context, user *domain.User) error {
	return v.CreateUser(ctx, user)
}

func (v userRepoView) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return v.GetUserByEmail(ctx, email)
}

func (v userRepoView) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return v.GetUserByID(ctx, id)
}

// memClaimStore is a single-process SET NX.
type memClaimStore struct {
	mu     sync.Mutex
	claims map[string]struct{}
}

func newMemClaimStore() *memClaimStore {
	return &memClaimStore{claims: make(map[string]struct{})}
}

func (s *memClaimStore) Claim(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.claims[reference]; held {
		return false, nil
	}
	s.claims[reference] = struct{}{}
	return true, nil
}

func (s *memClaimStore) Release(ctx context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, reference)
	return nil
}

// stubVerifier answers from a fixed table and counts calls.
type stubVerifier struct {
	mu      sync.Mutex
	results map[string]*ports.VerificationResult
	calls   map[string]int
}

func newStubVerifier() *stubVerifier {
	return &stubVerifier{
		results: make(map[string]*ports.VerificationResult),
		calls:   make(map[string]int),
	}
}

func (v *stubVerifier) setResult(reference string, result *ports.VerificationResult) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results[reference] = result
}

func (v *stubVerifier) callCount(reference string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls[reference]
}

func (v *stubVerifier) VerifyTransaction(ctx context.Context, reference string) (*ports.VerificationResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls[reference]++
	result, ok := v.results[reference]
	if !ok {
		return &ports.VerificationResult{Success: false, RawStatus: "not_found"}, nil
	}
	cp := *result
	return &cp, nil
}

// stubAccounts provisions deterministic virtual accounts.
type stubAccounts struct{}

func (stubAccounts) CreateAccount(ctx context.Context, userID uuid.UUID, email, fullName string) (*ports.VirtualAccount, error) {
	return &ports.VirtualAccount{AccountNumber: "9" + userID.String()[:9], BankName: "Test Bank"}, nil
}
