package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/infrastructure/metrics"
)

// LedgerUseCase owns accounts and their money-movement history.
type LedgerUseCase struct {
	txManager TxManager
	accounts  AccountRepository
	entries   TransactionRepository
	outbox    OutboxRepository
	idGen     IDGenerator
	clock     Clock
	metrics   *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TxManager,
	accounts AccountRepository,
	entries TransactionRepository,
	outbox OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager: txManager,
		accounts:  accounts,
		entries:   entries,
		outbox:    outbox,
		idGen:     idGen,
		clock:     clock,
		metrics:   m,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	Name           string
	InitialBalance decimal.Decimal
}

// OpenAccount creates a new account. A positive initial balance is recorded
// as one CREDIT entry described as an initial deposit. Account, entry and
// staged event land atomically; a failure partway leaves no account behind.
func (uc *LedgerUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if input.InitialBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	// A balance no credit could ever reach must not enter through the front door.
	if input.InitialBalance.IsPositive() {
		if err := domain.ValidateAmount(input.InitialBalance); err != nil {
			return nil, err
		}
	}

	now := uc.clock.Now()

	account := &domain.Account{
		Name:      input.Name,
		Balance:   input.InitialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.accounts.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	if input.InitialBalance.IsPositive() {
		entry := &domain.Transaction{
			AccountID:   account.ID,
			Kind:        domain.KindCredit,
			Amount:      input.InitialBalance,
			Description: DescriptionInitialDeposit,
			CreatedAt:   now,
		}
		if err := uc.entries.Create(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   formatID(account.ID),
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountOpened,
		Payload: domain.AccountOpenedEvent{
			AccountID:      account.ID,
			Name:           account.Name,
			InitialBalance: input.InitialBalance.String(),
		},
		CreatedAt: now,
	}
	if err := uc.outbox.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by id.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return uc.accounts.GetByID(ctx, id)
}

// ListAccounts lists all accounts in creation order.
func (uc *LedgerUseCase) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return uc.accounts.List(ctx)
}

// MoneyMovementInput represents input for a credit or debit.
type MoneyMovementInput struct {
	AccountID   int64
	Amount      decimal.Decimal
	Description string
}

// Credit increases the account balance and appends a CREDIT entry.
func (uc *LedgerUseCase) Credit(ctx context.Context, input MoneyMovementInput) error {
	if input.Description == "" {
		input.Description = DescriptionTopUp
	}
	return uc.move(ctx, input, domain.KindCredit)
}

// Debit decreases the account balance and appends a DEBIT entry. It fails
// without mutating state when the balance is smaller than the amount.
func (uc *LedgerUseCase) Debit(ctx context.Context, input MoneyMovementInput) error {
	if input.Description == "" {
		input.Description = DescriptionWithdrawal
	}
	return uc.move(ctx, input, domain.KindDebit)
}

func (uc *LedgerUseCase) move(ctx context.Context, input MoneyMovementInput, kind domain.TransactionKind) error {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	account, err := uc.accounts.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return err
	}

	now := uc.clock.Now()

	var newBalance decimal.Decimal
	switch kind {
	case domain.KindDebit:
		if err := account.ValidateDebit(input.Amount); err != nil {
			return err
		}
		newBalance = account.ApplyDebit(input.Amount)
	default:
		newBalance = account.ApplyCredit(input.Amount)
	}

	if err := uc.accounts.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return err
	}

	entry := &domain.Transaction{
		AccountID:   account.ID,
		Kind:        kind,
		Amount:      input.Amount,
		Description: input.Description,
		CreatedAt:   now,
	}
	if err := uc.entries.Create(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerEntries.WithLabelValues(string(kind)).Inc()
	}

	return nil
}

// RecordTransactionInput represents input for appending a bare ledger entry.
type RecordTransactionInput struct {
	AccountID   int64
	Kind        domain.TransactionKind
	Amount      decimal.Decimal
	Description string
}

// RecordTransaction appends an entry without touching any balance. It is used
// when the balance mutation already happened through another path; the caller
// is trusted to keep balances and the entry log consistent.
func (uc *LedgerUseCase) RecordTransaction(ctx context.Context, tx Tx, input RecordTransactionInput) error {
	entry := &domain.Transaction{
		AccountID:   input.AccountID,
		Kind:        input.Kind,
		Amount:      input.Amount,
		Description: input.Description,
		CreatedAt:   uc.clock.Now(),
	}
	if err := uc.entries.Create(ctx, tx, entry); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerEntries.WithLabelValues(string(input.Kind)).Inc()
	}

	return nil
}

// TransactionsSince returns the account's entries with CreatedAt >= since, in
// insertion order.
func (uc *LedgerUseCase) TransactionsSince(ctx context.Context, accountID int64, since time.Time) ([]*domain.Transaction, error) {
	if _, err := uc.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return uc.entries.ListByAccountSince(ctx, accountID, since)
}

// TransactionsLastDays returns the account's entries in the trailing window.
func (uc *LedgerUseCase) TransactionsLastDays(ctx context.Context, accountID int64, days int) ([]*domain.Transaction, error) {
	return uc.TransactionsSince(ctx, accountID, domain.TrailingDays(uc.clock.Now(), days))
}

// TransactionsToday returns the account's entries since the epoch-day boundary.
func (uc *LedgerUseCase) TransactionsToday(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	return uc.TransactionsSince(ctx, accountID, domain.StartOfDay(uc.clock.Now()))
}

// TransactionsThisMonth returns the account's entries since the first of the month.
func (uc *LedgerUseCase) TransactionsThisMonth(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	return uc.TransactionsSince(ctx, accountID, domain.StartOfMonth(uc.clock.Now()))
}

// CashFlow sums the account's entry amounts by kind since the given instant.
func (uc *LedgerUseCase) CashFlow(ctx context.Context, accountID int64, since time.Time) (credit, debit decimal.Decimal, err error) {
	entries, err := uc.TransactionsSince(ctx, accountID, since)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	credit, debit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Kind == domain.KindCredit {
			credit = credit.Add(e.Amount)
		} else {
			debit = debit.Add(e.Amount)
		}
	}

	return credit, debit, nil
}

// DormantAccounts returns accounts with no entry at all in the trailing window.
func (uc *LedgerUseCase) DormantAccounts(ctx context.Context, thresholdDays int) ([]*domain.Account, error) {
	if thresholdDays <= 0 {
		thresholdDays = DefaultDormancyDays
	}

	since := domain.TrailingDays(uc.clock.Now(), thresholdDays)

	recent, err := uc.entries.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	active := make(map[int64]bool, len(recent))
	for _, e := range recent {
		active[e.AccountID] = true
	}

	accounts, err := uc.accounts.List(ctx)
	if err != nil {
		return nil, err
	}

	var dormant []*domain.Account
	for _, a := range accounts {
		if !active[a.ID] {
			dormant = append(dormant, a)
		}
	}

	return dormant, nil
}

// AccountActivity is one row of the top-active ranking.
type AccountActivity struct {
	AccountID int64 `json:"account_id"`
	Count     int64 `json:"count"`
}

// TopActiveToday ranks accounts by today's entry count, descending. Ties keep
// the order of first appearance in the entry log. The result is truncated to n.
func (uc *LedgerUseCase) TopActiveToday(ctx context.Context, n int) ([]AccountActivity, error) {
	since := domain.StartOfDay(uc.clock.Now())

	entries, err := uc.entries.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64)
	var firstSeen []int64
	for _, e := range entries {
		if _, ok := counts[e.AccountID]; !ok {
			firstSeen = append(firstSeen, e.AccountID)
		}
		counts[e.AccountID]++
	}

	ranked := make([]AccountActivity, 0, len(firstSeen))
	for _, id := range firstSeen {
		ranked = append(ranked, AccountActivity{AccountID: id, Count: counts[id]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	return ranked, nil
}
