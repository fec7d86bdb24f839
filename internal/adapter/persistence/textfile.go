// Package persistence implements the flat-text snapshot collaborator. The
// encoding is fixed: one record per line, comma-separated, with a header line
// carrying the owning entity's display name (and, for accounts, a count).
package persistence

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/infrastructure/metrics"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// Snapshotter saves and loads account and order snapshots.
type Snapshotter struct {
	txManager usecase.TxManager
	accounts  usecase.AccountRepository
	orders    usecase.OrderRepository
	ledger    *usecase.LedgerUseCase
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewSnapshotter creates a new Snapshotter.
func NewSnapshotter(
	txManager usecase.TxManager,
	accounts usecase.AccountRepository,
	orders usecase.OrderRepository,
	ledger *usecase.LedgerUseCase,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Snapshotter {
	return &Snapshotter{
		txManager: txManager,
		accounts:  accounts,
		orders:    orders,
		ledger:    ledger,
		logger:    logger,
		metrics:   m,
	}
}

// SaveAccounts writes all accounts as (id,name,balance) records under a
// display-name and count header.
func (s *Snapshotter) SaveAccounts(ctx context.Context, path, displayName string) error {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintln(&b, displayName)
	fmt.Fprintln(&b, len(accounts))
	for _, a := range accounts {
		fmt.Fprintf(&b, "%d,%s,%s\n", a.ID, a.Name, a.Balance.String())
	}

	if err := s.write(ctx, path, b.String()); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.SnapshotsSaved.WithLabelValues("accounts").Inc()
	}
	s.logger.Info().Str("path", path).Int("accounts", len(accounts)).Msg("accounts snapshot saved")

	return nil
}

// LoadAccounts re-populates the ledger from an accounts snapshot. Accounts
// are re-opened in file order, so ids are reassigned sequentially; a positive
// balance lands as a fresh initial deposit, the way the ledger opens any
// account. Returns the display name from the header.
func (s *Snapshotter) LoadAccounts(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 {
		return "", fmt.Errorf("accounts snapshot %s: missing header", path)
	}

	displayName := lines[0]
	// The count line is display information only; the records are authoritative.
	loaded := 0
	for _, line := range lines[2:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return "", fmt.Errorf("accounts snapshot %s: malformed record %q", path, line)
		}

		balance, err := decimal.NewFromString(fields[2])
		if err != nil {
			return "", fmt.Errorf("accounts snapshot %s: bad balance in %q: %w", path, line, err)
		}

		if _, err := s.ledger.OpenAccount(ctx, usecase.OpenAccountInput{
			Name:           fields[1],
			InitialBalance: balance,
		}); err != nil {
			return "", fmt.Errorf("accounts snapshot %s: reopen %q: %w", path, fields[1], err)
		}
		loaded++
	}

	if s.metrics != nil {
		s.metrics.SnapshotsLoaded.WithLabelValues("accounts").Inc()
	}
	s.logger.Info().Str("path", path).Int("accounts", loaded).Msg("accounts snapshot loaded")

	return displayName, nil
}

// SaveOrders writes all orders under a display-name header.
func (s *Snapshotter) SaveOrders(ctx context.Context, path, displayName string) error {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintln(&b, displayName)
	for _, o := range orders {
		fmt.Fprintf(&b, "%d,%d,%d,%d,%s,%d,%s,%s,%d\n",
			o.ID, o.BuyerID, o.SellerID, o.ItemID, o.ItemName,
			o.Quantity, o.TotalPrice.String(), o.Status, o.CreatedAt.Unix())
	}

	if err := s.write(ctx, path, b.String()); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.SnapshotsSaved.WithLabelValues("orders").Inc()
	}
	s.logger.Info().Str("path", path).Int("orders", len(orders)).Msg("orders snapshot saved")

	return nil
}

// LoadOrders re-populates the order book from an orders snapshot. Ids are
// reassigned sequentially in file order; status and creation time are
// restored as recorded. Returns the display name from the header.
func (s *Snapshotter) LoadOrders(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 1 {
		return "", fmt.Errorf("orders snapshot %s: missing header", path)
	}
	displayName := lines[0]

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	loaded := 0
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		order, err := parseOrderRecord(line)
		if err != nil {
			return "", fmt.Errorf("orders snapshot %s: %w", path, err)
		}

		if err := s.orders.Create(ctx, tx, order); err != nil {
			return "", err
		}
		loaded++
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	if s.metrics != nil {
		s.metrics.SnapshotsLoaded.WithLabelValues("orders").Inc()
	}
	s.logger.Info().Str("path", path).Int("orders", loaded).Msg("orders snapshot loaded")

	return displayName, nil
}

func parseOrderRecord(line string) (*domain.Order, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 9 {
		return nil, fmt.Errorf("malformed record %q", line)
	}

	ints := make([]int64, 0, 5)
	for _, idx := range []int{1, 2, 3, 5, 8} {
		v, err := strconv.ParseInt(fields[idx], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad field %d in %q: %w", idx, line, err)
		}
		ints = append(ints, v)
	}

	totalPrice, err := decimal.NewFromString(fields[6])
	if err != nil {
		return nil, fmt.Errorf("bad total price in %q: %w", line, err)
	}

	status, err := domain.ParseOrderStatus(fields[7])
	if err != nil {
		return nil, fmt.Errorf("bad status in %q: %w", line, err)
	}

	return &domain.Order{
		BuyerID:    ints[0],
		SellerID:   ints[1],
		ItemID:     ints[2],
		ItemName:   fields[4],
		Quantity:   ints[3],
		TotalPrice: totalPrice,
		Status:     status,
		CreatedAt:  time.Unix(ints[4], 0),
	}, nil
}

// write persists the snapshot with retries; snapshot saves race with nothing
// and transient filesystem errors should not lose the state.
func (s *Snapshotter) write(ctx context.Context, path, content string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 5 * time.Second

	return backoff.Retry(func() error {
		err := os.WriteFile(path, []byte(content), 0o644)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("snapshot write failed, retrying")
		}
		return err
	}, backoff.WithContext(b, ctx))
}
