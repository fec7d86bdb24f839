// Package mocks provides hand-rolled test doubles for the use case
// interfaces. Each mock is a small map-backed store with per-method override
// hooks; set a Func field to inject behavior, leave it nil to get the
// default.
package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
	order    []int64
	nextID   int64

	CreateFunc            func(ctx context.Context, tx usecase.Tx, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id int64) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Tx, id int64) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Tx, ids []int64) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Tx, id int64, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc              func(ctx context.Context) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[int64]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	account.ID = m.nextID
	m.accounts[account.ID] = account
	m.order = append(m.order, account.ID)
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id int64) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Tx, ids []int64) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.order))
	for _, id := range m.order {
		accounts = append(accounts, m.accounts[id])
	}
	return accounts, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	entries []*domain.Transaction
	nextID  int64

	CreateFunc             func(ctx context.Context, tx usecase.Tx, entry *domain.Transaction) error
	ListByAccountSinceFunc func(ctx context.Context, accountID int64, since time.Time) ([]*domain.Transaction, error)
	ListSinceFunc          func(ctx context.Context, since time.Time) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Tx, entry *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry.ID = m.nextID
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockTransactionRepository) ListByAccountSince(ctx context.Context, accountID int64, since time.Time) ([]*domain.Transaction, error) {
	if m.ListByAccountSinceFunc != nil {
		return m.ListByAccountSinceFunc(ctx, accountID, since)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Transaction
	for _, e := range m.entries {
		if e.AccountID == accountID && !e.CreatedAt.Before(since) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MockTransactionRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.Transaction, error) {
	if m.ListSinceFunc != nil {
		return m.ListSinceFunc(ctx, since)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Transaction
	for _, e := range m.entries {
		if !e.CreatedAt.Before(since) {
			result = append(result, e)
		}
	}
	return result, nil
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[int64]*domain.Order
	order  []int64
	nextID int64

	CreateFunc           func(ctx context.Context, tx usecase.Tx, order *domain.Order) error
	GetByIDFunc          func(ctx context.Context, id int64) (*domain.Order, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Tx, id int64) (*domain.Order, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Tx, id int64, status domain.OrderStatus) error
	ListByBuyerFunc      func(ctx context.Context, buyerID int64) ([]*domain.Order, error)
	ListBySellerFunc     func(ctx context.Context, sellerID int64) ([]*domain.Order, error)
	ListByStatusFunc     func(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	ListSinceFunc        func(ctx context.Context, since time.Time) ([]*domain.Order, error)
	ListFunc             func(ctx context.Context) ([]*domain.Order, error)
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[int64]*domain.Order),
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, tx usecase.Tx, order *domain.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	order.ID = m.nextID
	m.orders[order.ID] = order
	m.order = append(m.order, order.ID)
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id int64) (*domain.Order, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx usecase.Tx, id int64, status domain.OrderStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		o.Status = status
		return nil
	}
	return domain.ErrOrderNotFound
}

func (m *MockOrderRepository) list(keep func(*domain.Order) bool) []*domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Order
	for _, id := range m.order {
		if o := m.orders[id]; keep(o) {
			result = append(result, o)
		}
	}
	return result
}

func (m *MockOrderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	if m.ListByBuyerFunc != nil {
		return m.ListByBuyerFunc(ctx, buyerID)
	}
	return m.list(func(o *domain.Order) bool { return o.BuyerID == buyerID }), nil
}

func (m *MockOrderRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error) {
	if m.ListBySellerFunc != nil {
		return m.ListBySellerFunc(ctx, sellerID)
	}
	return m.list(func(o *domain.Order) bool { return o.SellerID == sellerID }), nil
}

func (m *MockOrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status)
	}
	return m.list(func(o *domain.Order) bool { return o.Status == status }), nil
}

func (m *MockOrderRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.Order, error) {
	if m.ListSinceFunc != nil {
		return m.ListSinceFunc(ctx, since)
	}
	return m.list(func(o *domain.Order) bool { return !o.CreatedAt.Before(since) }), nil
}

func (m *MockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return m.list(func(*domain.Order) bool { return true }), nil
}

// MockItemRepository is a mock implementation of ItemRepository.
type MockItemRepository struct {
	mu     sync.RWMutex
	items  map[int64]*domain.Item
	order  []int64
	nextID int64

	CreateFunc           func(ctx context.Context, item *domain.Item) error
	GetByIDFunc          func(ctx context.Context, id int64) (*domain.Item, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Tx, id int64) (*domain.Item, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Tx, item *domain.Item) error
	ListBySellerFunc     func(ctx context.Context, sellerID int64) ([]*domain.Item, error)
}

func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[int64]*domain.Item),
	}
}

func (m *MockItemRepository) Create(ctx context.Context, item *domain.Item) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item.ID = m.nextID
	m.items[item.ID] = item
	m.order = append(m.order, item.ID)
	return nil
}

func (m *MockItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, domain.ErrItemNotFound
}

func (m *MockItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id int64) (*domain.Item, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockItemRepository) Update(ctx context.Context, tx usecase.Tx, item *domain.Item) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *MockItemRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Item, error) {
	if m.ListBySellerFunc != nil {
		return m.ListBySellerFunc(ctx, sellerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Item
	for _, id := range m.order {
		if item := m.items[id]; item.SellerID == sellerID {
			result = append(result, item)
		}
	}
	return result, nil
}

// MockPartyRepository is a mock implementation of PartyRepository.
type MockPartyRepository struct {
	mu      sync.RWMutex
	parties map[int64]*domain.Party
	order   []int64
	nextID  int64

	CreateFunc  func(ctx context.Context, party *domain.Party) error
	GetByIDFunc func(ctx context.Context, id int64) (*domain.Party, error)
	UpdateFunc  func(ctx context.Context, party *domain.Party) error
	ListFunc    func(ctx context.Context) ([]*domain.Party, error)
}

func NewMockPartyRepository() *MockPartyRepository {
	return &MockPartyRepository{
		parties: make(map[int64]*domain.Party),
	}
}

func (m *MockPartyRepository) Create(ctx context.Context, party *domain.Party) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, party)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	party.ID = m.nextID
	m.parties[party.ID] = party
	m.order = append(m.order, party.ID)
	return nil
}

func (m *MockPartyRepository) GetByID(ctx context.Context, id int64) (*domain.Party, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.parties[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPartyNotFound
}

func (m *MockPartyRepository) Update(ctx context.Context, party *domain.Party) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, party)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.parties[party.ID]; !ok {
		return domain.ErrPartyNotFound
	}
	m.parties[party.ID] = party
	return nil
}

func (m *MockPartyRepository) List(ctx context.Context) ([]*domain.Party, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	parties := make([]*domain.Party, 0, len(m.order))
	for _, id := range m.order {
		parties = append(parties, m.parties[id])
	}
	return parties, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Tx, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Tx, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			result = append(result, e)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

// Events returns all staged events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockTx is a no-op unit of work.
type MockTx struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTx) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTxManager hands out no-op transactions.
type MockTxManager struct {
	BeginFunc func(ctx context.Context) (usecase.Tx, error)

	Last *MockTx
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) Begin(ctx context.Context) (usecase.Tx, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.Last = &MockTx{}
	return m.Last, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu sync.Mutex
	n  int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return "event-" + strconv.Itoa(m.n)
}
