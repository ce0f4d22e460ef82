package mocks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
)

// MockEntryRepository is a mock implementation of EntryRepository. Entries
// are kept in append order per user, which is chain order.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry
	byUser  map[string][]*domain.Entry

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	SetLinkedEntryFunc func(ctx context.Context, tx usecase.Transaction, id, linkedEntryID string) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Entry, error)
	GetLastByUserFunc  func(ctx context.Context, userID string) (*domain.Entry, error)
	ListByUserFunc     func(ctx context.Context, userID string, limit, offset int) ([]*domain.Entry, error)
	ListChainFunc      func(ctx context.Context, userID string) ([]*domain.Entry, error)
	CountByUserFunc    func(ctx context.Context, userID string) (int64, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.Entry),
		byUser:  make(map[string][]*domain.Entry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	m.byUser[entry.UserID] = append(m.byUser[entry.UserID], entry)
	return nil
}

func (m *MockEntryRepository) SetLinkedEntry(ctx context.Context, tx usecase.Transaction, id, linkedEntryID string) error {
	if m.SetLinkedEntryFunc != nil {
		return m.SetLinkedEntryFunc(ctx, tx, id, linkedEntryID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	entry.LinkedEntryID = &linkedEntryID
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, ok := m.entries[id]; ok {
		return entry, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetLastByUser(ctx context.Context, userID string) (*domain.Entry, error) {
	if m.GetLastByUserFunc != nil {
		return m.GetLastByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := m.byUser[userID]
	if len(chain) == 0 {
		return nil, domain.ErrEntryNotFound
	}
	return chain[len(chain)-1], nil
}

func (m *MockEntryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Entry, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := m.byUser[userID]
	var page []*domain.Entry
	for i := len(chain) - 1 - offset; i >= 0 && len(page) < limit; i-- {
		page = append(page, chain[i])
	}
	return page, nil
}

func (m *MockEntryRepository) ListChain(ctx context.Context, userID string) ([]*domain.Entry, error) {
	if m.ListChainFunc != nil {
		return m.ListChainFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := make([]*domain.Entry, len(m.byUser[userID]))
	copy(chain, m.byUser[userID])
	return chain, nil
}

func (m *MockEntryRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.CountByUserFunc != nil {
		return m.CountByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.byUser[userID])), nil
}

// MockContributionRepository is a mock implementation of ContributionRepository.
type MockContributionRepository struct {
	mu            sync.RWMutex
	contributions map[string]*domain.Contribution

	CreateFunc        func(ctx context.Context, contribution *domain.Contribution) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Contribution, error)
	UpdatePendingFunc func(ctx context.Context, contribution *domain.Contribution) error
	MarkConfirmedFunc func(ctx context.Context, tx usecase.Transaction, id, moderatorID, entryID string, at time.Time) error
	MarkDeniedFunc    func(ctx context.Context, id, moderatorID string, at time.Time) error
	MarkDeletedFunc   func(ctx context.Context, id, deletedBy string, at time.Time) error
}

func NewMockContributionRepository() *MockContributionRepository {
	return &MockContributionRepository{
		contributions: make(map[string]*domain.Contribution),
	}
}

func (m *MockContributionRepository) Create(ctx context.Context, contribution *domain.Contribution) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, contribution)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributions[contribution.ID] = contribution
	return nil
}

func (m *MockContributionRepository) GetByID(ctx context.Context, id string) (*domain.Contribution, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.contributions[id]; ok {
		return c, nil
	}
	return nil, domain.ErrContributionNotFound
}

func (m *MockContributionRepository) UpdatePending(ctx context.Context, contribution *domain.Contribution) error {
	if m.UpdatePendingFunc != nil {
		return m.UpdatePendingFunc(ctx, contribution)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributions[contribution.ID] = contribution
	return nil
}

func (m *MockContributionRepository) MarkConfirmed(ctx context.Context, tx usecase.Transaction, id, moderatorID, entryID string, at time.Time) error {
	if m.MarkConfirmedFunc != nil {
		return m.MarkConfirmedFunc(ctx, tx, id, moderatorID, entryID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contributions[id]
	if !ok {
		return domain.ErrContributionNotFound
	}
	c.Status = domain.ContributionStatusConfirmed
	c.ConfirmedBy = &moderatorID
	c.ConfirmedAt = &at
	c.EntryID = &entryID
	c.UpdatedAt = at
	return nil
}

func (m *MockContributionRepository) MarkDenied(ctx context.Context, id, moderatorID string, at time.Time) error {
	if m.MarkDeniedFunc != nil {
		return m.MarkDeniedFunc(ctx, id, moderatorID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contributions[id]
	if !ok {
		return domain.ErrContributionNotFound
	}
	c.Status = domain.ContributionStatusDenied
	c.DeniedBy = &moderatorID
	c.DeniedAt = &at
	c.UpdatedAt = at
	return nil
}

func (m *MockContributionRepository) MarkDeleted(ctx context.Context, id, deletedBy string, at time.Time) error {
	if m.MarkDeletedFunc != nil {
		return m.MarkDeletedFunc(ctx, id, deletedBy, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contributions[id]
	if !ok {
		return domain.ErrContributionNotFound
	}
	c.Status = domain.ContributionStatusDeleted
	c.DeletedBy = &deletedBy
	c.DeletedAt = &at
	c.UpdatedAt = at
	return nil
}

func (m *MockContributionRepository) ListByUser(ctx context.Context, userID string, statuses []domain.ContributionStatus, limit, offset int) ([]*domain.Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Contribution
	for _, c := range m.contributions {
		if c.UserID == userID && matchesStatus(c, statuses) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockContributionRepository) ListAll(ctx context.Context, statuses []domain.ContributionStatus, limit, offset int) ([]*domain.Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Contribution
	for _, c := range m.contributions {
		if matchesStatus(c, statuses) {
			out = append(out, c)
		}
	}
	return out, nil
}

func matchesStatus(c *domain.Contribution, statuses []domain.ContributionStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

// MockLinkRepository is a mock implementation of LinkRepository.
type MockLinkRepository struct {
	mu    sync.RWMutex
	links map[string]*domain.TransferLink

	CreateFunc             func(ctx context.Context, tx usecase.Transaction, link *domain.TransferLink) error
	GetByCodeFunc          func(ctx context.Context, code string) (*domain.TransferLink, error)
	GetByCodeForUpdateFunc func(ctx context.Context, tx usecase.Transaction, code string) (*domain.TransferLink, error)
	MarkRedeemedFunc       func(ctx context.Context, tx usecase.Transaction, id, redeemedBy string, at time.Time) error
	SumActiveHoldsFunc     func(ctx context.Context, userID string, asOf time.Time) (decimal.Decimal, error)
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		links: make(map[string]*domain.TransferLink),
	}
}

func (m *MockLinkRepository) Create(ctx context.Context, tx usecase.Transaction, link *domain.TransferLink) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, link)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link.ID] = link
	return nil
}

func (m *MockLinkRepository) GetByID(ctx context.Context, id string) (*domain.TransferLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if link, ok := m.links[id]; ok {
		return link, nil
	}
	return nil, domain.ErrLinkNotFound
}

func (m *MockLinkRepository) GetByCode(ctx context.Context, code string) (*domain.TransferLink, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, link := range m.links {
		if link.Code == code {
			return link, nil
		}
	}
	return nil, domain.ErrLinkNotFound
}

func (m *MockLinkRepository) GetByCodeForUpdate(ctx context.Context, tx usecase.Transaction, code string) (*domain.TransferLink, error) {
	if m.GetByCodeForUpdateFunc != nil {
		return m.GetByCodeForUpdateFunc(ctx, tx, code)
	}
	return m.GetByCode(ctx, code)
}

func (m *MockLinkRepository) MarkRedeemed(ctx context.Context, tx usecase.Transaction, id, redeemedBy string, at time.Time) error {
	if m.MarkRedeemedFunc != nil {
		return m.MarkRedeemedFunc(ctx, tx, id, redeemedBy, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return domain.ErrLinkNotFound
	}
	if link.RedeemedAt != nil {
		return domain.ErrLinkRedeemed
	}
	link.RedeemedAt = &at
	link.RedeemedBy = &redeemedBy
	return nil
}

func (m *MockLinkRepository) SumActiveHolds(ctx context.Context, userID string, asOf time.Time) (decimal.Decimal, error) {
	if m.SumActiveHoldsFunc != nil {
		return m.SumActiveHoldsFunc(ctx, userID, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, link := range m.links {
		if link.UserID == userID && link.RedeemedAt == nil && link.ValidUntil.After(asOf) {
			sum = sum.Add(link.HoldAvailableAmount)
		}
	}
	return sum, nil
}

func (m *MockLinkRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.TransferLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TransferLink
	for _, link := range m.links {
		if link.UserID == userID {
			out = append(out, link)
		}
	}
	return out, nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	ListFunc       func(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.User
	for _, user := range m.users {
		out = append(out, user)
	}
	return out, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns a snapshot of all recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu   sync.Mutex
	txs  []*MockTransaction
	Fail error

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	if m.Fail != nil {
		return nil, m.Fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.txs = append(m.txs, tx)
	return tx, nil
}

// Transactions returns all transactions handed out so far.
func (m *MockTransactionManager) Transactions() []*MockTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MockTransaction, len(m.txs))
	copy(out, m.txs)
	return out
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	counter atomic.Int64

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return fmt.Sprintf("id-%06d", m.counter.Add(1))
}

// MockCache is a mock implementation of Cache. TTLs are ignored.
type MockCache struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MockNotifier records notifications.
type MockNotifier struct {
	mu     sync.Mutex
	Events []string
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, event string, payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}
