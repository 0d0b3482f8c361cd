package mocks

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/content-ideas-api/internal/models"
)

// MockIdeaRepository is an in-memory IdeaRepository. Collections are stored
// as encoded JSON so callers never share slices with the mock.
type MockIdeaRepository struct {
	mu        sync.Mutex
	Documents map[string][]byte
	LoadError error
	SaveError error
	LockError error
	LoadCalls int
	SaveCalls int
	// OnSave runs after each successful Save, e.g. to cancel the caller
	OnSave func()
}

func NewMockIdeaRepository() *MockIdeaRepository {
	return &MockIdeaRepository{
		Documents: make(map[string][]byte),
	}
}

// Seed stores a raw document for user, e.g. a legacy record
func (m *MockIdeaRepository) Seed(user string, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Documents[user] = []byte(raw)
}

// Raw returns the stored document bytes for user
func (m *MockIdeaRepository) Raw(user string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.Documents[user]...)
}

func (m *MockIdeaRepository) Load(ctx context.Context, user string) ([]models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls++
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	raw, ok := m.Documents[user]
	if !ok {
		return nil, nil
	}
	var ideas []models.Idea
	if err := json.Unmarshal(raw, &ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

func (m *MockIdeaRepository) Save(ctx context.Context, user string, ideas []models.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	if ideas == nil {
		ideas = []models.Idea{}
	}
	raw, err := json.Marshal(ideas)
	if err != nil {
		return err
	}
	m.Documents[user] = raw
	if m.OnSave != nil {
		m.OnSave()
	}
	return nil
}

func (m *MockIdeaRepository) Lock(ctx context.Context, user string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LockError != nil {
		return nil, m.LockError
	}
	return func() {}, nil
}

func (m *MockIdeaRepository) Users(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	users := make([]string, 0, len(m.Documents))
	for user := range m.Documents {
		users = append(users, user)
	}
	sort.Strings(users)
	return users, nil
}

// SetLoadError sets the error returned by Load
func (m *MockIdeaRepository) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadError = err
}

// SetLockError sets the error returned by Lock
func (m *MockIdeaRepository) SetLockError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockError = err
}

// SetOnSave installs a hook run after each successful Save
func (m *MockIdeaRepository) SetOnSave(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OnSave = fn
}

// SetSaveError sets the error returned by Save
func (m *MockIdeaRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveError = err
}

// Saves returns how many times Save was called
func (m *MockIdeaRepository) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SaveCalls
}

// MockCounterRepository is an in-memory CounterRepository
type MockCounterRepository struct {
	mu             sync.Mutex
	Counters       map[string]models.Counters
	GetError       error
	IncrementError error
	SetError       error
	HealthError    error
	IncrementCalls int
}

func NewMockCounterRepository() *MockCounterRepository {
	return &MockCounterRepository{
		Counters: make(map[string]models.Counters),
	}
}

func (m *MockCounterRepository) Get(ctx context.Context, user string) (models.Counters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return models.Counters{}, m.GetError
	}
	return m.Counters[user], nil
}

func (m *MockCounterRepository) Increment(ctx context.Context, user string, ideas, articles int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IncrementCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.IncrementError != nil {
		return m.IncrementError
	}
	c := m.Counters[user]
	c.IdeasGenerated += ideas
	c.ArticlesGenerated += articles
	m.Counters[user] = c
	return nil
}

func (m *MockCounterRepository) Set(ctx context.Context, user string, counters models.Counters) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetError != nil {
		return m.SetError
	}
	m.Counters[user] = counters
	return nil
}

// Snapshot returns the stored counters for user
func (m *MockCounterRepository) Snapshot(user string) models.Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counters[user]
}

// SetIncrementError sets the error returned by Increment
func (m *MockCounterRepository) SetIncrementError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IncrementError = err
}

// SetGetError sets the error returned by Get
func (m *MockCounterRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetError = err
}

func (m *MockCounterRepository) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.HealthError
}
