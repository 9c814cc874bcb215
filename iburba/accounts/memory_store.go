package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// implements Store in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Account
	byEmail map[string]string
}

// creates a new in-memory account store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Initialize(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Create(_ context.Context, email, passwordHash string, plan Plan) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = NormalizeEmail(email)
	if _, exists := s.byEmail[email]; exists {
		return nil, ErrEmailTaken
	}

	account := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Plan:         plan,
		CreatedAt:    time.Now().UTC(),
	}

	s.byID[account.ID] = account
	s.byEmail[email] = account.ID

	copied := *account
	return &copied, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *account
	return &copied, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	id, ok := s.byEmail[NormalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	return s.FindByID(ctx, id)
}

func (s *MemoryStore) TouchLogin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}

	now := time.Now().UTC()
	account.LastLoginAt = &now

	return nil
}

// removes an account, used by tests to simulate deleted users
func (s *MemoryStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account, ok := s.byID[id]; ok {
		delete(s.byEmail, account.Email)
		delete(s.byID, id)
	}
}
