// Package memory is the in-process AccountStore. Nothing is persisted; the
// store lives as long as the process that created it.
package memory

import (
	"context"
	"sync"

	"github.com/boddenberg/statement-ledger-go/internal/domain"
)

// Store keeps customers in creation order behind a single RWMutex.
type Store struct {
	mu        sync.RWMutex
	customers []*domain.Customer
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Create(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexByIdentity(customer.IdentityKey) >= 0 {
		return nil, &domain.ErrDuplicateIdentity{IdentityKey: customer.IdentityKey}
	}

	stored := customer.Clone()
	if stored.Statement == nil {
		stored.Statement = []domain.Operation{}
	}
	s.customers = append(s.customers, stored)
	return stored.Clone(), nil
}

func (s *Store) FindByIdentity(_ context.Context, identityKey string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexByIdentity(identityKey)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: identityKey}
	}
	return s.customers[i].Clone(), nil
}

func (s *Store) List(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, *c.Clone())
	}
	return out, nil
}

func (s *Store) UpdateName(_ context.Context, customerID, name string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(customerID)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}
	s.customers[i].Name = name
	return s.customers[i].Clone(), nil
}

// Remove deletes exactly the record with customerID, located by index.
func (s *Store) Remove(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(customerID)
	if i < 0 {
		return &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}
	copy(s.customers[i:], s.customers[i+1:])
	s.customers[len(s.customers)-1] = nil
	s.customers = s.customers[:len(s.customers)-1]
	return nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers), nil
}

func (s *Store) Append(_ context.Context, customerID string, build func(statement []domain.Operation) (*domain.Operation, error)) (*domain.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(customerID)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}

	c := s.customers[i]
	op, err := build(c.Statement[:len(c.Statement):len(c.Statement)])
	if err != nil {
		return nil, err
	}
	c.Statement = append(c.Statement, *op)
	out := *op
	return &out, nil
}

func (s *Store) indexByIdentity(identityKey string) int {
	for i, c := range s.customers {
		if c.IdentityKey == identityKey {
			return i
		}
	}
	return -1
}

func (s *Store) indexByID(customerID string) int {
	for i, c := range s.customers {
		if c.ID == customerID {
			return i
		}
	}
	return -1
}
