package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/statement-ledger-go/internal/domain"
	"github.com/boddenberg/statement-ledger-go/internal/infra/memory"
)

func newCustomer(id, key, name string) *domain.Customer {
	return &domain.Customer{ID: id, IdentityKey: key, Name: name}
}

func credit(amount float64) func([]domain.Operation) (*domain.Operation, error) {
	return func(_ []domain.Operation) (*domain.Operation, error) {
		return &domain.Operation{Type: domain.OperationCredit, Amount: amount, CreatedAt: time.Now()}, nil
	}
}

func TestStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	created, err := s.Create(ctx, newCustomer("id-1", "111", "Ana"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Statement == nil || len(created.Statement) != 0 {
		t.Errorf("expected empty statement, got %#v", created.Statement)
	}

	found, err := s.FindByIdentity(ctx, "111")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found.ID != "id-1" || found.Name != "Ana" {
		t.Errorf("unexpected customer %+v", found)
	}
}

func TestStore_CreateDuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	if _, err := s.Create(ctx, newCustomer("id-1", "222", "Ana")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, err := s.Create(ctx, newCustomer("id-2", "222", "Bruno"))

	var dup *domain.ErrDuplicateIdentity
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("expected exactly one record, got %d", n)
	}
}

func TestStore_FindUnknown(t *testing.T) {
	_, err := memory.NewStore().FindByIdentity(context.Background(), "nobody")

	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	for i := 0; i < 5; i++ {
		s.Create(ctx, newCustomer(fmt.Sprintf("id-%d", i), fmt.Sprintf("%d", i), "x"))
	}

	list, _ := s.List(ctx)
	if len(list) != 5 {
		t.Fatalf("expected 5 customers, got %d", len(list))
	}
	for i, c := range list {
		if c.ID != fmt.Sprintf("id-%d", i) {
			t.Errorf("position %d: expected id-%d, got %s", i, i, c.ID)
		}
	}
}

func TestStore_RemoveExactRecord(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.Create(ctx, newCustomer("id-a", "a", "A"))
	s.Create(ctx, newCustomer("id-b", "b", "B"))
	s.Create(ctx, newCustomer("id-c", "c", "C"))

	if err := s.Remove(ctx, "id-b"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	list, _ := s.List(ctx)
	if len(list) != 2 || list[0].ID != "id-a" || list[1].ID != "id-c" {
		t.Errorf("expected [id-a id-c], got %+v", list)
	}

	var notFound *domain.ErrNotFound
	if err := s.Remove(ctx, "id-b"); !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestStore_RemoveFirstAndLast(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.Create(ctx, newCustomer("id-a", "a", "A"))
	s.Create(ctx, newCustomer("id-b", "b", "B"))
	s.Create(ctx, newCustomer("id-c", "c", "C"))

	s.Remove(ctx, "id-a")
	s.Remove(ctx, "id-c")

	list, _ := s.List(ctx)
	if len(list) != 1 || list[0].ID != "id-b" {
		t.Errorf("expected [id-b], got %+v", list)
	}
}

func TestStore_UpdateName(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.Create(ctx, newCustomer("id-1", "111", "Ana"))

	updated, err := s.UpdateName(ctx, "id-1", "Ana Maria")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Name != "Ana Maria" || updated.IdentityKey != "111" {
		t.Errorf("unexpected customer %+v", updated)
	}

	var notFound *domain.ErrNotFound
	if _, err := s.UpdateName(ctx, "id-x", "x"); !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AppendBuildErrorAppendsNothing(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.Create(ctx, newCustomer("id-1", "111", "Ana"))

	boom := errors.New("rejected")
	_, err := s.Append(ctx, "id-1", func(_ []domain.Operation) (*domain.Operation, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}

	c, _ := s.FindByIdentity(ctx, "111")
	if len(c.Statement) != 0 {
		t.Errorf("expected empty statement, got %d entries", len(c.Statement))
	}
}

func TestStore_ReturnedCustomerIsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.Create(ctx, newCustomer("id-1", "111", "Ana"))
	s.Append(ctx, "id-1", credit(10))

	c, _ := s.FindByIdentity(ctx, "111")
	c.Name = "changed"
	c.Statement[0].Amount = 1000

	again, _ := s.FindByIdentity(ctx, "111")
	if again.Name != "Ana" || again.Statement[0].Amount != 10 {
		t.Errorf("store state leaked through snapshot: %+v", again)
	}
}

func TestStore_ConcurrentAppendsAreAllKept(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.Create(ctx, newCustomer("id-1", "111", "Ana"))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(ctx, "id-1", credit(1))
		}()
	}
	wg.Wait()

	c, _ := s.FindByIdentity(ctx, "111")
	if len(c.Statement) != 100 {
		t.Errorf("expected 100 operations, got %d", len(c.Statement))
	}
	if b := domain.Balance(c.Statement); b != 100 {
		t.Errorf("expected balance 100, got %f", b)
	}
}

func TestStore_ConcurrentCreateSameIdentity(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Create(ctx, newCustomer(fmt.Sprintf("id-%d", i), "333", "x"))
		}(i)
	}
	wg.Wait()

	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("expected exactly one record, got %d", n)
	}
}
