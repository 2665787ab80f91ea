package property

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/comparables/internal/domain"
	"github.com/kailas-cloud/comparables/internal/domain/geo"
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
)

// --- Mocks ---

type mockRepo struct {
	getFn    func(id string) (domprop.Property, error)
	listFn   func() ([]domprop.Property, error)
	deleteFn func(id string) (int, error)
	calls    int
}

func (m *mockRepo) Get(_ context.Context, id string) (domprop.Property, error) {
	m.calls++
	return m.getFn(id)
}

func (m *mockRepo) List(_ context.Context) ([]domprop.Property, error) {
	m.calls++
	return m.listFn()
}

func (m *mockRepo) Delete(_ context.Context, id string) (int, error) {
	m.calls++
	return m.deleteFn(id)
}

func sample(t *testing.T, id string) domprop.Property {
	t.Helper()
	p, err := domprop.New(id, "venta", "ph", 4, geo.NewPoint(-34.6, -58.4), domprop.Details{})
	if err != nil {
		t.Fatalf("new property: %v", err)
	}
	return p
}

// --- Tests ---

func TestGet_Success(t *testing.T) {
	repo := &mockRepo{getFn: func(id string) (domprop.Property, error) { return sample(t, id), nil }}
	svc := New(repo)

	p, err := svc.Get(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID() != "p-1" {
		t.Errorf("id = %q", p.ID())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{getFn: func(string) (domprop.Property, error) {
		return domprop.Property{}, domain.ErrPropertyNotFound
	}}
	_, err := New(repo).Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestGet_EmptyID(t *testing.T) {
	repo := &mockRepo{}
	_, err := New(repo).Get(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.calls != 0 {
		t.Error("store must not be called")
	}
}

func TestList(t *testing.T) {
	repo := &mockRepo{listFn: func() ([]domprop.Property, error) {
		return []domprop.Property{sample(t, "b"), sample(t, "a")}, nil
	}}
	props, err := New(repo).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(props) != 2 || props[0].ID() != "b" {
		t.Errorf("unexpected order: %v", props)
	}
}

func TestList_Error(t *testing.T) {
	repo := &mockRepo{listFn: func() ([]domprop.Property, error) { return nil, domain.ErrStoreUnavailable }}
	_, err := New(repo).List(context.Background())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	var deleted string
	repo := &mockRepo{deleteFn: func(id string) (int, error) {
		deleted = id
		return 7, nil
	}}
	total, err := New(repo).Delete(context.Background(), "p-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "p-9" || total != 7 {
		t.Errorf("deleted=%q total=%d", deleted, total)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockRepo{deleteFn: func(string) (int, error) { return 0, domain.ErrPropertyNotFound }}
	_, err := New(repo).Delete(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}
