package patient

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kinedesk/kinedesk/internal/platform/querycache"
	"github.com/kinedesk/kinedesk/pkg/validation"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[int64]*Patient
	nextID   int64
	lists    int // number of List calls that reached the repo
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[int64]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, q ListQuery) ([]*Patient, int, error) {
	m.lists++
	var rows []*Patient
	for _, p := range m.patients {
		if q.Search != "" && !matches(p, q.Search) {
			continue
		}
		cp := *p
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].FirstName < rows[j].FirstName
	})
	return rows, len(rows), nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	return len(m.patients), nil
}

func matches(p *Patient, search string) bool {
	s := strings.ToLower(search)
	for _, field := range []string{p.Name, p.FirstName, p.Phone, p.NationalID} {
		if strings.Contains(strings.ToLower(field), s) {
			return true
		}
	}
	return false
}

func newTestService(repo Repository) *Service {
	return NewService(repo, querycache.New(time.Minute), zerolog.Nop())
}

// -- Tests --

func TestCreate_RequiresName(t *testing.T) {
	svc := newTestService(newMockRepo())

	err := svc.Create(context.Background(), &Patient{Name: "   "})
	if err == nil {
		t.Fatal("expected validation error for blank name")
	}
	if !validation.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreate_TrimsAndAssignsDefaults(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	p := &Patient{Name: "  Idrissi ", FirstName: " Amina ", Email: " Amina@Example.COM "}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if p.ID == 0 {
		t.Error("expected assigned id")
	}
	if p.Name != "Idrissi" || p.FirstName != "Amina" {
		t.Errorf("name fields not trimmed: %q %q", p.Name, p.FirstName)
	}
	if p.Email != "amina@example.com" {
		t.Errorf("email = %q", p.Email)
	}
	if p.CreatedAt == "" {
		t.Error("expected created_at to default to today")
	}
}

func TestCreate_RejectsBadBirthDate(t *testing.T) {
	svc := newTestService(newMockRepo())

	err := svc.Create(context.Background(), &Patient{Name: "Idrissi", BirthDate: "28/08/1990"})
	if !validation.IsValidation(err) {
		t.Fatalf("err = %v, want validation error for locale-format date", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(newMockRepo())

	err := svc.Update(context.Background(), &Patient{ID: 42, Name: "Idrissi"})
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := newTestService(newMockRepo())

	if err := svc.Delete(context.Background(), 99); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestList_ServedThroughCache(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	if err := svc.Create(context.Background(), &Patient{Name: "Idrissi", FirstName: "Amina"}); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.List(context.Background(), ListQuery{}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.List(context.Background(), ListQuery{}); err != nil {
		t.Fatal(err)
	}
	if repo.lists != 1 {
		t.Errorf("repo List calls = %d, want 1 (second read should hit the cache)", repo.lists)
	}

	// Different filter parameters form a different cache key.
	if _, _, err := svc.List(context.Background(), ListQuery{Search: "amina"}); err != nil {
		t.Fatal(err)
	}
	if repo.lists != 2 {
		t.Errorf("repo List calls = %d, want 2", repo.lists)
	}
}

func TestList_ReadAfterWriteIsFresh(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	if err := svc.Create(context.Background(), &Patient{Name: "Idrissi"}); err != nil {
		t.Fatal(err)
	}

	rows, _, err := svc.List(context.Background(), ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d", len(rows))
	}

	// The write invalidates synchronously; the next read must see the new row.
	if err := svc.Create(context.Background(), &Patient{Name: "Alaoui"}); err != nil {
		t.Fatal(err)
	}
	rows, _, err = svc.List(context.Background(), ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("read after write returned %d rows, want 2", len(rows))
	}
	if rows[0].Name != "Alaoui" {
		t.Errorf("ordering by name: first row = %s", rows[0].Name)
	}
}
