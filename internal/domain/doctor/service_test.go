package doctor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockDoctorRepo struct {
	store map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{store: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	m.store[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return d, nil
}

func (m *mockDoctorRepo) GetByUsernameOrEmail(_ context.Context, username, email string) (*Doctor, error) {
	for _, d := range m.store {
		if d.Username == username || d.Email == email {
			return d, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockDoctorRepo) GetByAccountID(_ context.Context, accountID uuid.UUID) (*Doctor, error) {
	for _, d := range m.store {
		if d.AccountID != nil && *d.AccountID == accountID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.store[d.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.store[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, limit, offset int) ([]*Doctor, int, error) {
	var r []*Doctor
	for _, d := range m.store {
		r = append(r, d)
	}
	return r, len(r), nil
}

func newTestService() *Service {
	return NewService(newMockDoctorRepo())
}

// -- Service Tests --

func TestCreateDoctor_Success(t *testing.T) {
	svc := newTestService()
	d := &Doctor{Username: "drhouse", Email: "house@clinic.example", FullName: "Greg House",
		Institutions: []string{"PPTH"}}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
}

func TestCreateDoctor_MissingFields(t *testing.T) {
	svc := newTestService()
	cases := []*Doctor{
		{Email: "house@clinic.example", FullName: "Greg House"},
		{Username: "drhouse", FullName: "Greg House"},
		{Username: "drhouse", Email: "not-an-email", FullName: "Greg House"},
		{Username: "drhouse", Email: "house@clinic.example"},
	}
	for i, d := range cases {
		if err := svc.CreateDoctor(context.Background(), d); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCreateDoctor_Duplicate(t *testing.T) {
	svc := newTestService()
	d := &Doctor{Username: "drhouse", Email: "house@clinic.example", FullName: "Greg House"}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dup := &Doctor{Username: "drhouse", Email: "other@clinic.example", FullName: "Other"}
	if err := svc.CreateDoctor(context.Background(), dup); err == nil {
		t.Fatal("expected error for duplicate username")
	}
}

func TestUpdateDoctor_UsernameImmutable(t *testing.T) {
	svc := newTestService()
	d := &Doctor{Username: "drhouse", Email: "house@clinic.example", FullName: "Greg House"}
	svc.CreateDoctor(context.Background(), d)

	upd := &Doctor{ID: d.ID, Username: "renamed", FullName: "Gregory House"}
	if err := svc.UpdateDoctor(context.Background(), upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetDoctor(context.Background(), d.ID)
	if got.Username != "drhouse" {
		t.Error("username must not change on update")
	}
	if got.FullName != "Gregory House" {
		t.Errorf("FullName = %q, want Gregory House", got.FullName)
	}
	if got.Email != "house@clinic.example" {
		t.Error("empty email in the update should keep the existing value")
	}
}

func TestUpdateDoctor_InvalidEmail(t *testing.T) {
	svc := newTestService()
	d := &Doctor{Username: "drhouse", Email: "house@clinic.example", FullName: "Greg House"}
	svc.CreateDoctor(context.Background(), d)

	upd := &Doctor{ID: d.ID, Email: "bogus"}
	if err := svc.UpdateDoctor(context.Background(), upd); err == nil {
		t.Fatal("expected error for invalid email")
	}
}

func TestUpdateDoctor_NotFound(t *testing.T) {
	svc := newTestService()
	if err := svc.UpdateDoctor(context.Background(), &Doctor{ID: uuid.New()}); err == nil {
		t.Fatal("expected error for unknown doctor")
	}
}

func TestListDoctors(t *testing.T) {
	svc := newTestService()
	for i := 0; i < 3; i++ {
		d := &Doctor{Username: fmt.Sprintf("doc%d", i), Email: fmt.Sprintf("doc%d@clinic.example", i),
			FullName: fmt.Sprintf("Doctor %d", i)}
		if err := svc.CreateDoctor(context.Background(), d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	items, total, err := svc.ListDoctors(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("expected 3 doctors, got total=%d len=%d", total, len(items))
	}
}
