package service

import (
	"context"
	"testing"
	"time"

	"byabshik_backend/internal/auth/password"
	"byabshik_backend/internal/moderators/repository"
	"byabshik_backend/internal/moderators/transport"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	items  []repository.Moderator
	hashes map[uuid.UUID]string
}

func newFakeRepo(items ...repository.Moderator) *fakeRepo {
	return &fakeRepo{items: items, hashes: map[uuid.UUID]string{}}
}

func (f *fakeRepo) List(context.Context) ([]repository.Moderator, error) {
	return append([]repository.Moderator(nil), f.items...), nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Moderator, error) {
	for _, m := range f.items {
		if m.ID == id {
			return m, nil
		}
	}
	return repository.Moderator{}, apperr.NotFound("moderator not found")
}

func (f *fakeRepo) Create(_ context.Context, p repository.CreateParams) (repository.Moderator, error) {
	for _, m := range f.items {
		if m.Email == p.Email {
			return repository.Moderator{}, apperr.Conflict("email already in use")
		}
	}
	m := repository.Moderator{ID: uuid.New(), Name: p.Name, Email: p.Email, Role: p.Role, Active: true, CreatedAt: time.Now()}
	f.items = append(f.items, m)
	f.hashes[m.ID] = p.PasswordHash
	return m, nil
}

func (f *fakeRepo) SetActive(_ context.Context, id uuid.UUID, active bool) (repository.Moderator, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Active = active
			return f.items[i], nil
		}
	}
	return repository.Moderator{}, apperr.NotFound("moderator not found")
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("moderator not found")
}

func (f *fakeRepo) CountAdmins(_ context.Context, activeOnly bool) (int, error) {
	n := 0
	for _, m := range f.items {
		if m.Role == "admin" && (!activeOnly || m.Active) {
			n++
		}
	}
	return n, nil
}

type bootstrapConfig struct{ email, password, name string }

func (b bootstrapConfig) GetAdminEmail() string    { return b.email }
func (b bootstrapConfig) GetAdminPassword() string { return b.password }
func (b bootstrapConfig) GetAdminName() string     { return b.name }

func TestCreateHashesPasswordAndDefaultsRole(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, logger.New("test"))

	resp, err := svc.Create(context.Background(), transport.CreateModeratorRequest{
		Name: " Salma ", Email: "Salma@Byabshik.com", Password: "long-enough",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.Role != "moderator" || resp.Email != "salma@byabshik.com" || resp.Name != "Salma" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if err := password.Compare(repo.hashes[resp.ID], "long-enough"); err != nil {
		t.Fatalf("stored hash does not match: %v", err)
	}

	_, err = svc.Create(context.Background(), transport.CreateModeratorRequest{
		Name: "Other", Email: "salma@byabshik.com", Password: "long-enough",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestRemovalGuards(t *testing.T) {
	admin := repository.Moderator{ID: uuid.New(), Name: "Admin", Email: "a@x.com", Role: "admin", Active: true}
	mod := repository.Moderator{ID: uuid.New(), Name: "Mod", Email: "m@x.com", Role: "moderator", Active: true}
	other := uuid.New()
	svc := New(newFakeRepo(admin, mod), logger.New("test"))

	if err := svc.Delete(context.Background(), admin.ID, admin.ID); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error on self delete, got %v", err)
	}
	if _, err := svc.SetActive(context.Background(), other, admin.ID, false); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on disabling last admin, got %v", err)
	}
	resp, err := svc.SetActive(context.Background(), admin.ID, mod.ID, false)
	if err != nil || resp.IsActive {
		t.Fatalf("expected moderator disabled, got %+v, %v", resp, err)
	}
	if err := svc.Delete(context.Background(), admin.ID, mod.ID); err != nil {
		t.Fatalf("delete moderator: %v", err)
	}
	if err := svc.Delete(context.Background(), admin.ID, mod.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	cases := []struct {
		name     string
		existing []repository.Moderator
		cfg      bootstrapConfig
		created  bool
	}{
		{"empty table", nil, bootstrapConfig{"root@byabshik.com", "changeme123", ""}, true},
		{"no credentials", nil, bootstrapConfig{}, false},
		{
			"admin exists",
			[]repository.Moderator{{ID: uuid.New(), Email: "boss@x.com", Role: "admin", Active: false}},
			bootstrapConfig{"root@byabshik.com", "changeme123", "Root"},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo(tc.existing...)
			svc := New(repo, logger.New("test"))

			created, err := svc.EnsureAdmin(context.Background(), tc.cfg)
			if err != nil {
				t.Fatalf("ensure admin: %v", err)
			}
			if created != tc.created {
				t.Fatalf("created = %v, want %v", created, tc.created)
			}
			if created {
				m := repo.items[len(repo.items)-1]
				if m.Role != "admin" || m.Name != defaultAdminName {
					t.Fatalf("unexpected bootstrap account %+v", m)
				}
			}
		})
	}
}

func TestDirectory(t *testing.T) {
	active := repository.Moderator{ID: uuid.New(), Name: "Rina", Role: "moderator", Active: true}
	inactive := repository.Moderator{ID: uuid.New(), Name: "Tuhin", Role: "moderator", Active: false}
	svc := New(newFakeRepo(active, inactive), logger.New("test"))
	ctx := context.Background()

	for id, want := range map[uuid.UUID]bool{active.ID: true, inactive.ID: false, uuid.New(): false} {
		got, err := svc.IsActiveModerator(ctx, id)
		if err != nil {
			t.Fatalf("is active: %v", err)
		}
		if got != want {
			t.Fatalf("IsActiveModerator(%s) = %v, want %v", id, got, want)
		}
	}

	names, err := svc.Names(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if names[active.ID] != "Rina" || names[inactive.ID] != "Tuhin" {
		t.Fatalf("unexpected names %v", names)
	}
}
