package service

import (
	"context"
	"testing"
	"time"

	"byabshik_backend/internal/auth/password"
	"byabshik_backend/internal/auth/repository"
	"byabshik_backend/internal/auth/token"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	accounts []repository.Account
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (repository.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return repository.Account{}, apperr.NotFound("account not found")
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return repository.Account{}, apperr.NotFound("account not found")
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	hash, err := password.Hash("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &fakeRepo{accounts: []repository.Account{
		{ID: uuid.New(), Name: "Rahim", Email: "rahim@byabshik.com", PasswordHash: hash, Role: "moderator", Active: true},
		{ID: uuid.New(), Name: "Karim", Email: "karim@byabshik.com", PasswordHash: hash, Role: "moderator", Active: false},
	}}
	return New(repo, token.NewIssuer("secret", time.Hour, nil), logger.New("test")), repo
}

func TestLoginIssuesToken(t *testing.T) {
	svc, repo := newTestService(t)

	session, err := svc.Login(context.Background(), "rahim@byabshik.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if session.Profile.ID != repo.accounts[0].ID || session.Profile.Role != "moderator" {
		t.Fatalf("unexpected profile %+v", session.Profile)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown account", "nobody@byabshik.com", "correct-horse"},
		{"inactive account", "karim@byabshik.com", "correct-horse"},
		{"wrong password", "rahim@byabshik.com", "battery-staple"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			if !apperr.Is(err, apperr.KindUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if err.Error() != msgInvalidCredentials {
				t.Fatalf("expected %q, got %q", msgInvalidCredentials, err.Error())
			}
		})
	}
}

func TestMeRejectsInactiveAccount(t *testing.T) {
	svc, repo := newTestService(t)

	profile, err := svc.Me(context.Background(), repo.accounts[0].ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if profile.Email != "rahim@byabshik.com" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if _, err := svc.Me(context.Background(), repo.accounts[1].ID); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for inactive account, got %v", err)
	}
	if _, err := svc.Me(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for missing account, got %v", err)
	}
}
