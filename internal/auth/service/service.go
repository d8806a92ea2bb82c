package service

import (
	"context"

	"byabshik_backend/internal/auth"
	"byabshik_backend/internal/auth/password"
	"byabshik_backend/internal/auth/repository"
	"byabshik_backend/internal/auth/token"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/logger"

	"github.com/google/uuid"
)

const msgInvalidCredentials = "invalid credentials"

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	Profile     auth.Profile
}

type Service struct {
	repo   repository.Repository
	tokens *token.Issuer
	log    *logger.Logger
}

func New(repo repository.Repository, tokens *token.Issuer, log *logger.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, log: log}
}

// Login checks the password of an active account and issues an access token.
// Unknown, inactive, and wrong-password logins fail the same way.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (Session, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.AuthEvent("login", email, false, "unknown account")
			return Session{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return Session{}, err
	}
	if !account.Active {
		s.log.AuthEvent("login", email, false, "inactive account")
		return Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err := password.Compare(account.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	accessToken, _, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindInternal, "could not issue token", err)
	}

	s.log.AuthEvent("login", email, true, "")
	return Session{AccessToken: accessToken, Profile: toProfile(account)}, nil
}

// Me returns the profile behind a token. A deactivated account is rejected
// even while its token is still valid.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (auth.Profile, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return auth.Profile{}, apperr.Unauthorized("account no longer exists")
		}
		return auth.Profile{}, err
	}
	if !account.Active {
		return auth.Profile{}, apperr.Unauthorized("account is inactive")
	}
	return toProfile(account), nil
}

func toProfile(a repository.Account) auth.Profile {
	return auth.Profile{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}
