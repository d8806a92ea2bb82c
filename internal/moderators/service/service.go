// Package service manages back-office accounts and seeds the first admin.
package service

import (
	"context"
	"strings"

	"byabshik_backend/internal/auth/password"
	"byabshik_backend/internal/moderators/repository"
	"byabshik_backend/internal/moderators/transport"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/config"
	"byabshik_backend/platform/httpkit"
	"byabshik_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultAdminName = "Administrator"

// Service provides business logic for moderator accounts.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new moderators service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) (transport.ModeratorListResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return transport.ModeratorListResponse{}, err
	}
	out := make([]transport.ModeratorResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toResponse(m))
	}
	return transport.ModeratorListResponse{Items: out}, nil
}

// Create stores a new account with a hashed password. Role defaults to moderator.
func (s *Service) Create(ctx context.Context, req transport.CreateModeratorRequest) (transport.ModeratorResponse, error) {
	role := req.Role
	if role == "" {
		role = httpkit.RoleModerator
	}
	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.ModeratorResponse{}, apperr.Wrap(apperr.KindInternal, "could not hash password", err)
	}

	m, err := s.repo.Create(ctx, repository.CreateParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return transport.ModeratorResponse{}, err
	}

	s.log.Info("moderator created", "id", m.ID, "role", m.Role)
	return toResponse(m), nil
}

// SetActive enables or disables an account. Admins cannot lock themselves
// out and the last active admin cannot be disabled.
func (s *Service) SetActive(ctx context.Context, actorID, id uuid.UUID, active bool) (transport.ModeratorResponse, error) {
	if !active {
		if err := s.guardAdminRemoval(ctx, actorID, id); err != nil {
			return transport.ModeratorResponse{}, err
		}
	}
	m, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return transport.ModeratorResponse{}, err
	}

	s.log.Info("moderator active changed", "id", m.ID, "active", m.Active)
	return toResponse(m), nil
}

// Delete removes an account under the same guards as deactivation.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.guardAdminRemoval(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("moderator deleted", "id", id)
	return nil
}

func (s *Service) guardAdminRemoval(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperr.Validation("you cannot remove your own account")
	}
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role != httpkit.RoleAdmin || !target.Active {
		return nil
	}
	n, err := s.repo.CountAdmins(ctx, true)
	if err != nil {
		return err
	}
	if n <= 1 {
		return apperr.Conflict("the last active admin cannot be removed")
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin when no admin account exists.
// It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) (bool, error) {
	email := strings.TrimSpace(cfg.GetAdminEmail())
	if email == "" || cfg.GetAdminPassword() == "" {
		return false, nil
	}
	n, err := s.repo.CountAdmins(ctx, false)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	name := strings.TrimSpace(cfg.GetAdminName())
	if name == "" {
		name = defaultAdminName
	}
	if _, err := s.Create(ctx, transport.CreateModeratorRequest{
		Name:     name,
		Email:    email,
		Password: cfg.GetAdminPassword(),
		Role:     httpkit.RoleAdmin,
	}); err != nil {
		return false, err
	}

	s.log.Info("bootstrap admin created", "email", email)
	return true, nil
}

// IsActiveModerator reports whether id is an account that can work leads.
func (s *Service) IsActiveModerator(ctx context.Context, id uuid.UUID) (bool, error) {
	m, err := s.repo.GetByID(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Active, nil
}

// Names maps every account id to its display name.
func (s *Service) Names(ctx context.Context) (map[uuid.UUID]string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(items))
	for _, m := range items {
		names[m.ID] = m.Name
	}
	return names, nil
}

func toResponse(m repository.Moderator) transport.ModeratorResponse {
	return transport.ModeratorResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      m.Role,
		IsActive:  m.Active,
		CreatedAt: m.CreatedAt,
	}
}
