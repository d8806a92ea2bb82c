// Package service manages the courier account and brand logo settings.
package service

import (
	"context"
	"strings"

	"byabshik_backend/internal/adapters/storage"
	"byabshik_backend/internal/courier/steadfast"
	ordersvc "byabshik_backend/internal/orders/service"
	"byabshik_backend/internal/settings/repository"
	"byabshik_backend/internal/settings/transport"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/config"
	"byabshik_backend/platform/logger"
)

const maskPrefix = "********"

// LogoStore holds the brand logo. A nil store disables logo features.
type LogoStore interface {
	PutLogo(ctx context.Context, contentType string, data []byte) (string, error)
	Get(ctx context.Context, key string) (storage.Object, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// Service provides business logic for settings.
type Service struct {
	repo        repository.Repository
	store       LogoStore
	env         config.CourierConfig
	companyName string
	log         *logger.Logger
}

// New creates a new settings service.
func New(repo repository.Repository, store LogoStore, env config.CourierConfig, companyName string, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, env: env, companyName: companyName, log: log}
}

// Get returns the settings with secrets masked.
func (s *Service) Get(ctx context.Context) (transport.SettingsResponse, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		return transport.SettingsResponse{}, err
	}
	effective := s.effective(st.Courier)
	resp := transport.SettingsResponse{
		Courier: transport.CourierSettings{
			APIKey:          st.Courier.APIKey,
			SecretKey:       mask(st.Courier.SecretKey),
			BaseURL:         effective.BaseURL,
			WebhookURL:      st.Courier.WebhookURL,
			AccountEmail:    st.Courier.AccountEmail,
			AccountPassword: mask(st.Courier.AccountPassword),
			Configured:      effective.Complete(),
		},
	}
	if st.LogoKey != nil && s.store != nil {
		u, err := s.store.PresignedURL(ctx, *st.LogoKey)
		if err != nil {
			s.log.Warn("presign logo failed", "key", *st.LogoKey, "error", err)
		} else {
			resp.LogoURL = &u
		}
	}
	return resp, nil
}

// UpdateCourier stores a new courier account. Empty or still-masked
// secrets keep the stored ones.
func (s *Service) UpdateCourier(ctx context.Context, req transport.UpdateCourierRequest) (transport.SettingsResponse, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		return transport.SettingsResponse{}, err
	}
	next := repository.CourierConfig{
		APIKey:          strings.TrimSpace(req.APIKey),
		SecretKey:       keepIfEmpty(req.SecretKey, st.Courier.SecretKey),
		BaseURL:         strings.TrimRight(strings.TrimSpace(req.BaseURL), "/"),
		WebhookURL:      strings.TrimSpace(req.WebhookURL),
		AccountEmail:    strings.TrimSpace(req.AccountEmail),
		AccountPassword: keepIfEmpty(req.AccountPassword, st.Courier.AccountPassword),
	}
	if err := s.repo.SaveCourier(ctx, next); err != nil {
		return transport.SettingsResponse{}, err
	}
	s.log.Info("courier settings updated", "baseUrl", next.BaseURL, "hasApiKey", next.APIKey != "")
	return s.Get(ctx)
}

// UploadLogo stores a new brand logo and drops the previous one.
func (s *Service) UploadLogo(ctx context.Context, contentType string, data []byte) (transport.LogoResponse, error) {
	if s.store == nil {
		return transport.LogoResponse{}, apperr.Unavailable("logo storage is not configured")
	}
	if !strings.HasPrefix(storage.NormalizeContentType(contentType), "image/") {
		return transport.LogoResponse{}, apperr.Validation("logo must be an image")
	}
	if _, err := storage.ValidateLogo(contentType, int64(len(data)), 0); err != nil {
		return transport.LogoResponse{}, apperr.Validation(err.Error())
	}

	key, err := s.store.PutLogo(ctx, contentType, data)
	if err != nil {
		return transport.LogoResponse{}, apperr.Validation(err.Error())
	}
	previous, err := s.repo.SetLogoKey(ctx, key)
	if err != nil {
		_ = s.store.Delete(ctx, key)
		return transport.LogoResponse{}, err
	}
	if previous != nil && *previous != key {
		if err := s.store.Delete(ctx, *previous); err != nil {
			s.log.Warn("delete old logo failed", "key", *previous, "error", err)
		}
	}

	u, err := s.store.PresignedURL(ctx, key)
	if err != nil {
		return transport.LogoResponse{}, err
	}
	return transport.LogoResponse{LogoKey: key, LogoURL: u}, nil
}

// CourierCredentials returns the stored account, falling back field by
// field to the environment.
func (s *Service) CourierCredentials(ctx context.Context) (steadfast.Credentials, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		return steadfast.Credentials{}, err
	}
	return s.effective(st.Courier), nil
}

func (s *Service) effective(c repository.CourierConfig) steadfast.Credentials {
	creds := steadfast.Credentials{BaseURL: c.BaseURL, APIKey: c.APIKey, SecretKey: c.SecretKey}
	if s.env == nil {
		return creds
	}
	if creds.BaseURL == "" {
		creds.BaseURL = s.env.GetCourierBaseURL()
	}
	if creds.APIKey == "" {
		creds.APIKey = s.env.GetCourierAPIKey()
	}
	if creds.SecretKey == "" {
		creds.SecretKey = s.env.GetCourierSecretKey()
	}
	return creds
}

// InvoiceBrand returns the company name and logo for invoices.
func (s *Service) InvoiceBrand(ctx context.Context) (ordersvc.Brand, error) {
	brand := ordersvc.Brand{CompanyName: s.companyName}
	if s.store == nil {
		return brand, nil
	}
	st, err := s.repo.Get(ctx)
	if err != nil {
		return brand, err
	}
	if st.LogoKey == nil {
		return brand, nil
	}
	obj, err := s.store.Get(ctx, *st.LogoKey)
	if err != nil {
		return brand, err
	}
	brand.Logo, brand.ContentType = obj.Data, obj.ContentType
	return brand, nil
}

func keepIfEmpty(next, stored string) string {
	if strings.TrimSpace(next) == "" || strings.HasPrefix(next, maskPrefix) {
		return stored
	}
	return strings.TrimSpace(next)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return maskPrefix
	}
	return maskPrefix + secret[len(secret)-4:]
}
