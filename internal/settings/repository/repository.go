// Package repository persists the singleton settings row.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CourierConfig is the stored courier account.
type CourierConfig struct {
	APIKey          string `json:"apiKey"`
	SecretKey       string `json:"secretKey"`
	BaseURL         string `json:"baseUrl"`
	WebhookURL      string `json:"webhookUrl"`
	AccountEmail    string `json:"accountEmail"`
	AccountPassword string `json:"accountPassword"`
}

// Settings is the whole row.
type Settings struct {
	Courier   CourierConfig
	LogoKey   *string
	UpdatedAt time.Time
}

// Repository is the persistence contract for settings.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	SaveCourier(ctx context.Context, cfg CourierConfig) error
	// SetLogoKey stores the new key and returns the one it replaced.
	SetLogoKey(ctx context.Context, key string) (*string, error)
}

// Repo implements Repository on postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new settings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Get returns the settings row. A missing row reads as empty settings.
func (r *Repo) Get(ctx context.Context) (Settings, error) {
	var (
		s   Settings
		raw []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT courier_config FROM settings WHERE id = 1), '{}'::jsonb),
			(SELECT logo_key FROM settings WHERE id = 1),
			COALESCE((SELECT updated_at FROM settings WHERE id = 1), now())`,
	).Scan(&raw, &s.LogoKey, &s.UpdatedAt)
	if err != nil {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	if err := json.Unmarshal(raw, &s.Courier); err != nil {
		return Settings{}, fmt.Errorf("decode courier config: %w", err)
	}
	return s, nil
}

// SaveCourier upserts the courier config.
func (r *Repo) SaveCourier(ctx context.Context, cfg CourierConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode courier config: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO settings (id, courier_config, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET courier_config = EXCLUDED.courier_config, updated_at = now()`, raw)
	if err != nil {
		return fmt.Errorf("save courier config: %w", err)
	}
	return nil
}

// SetLogoKey upserts the logo key.
func (r *Repo) SetLogoKey(ctx context.Context, key string) (*string, error) {
	var previous *string
	err := r.pool.QueryRow(ctx, `
		WITH prev AS (SELECT logo_key FROM settings WHERE id = 1)
		INSERT INTO settings (id, logo_key, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET logo_key = EXCLUDED.logo_key, updated_at = now()
		RETURNING (SELECT logo_key FROM prev)`, key).Scan(&previous)
	if err != nil {
		return nil, fmt.Errorf("set logo key: %w", err)
	}
	return previous, nil
}
