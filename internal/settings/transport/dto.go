// Package transport holds the request and response shapes of the settings API.
package transport

// CourierSettings is the courier account as shown to admins. Secrets are
// masked.
type CourierSettings struct {
	APIKey          string `json:"apiKey"`
	SecretKey       string `json:"secretKey"`
	BaseURL         string `json:"baseUrl"`
	WebhookURL      string `json:"webhookUrl"`
	AccountEmail    string `json:"accountEmail"`
	AccountPassword string `json:"accountPassword"`
	Configured      bool   `json:"configured"`
}

// SettingsResponse is the admin settings view.
type SettingsResponse struct {
	Courier CourierSettings `json:"courier"`
	LogoURL *string         `json:"logoUrl"`
}

// UpdateCourierRequest replaces the courier account. Empty secrets keep
// the stored value.
type UpdateCourierRequest struct {
	APIKey          string `json:"apiKey" validate:"max=200"`
	SecretKey       string `json:"secretKey" validate:"max=200"`
	BaseURL         string `json:"baseUrl" validate:"omitempty,url,max=300"`
	WebhookURL      string `json:"webhookUrl" validate:"omitempty,url,max=300"`
	AccountEmail    string `json:"accountEmail" validate:"omitempty,email,max=200"`
	AccountPassword string `json:"accountPassword" validate:"max=200"`
}

// LogoResponse is returned after a logo upload.
type LogoResponse struct {
	LogoKey string `json:"logoKey"`
	LogoURL string `json:"logoUrl"`
}
