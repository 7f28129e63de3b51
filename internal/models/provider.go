package models

// Provider is one OpenAI-compatible chat-completion endpoint from
// providers.json.
type Provider struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	Enabled bool   `json:"enabled"`
	Default bool   `json:"default,omitempty"`
}

// ProvidersConfig is the on-disk shape of providers.json.
type ProvidersConfig struct {
	Providers []Provider `json:"providers"`
}
