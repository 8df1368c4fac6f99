package authorizenet

import "time"

// Mode selects which gateway environment requests are sent to.
type Mode string

const (
	ModeSandbox    Mode = "sandbox"
	ModeProduction Mode = "production"
)

const (
	productionURL = "https://api.authorize.net/xml/v1/request.api"
	sandboxURL    = "https://apitest.authorize.net/xml/v1/request.api"
)

// Config contains configuration for the Authorize.Net JSON API client
type Config struct {
	// BaseURL for the request endpoint. Normally derived from Mode; tests
	// point it at a local server.
	BaseURL string

	// HTTP client timeout. The adapter always bounds its own calls, even
	// when the surrounding process disables execution limits.
	Timeout time.Duration
}

// DefaultConfig returns the configuration for the given environment.
// Anything other than "production" resolves to the sandbox endpoint.
func DefaultConfig(mode Mode) *Config {
	baseURL := sandboxURL
	if mode == ModeProduction {
		baseURL = productionURL
	}
	return &Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}
