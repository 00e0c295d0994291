package llm

import (
	"github.com/andresuchdata/inventory-agent/internal/config"
	"github.com/rs/zerolog/log"
)

// Provider ordering modes.
const (
	ModePrimary = "primary"
	ModeBackup  = "backup"
	ModeAuto    = "auto"
)

// Registry holds the ordered provider chain, built once at startup.
// A provider without credentials is skipped, not treated as a failure.
type Registry struct {
	providers []Provider
}

// NewRegistry builds the chain from configuration.
func NewRegistry(cfg config.LLMConfig) *Registry {
	var primary, backup Provider

	if cfg.GeminiAPIKey != "" {
		primary = NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RequestTimeout)
	}
	if cfg.GroqAPIKey != "" {
		backup = NewGroqProvider(cfg.GroqAPIKey, cfg.GroqModel, cfg.RequestTimeout)
	}

	var chain []Provider
	switch cfg.ProviderMode {
	case ModePrimary:
		if primary != nil {
			chain = append(chain, primary)
		}
	case ModeBackup:
		if backup != nil {
			chain = append(chain, backup)
		}
	default: // auto: primary then backup
		if primary != nil {
			chain = append(chain, primary)
		}
		if backup != nil {
			chain = append(chain, backup)
		}
	}

	if len(chain) == 0 {
		log.Warn().Str("mode", cfg.ProviderMode).Msg("no llm providers configured")
	}

	return &Registry{providers: chain}
}

// NewRegistryWithProviders builds a registry from an explicit chain.
// Used by tests to inject fakes.
func NewRegistryWithProviders(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Chain returns the ordered provider list.
func (r *Registry) Chain() []Provider { return r.providers }
