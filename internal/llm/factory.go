package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/lingoquiz/internal/store"
)

// NewProvider builds the configured provider wrapped as
// caller → retry → logging → vendor. A nil events repo disables the
// request log.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if events != nil {
		base = WithLogging(base, cfg.Provider, events, nil)
	}
	return WithTimeout(WithRetry(base, cfg.Retry), cfg.Timeout), nil
}

// ResolveConfig returns the LINGOQUIZ_* configuration when it carries a
// key, else whatever DiscoverConfig finds.
func ResolveConfig() (Config, error) {
	cfg := ConfigFromEnv()
	if cfg.HasKey() {
		return cfg, nil
	}
	if found, ok := DiscoverConfig(); ok {
		return found, nil
	}
	return cfg, cfg.Validate()
}
