package narrator

import (
	"context"
	"log/slog"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/gemini"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/groq"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/config"
)

// NewProvider builds the chat provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg *config.NarratorConfig, logger *slog.Logger) (ChatProvider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.APIKey, cfg.BaseURL, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return groq.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout, logger), nil
	}
}
