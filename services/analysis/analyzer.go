package analysis

import (
	"context"

	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/logger"
)

const (
	ProviderVertex = "vertex"
	ProviderHTTP   = "http"
)

// NewAnalyzer builds the configured provider. The returned closer releases provider resources.
func NewAnalyzer(ctx context.Context, cfg *config.AnalysisConfig, log logger.Logger) (interfaces.ResumeAnalyzer, func() error, error) {
	switch cfg.Provider {
	case ProviderVertex, "":
		analyzer, err := NewVertexAnalyzer(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return analyzer, analyzer.Close, nil
	case ProviderHTTP:
		analyzer, err := NewHTTPAnalyzer(cfg)
		if err != nil {
			return nil, nil, err
		}
		return analyzer, func() error { return nil }, nil
	default:
		return nil, nil, errors.Errorf("unknown analysis provider %q", cfg.Provider)
	}
}
