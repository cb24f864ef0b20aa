package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/repository"
	"github.com/recruitstack/recruitstack/services/analysis"
	"github.com/recruitstack/recruitstack/services/email_config"
	"github.com/recruitstack/recruitstack/services/email_processor"
	"github.com/recruitstack/recruitstack/services/events"
	"github.com/recruitstack/recruitstack/services/export"
	"github.com/recruitstack/recruitstack/services/extraction"
	"github.com/recruitstack/recruitstack/services/imap"
	"github.com/recruitstack/recruitstack/services/storage"
)

type Services struct {
	Dialer             interfaces.MailDialer
	EmailConfigService interfaces.EmailConfigService
	EmailProcessor     interfaces.EmailProcessor
	Exporter           interfaces.CandidateExporter
	// nil when the archive or the broker is not configured
	Storage   interfaces.StorageService
	Publisher interfaces.EventPublisher

	closers []func() error
}

func InitServices(ctx context.Context, cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	services := &Services{
		Dialer:   imap.NewDialer(log),
		Exporter: export.NewExcelExporter(),
	}

	sessionOptions := interfaces.SessionOptions{
		ConnectTimeout:        cfg.ImapConfig.ConnectTimeout,
		AuthTimeout:           cfg.ImapConfig.AuthTimeout,
		TLSInsecureSkipVerify: cfg.ImapConfig.TLSInsecureSkipVerify,
	}
	probeOptions := sessionOptions
	probeOptions.ConnectTimeout = cfg.ImapConfig.ProbeTimeout

	services.EmailConfigService = email_config.NewEmailConfigService(repos.MailboxConfigRepository, services.Dialer, probeOptions, log)

	archive, err := storage.NewR2ResumeArchive(cfg.R2StorageConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init resume archive")
	}
	services.Storage = archive

	publisher, err := events.NewEventPublisher(cfg.AppConfig.RabbitMQURL, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init event publisher")
	}
	if publisher != nil {
		services.Publisher = publisher
		services.closers = append(services.closers, publisher.Close)
	}

	analyzer, closeAnalyzer, err := analysis.NewAnalyzer(ctx, cfg.AnalysisConfig, log)
	if err != nil {
		services.Close()
		return nil, errors.Wrap(err, "failed to init resume analyzer")
	}
	if closeAnalyzer != nil {
		services.closers = append(services.closers, closeAnalyzer)
	}

	services.EmailProcessor = email_processor.NewProcessor(
		email_processor.Dependencies{
			Configs:    repos.MailboxConfigRepository,
			Candidates: repos.CandidateRepository,
			Logs:       repos.ProcessingLogRepository,
			Dialer:     services.Dialer,
			Extractor:  extraction.NewExtractor(log),
			Analyzer:   analyzer,
			Storage:    services.Storage,
			Publisher:  services.Publisher,
		},
		email_processor.Options{
			Mailbox:            cfg.ImapConfig.Mailbox,
			Session:            sessionOptions,
			Concurrency:        cfg.ProcessingConfig.Concurrency,
			MaxAttachmentBytes: cfg.ProcessingConfig.MaxAttachmentBytes,
			MaxTextChars:       cfg.ProcessingConfig.MaxTextChars,
			ResumeURLPrefix:    cfg.AppConfig.ResumeURLPrefix,
		},
		log,
	)

	return services, nil
}

// Close releases the analyzer client and the broker connection
func (s *Services) Close() error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
