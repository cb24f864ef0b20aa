package email_config

import (
	"context"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/enum"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
	"github.com/recruitstack/recruitstack/services/imap"
)

const (
	DefaultTLSPort   = 993
	DefaultPlainPort = 143
)

type emailConfigService struct {
	repo        interfaces.MailboxConfigRepository
	dialer      interfaces.MailDialer
	testOptions interfaces.SessionOptions
	log         logger.Logger
}

func NewEmailConfigService(repo interfaces.MailboxConfigRepository, dialer interfaces.MailDialer, testOptions interfaces.SessionOptions, log logger.Logger) interfaces.EmailConfigService {
	return &emailConfigService{
		repo:        repo,
		dialer:      dialer,
		testOptions: testOptions,
		log:         log,
	}
}

func (s *emailConfigService) List(ctx context.Context) (*dto.MailboxConfigListResponse, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigService.List")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	configs, err := s.repo.ListAll(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list mailbox configurations")
	}

	response := &dto.MailboxConfigListResponse{Configs: make([]*dto.MailboxConfigResponse, 0, len(configs))}
	for i := range configs {
		item := dto.NewMailboxConfigResponse(&configs[i])
		response.Configs = append(response.Configs, item)
		if configs[i].IsActive && response.ActiveConfig == nil {
			response.ActiveConfig = item
		}
	}
	return response, nil
}

func (s *emailConfigService) Create(ctx context.Context, request dto.MailboxConfigRequest) (*dto.MailboxConfigResponse, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigService.Create")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	config, err := buildConfig(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	saved, err := s.repo.Save(ctx, config)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to save mailbox configuration")
	}
	tracing.TagEntity(span, saved.ID)

	s.log.Infof("Mailbox configuration %s created for %s@%s (active=%t)", saved.ID, saved.Username, saved.Host, saved.IsActive)
	return dto.NewMailboxConfigResponse(saved), nil
}

func (s *emailConfigService) Update(ctx context.Context, id string, request dto.MailboxConfigUpdateRequest) (*dto.MailboxConfigResponse, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigService.Update")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	update, err := buildUpdate(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if updated == nil {
		return nil, internalerrors.ErrConfigNotFound
	}

	if request.IsActive != nil && *request.IsActive && !updated.IsActive {
		if err := s.repo.SetActive(ctx, id); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		updated.IsActive = true
	}

	return dto.NewMailboxConfigResponse(updated), nil
}

func (s *emailConfigService) Delete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	if err := s.repo.Delete(ctx, id); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (s *emailConfigService) Activate(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigService.Activate")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	if err := s.repo.SetActive(ctx, id); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	s.log.Infof("Mailbox configuration %s activated", id)
	return nil
}

// TestActive probes the active configuration and stores the outcome on it
func (s *emailConfigService) TestActive(ctx context.Context) (*dto.ConnectionTestResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigService.TestActive")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	config, err := s.repo.GetActive(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to load active mailbox configuration")
	}
	if config == nil {
		return nil, internalerrors.ErrNoActiveConfig
	}
	tracing.TagEntity(span, config.ID)

	result := imap.TestConnection(ctx, s.dialer, config, s.testOptions)

	status := enum.TestStatusSuccess
	if !result.Success {
		status = enum.TestStatusError
	}
	if err := s.repo.RecordTestResult(ctx, config.ID, status, result.Message); err != nil {
		// the probe result is still returned to the caller
		tracing.TraceErr(span, err)
		s.log.Errorf("Failed to record test result for %s: %v", config.ID, err)
	}

	span.SetTag("success", result.Success)
	return result, nil
}

func buildConfig(request dto.MailboxConfigRequest) (*models.MailboxConfig, error) {
	validation := internalerrors.NewMultiErrors()

	host := strings.TrimSpace(request.Host)
	username := strings.TrimSpace(request.Username)
	if host == "" {
		validation.Add("host", "host is required", nil)
	}
	validateUsername(validation, username)
	if request.Password == "" || request.Password == dto.PasswordMask {
		validation.Add("password", "password is required", nil)
	}

	useTLS := utils.GetOrDefault(request.UseTLS, true)
	port := DefaultPlainPort
	if useTLS {
		port = DefaultTLSPort
	}
	if request.Port != nil {
		port = *request.Port
		validatePort(validation, port)
	}

	if err := validation.ErrOrNil(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(request.Name)
	if name == "" {
		name = models.DefaultMailboxConfigName
	}

	return &models.MailboxConfig{
		Name:     name,
		Host:     host,
		Port:     port,
		Username: username,
		Password: request.Password,
		UseTLS:   useTLS,
		IsActive: request.IsActive,
	}, nil
}

// buildUpdate keeps the stored password unless a new, unmasked one is sent
func buildUpdate(request dto.MailboxConfigUpdateRequest) (interfaces.MailboxConfigUpdate, error) {
	validation := internalerrors.NewMultiErrors()
	update := interfaces.MailboxConfigUpdate{UseTLS: request.UseTLS}

	if request.Name != nil {
		name := strings.TrimSpace(*request.Name)
		if name == "" {
			name = models.DefaultMailboxConfigName
		}
		update.Name = &name
	}
	if request.Host != nil {
		host := strings.TrimSpace(*request.Host)
		if host == "" {
			validation.Add("host", "host is required", nil)
		}
		update.Host = &host
	}
	if request.Username != nil {
		username := strings.TrimSpace(*request.Username)
		validateUsername(validation, username)
		update.Username = &username
	}
	if request.Port != nil {
		validatePort(validation, *request.Port)
		update.Port = request.Port
	}
	if request.Password != nil && *request.Password != "" && *request.Password != dto.PasswordMask {
		update.Password = request.Password
	}
	if request.IsActive != nil && !*request.IsActive {
		update.IsActive = request.IsActive
	}

	return update, validation.ErrOrNil()
}

func validatePort(validation *internalerrors.MultiErrors, port int) {
	if port < 1 || port > 65535 {
		validation.Add("port", "port must be between 1 and 65535", nil)
	}
}

// validateUsername checks the syntax only when the login looks like an address
func validateUsername(validation *internalerrors.MultiErrors, username string) {
	if username == "" {
		validation.Add("username", "username is required", nil)
		return
	}
	if strings.Contains(username, "@") && !mailvalidate.ValidateEmailSyntax(username).IsValid {
		validation.Add("username", "username is not a valid email address", nil)
	}
}
