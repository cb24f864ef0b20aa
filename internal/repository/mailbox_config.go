package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/enum"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
)

type mailboxConfigRepository struct {
	db *gorm.DB
}

func NewMailboxConfigRepository(db *gorm.DB) interfaces.MailboxConfigRepository {
	return &mailboxConfigRepository{db: db}
}

func (r *mailboxConfigRepository) GetActive(ctx context.Context) (*models.MailboxConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigRepository.GetActive")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var config models.MailboxConfig
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		span.LogKV("result", "no active configuration")
		return nil, nil
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	tracing.TagEntity(span, config.ID)
	return &config, nil
}

func (r *mailboxConfigRepository) GetByID(ctx context.Context, id string) (*models.MailboxConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigRepository.GetByID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	var config models.MailboxConfig
	err := r.db.WithContext(ctx).First(&config, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internalerrors.ErrConfigNotFound
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &config, nil
}

func (r *mailboxConfigRepository) ListAll(ctx context.Context) ([]models.MailboxConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigRepository.ListAll")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var configs []models.MailboxConfig
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&configs).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogKV("result.count", len(configs))
	return configs, nil
}

// Save inserts a new configuration. An active one replaces the current active config in the same transaction.
func (r *mailboxConfigRepository) Save(ctx context.Context, config *models.MailboxConfig) (*models.MailboxConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigRepository.Save")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if config == nil {
		return nil, ErrInvalidInput
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if config.IsActive {
			err := tx.Model(&models.MailboxConfig{}).
				Where("is_active = ?", true).
				Updates(map[string]interface{}{"is_active": false, "updated_at": utils.Now()}).Error
			if err != nil {
				return errors.Wrap(err, "failed to deactivate mailbox configurations")
			}
		}
		return tx.Create(config).Error
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	tracing.TagEntity(span, config.ID)
	return config, nil
}

func (r *mailboxConfigRepository) Update(ctx context.Context, id string, update interfaces.MailboxConfigUpdate) (*models.MailboxConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigRepository.Update")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Host != nil {
		fields["host"] = *update.Host
	}
	if update.Port != nil {
		fields["port"] = *update.Port
	}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.Password != nil {
		fields["password"] = *update.Password
	}
	if update.UseTLS != nil {
		fields["use_tls"] = *update.UseTLS
	}
	if update.IsActive != nil {
		if *update.IsActive {
			return nil, errors.Wrap(ErrInvalidInput, "use SetActive to activate a configuration")
		}
		fields["is_active"] = false
	}

	if len(fields) > 0 {
		fields["updated_at"] = utils.Now()
		result := r.db.WithContext(ctx).
			Model(&models.MailboxConfig{}).
			Where("id = ?", id).
			Updates(fields)
		if result.Error != nil {
			tracing.TraceErr(span, result.Error)
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, internalerrors.ErrConfigNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *mailboxConfigRepository) Delete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigRepository.Delete")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	result := r.db.WithContext(ctx).Delete(&models.MailboxConfig{}, "id = ?", id)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internalerrors.ErrConfigNotFound
	}
	return nil
}

// SetActive deactivates every other configuration and activates id in one transaction.
// Calling it repeatedly with the same id leaves exactly that configuration active.
func (r *mailboxConfigRepository) SetActive(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigRepository.SetActive")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.MailboxConfig
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&target, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internalerrors.ErrConfigNotFound
		}
		if err != nil {
			return err
		}

		now := utils.Now()
		err = tx.Model(&models.MailboxConfig{}).
			Where("id <> ? AND is_active = ?", id, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error
		if err != nil {
			return errors.Wrap(err, "failed to deactivate mailbox configurations")
		}

		return tx.Model(&models.MailboxConfig{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"is_active": true, "updated_at": now}).Error
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *mailboxConfigRepository) RecordTestResult(ctx context.Context, id string, status enum.TestStatus, message string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigRepository.RecordTestResult")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)
	span.LogKV("status", status.String())

	now := utils.Now()
	result := r.db.WithContext(ctx).
		Model(&models.MailboxConfig{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_tested":  now,
			"test_status":  status,
			"test_message": message,
			"updated_at":   now,
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internalerrors.ErrConfigNotFound
	}
	return nil
}
