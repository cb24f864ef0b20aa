package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/pagination"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
)

type processingLogRepository struct {
	db *gorm.DB
}

func NewProcessingLogRepository(db *gorm.DB) interfaces.ProcessingLogRepository {
	return &processingLogRepository{db: db}
}

func (r *processingLogRepository) Insert(ctx context.Context, entry *models.ProcessingLogEntry) (*models.ProcessingLogEntry, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "processingLogRepository.Insert")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if entry == nil {
		return nil, ErrInvalidInput
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	tracing.TagEntity(span, entry.ID)
	return entry, nil
}

func (r *processingLogRepository) Update(ctx context.Context, id string, update interfaces.ProcessingLogUpdate) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "processingLogRepository.Update")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)
	span.LogKV("status", update.Status.String())

	fields := map[string]interface{}{
		"updated_at": utils.Now(),
	}
	if update.Status != "" {
		fields["processing_status"] = update.Status
	}
	if update.CandidateID != nil {
		fields["candidate_id"] = *update.CandidateID
	}
	if update.ErrorMessage != nil {
		fields["error_message"] = *update.ErrorMessage
	}

	result := r.db.WithContext(ctx).
		Model(&models.ProcessingLogEntry{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProcessingLogNotFound
	}
	return nil
}

func (r *processingLogRepository) ListRecent(ctx context.Context, runId string, limit int) ([]models.ProcessingLogEntry, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "processingLogRepository.ListRecent")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if limit <= 0 || limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}

	query := r.db.WithContext(ctx).Model(&models.ProcessingLogEntry{})
	if runId != "" {
		query = query.Where("run_id = ?", runId)
	}

	var entries []models.ProcessingLogEntry
	err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return entries, nil
}
