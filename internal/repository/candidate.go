package repository

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/pagination"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

const highScoreThreshold = 80

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) interfaces.CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Insert(ctx context.Context, candidate *models.Candidate) (*models.Candidate, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "candidateRepository.Insert")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if candidate == nil {
		return nil, ErrInvalidInput
	}

	if err := r.db.WithContext(ctx).Create(candidate).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	tracing.TagEntity(span, candidate.ID)
	return candidate, nil
}

// Query orders by relevance score descending. A nil page returns every match.
func (r *candidateRepository) Query(ctx context.Context, filter interfaces.CandidateFilter, page *pagination.Params) (*interfaces.CandidatePage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "candidateRepository.Query")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "filter", filter)

	var total int64
	err := r.filtered(ctx, filter).Count(&total).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	query := r.filtered(ctx, filter).
		Order("relevance_score DESC").
		Order("created_at DESC")
	if page != nil {
		query = query.Offset(page.Offset).Limit(page.Limit)
	}

	var candidates []models.Candidate
	if err = query.Find(&candidates).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	span.LogKV("result.total", total, "result.count", len(candidates))
	return &interfaces.CandidatePage{Items: candidates, TotalCount: total}, nil
}

func (r *candidateRepository) filtered(ctx context.Context, filter interfaces.CandidateFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Candidate{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where("(full_name ILIKE ? OR email ILIKE ? OR executive_summary ILIKE ?)", pattern, pattern, pattern)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.EducationLevel != "" {
		query = query.Where("education_level = ?", filter.EducationLevel)
	}
	if filter.HierarchicalLevel != "" {
		query = query.Where("hierarchical_level = ?", filter.HierarchicalLevel)
	}
	if filter.MinScore > 0 {
		query = query.Where("relevance_score >= ?", filter.MinScore)
	}

	return query
}

func (r *candidateRepository) Stats(ctx context.Context, topSkills int) (*dto.CandidateStatsResponse, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "candidateRepository.Stats")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	stats := &dto.CandidateStatsResponse{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Candidate{}).Count(&stats.TotalCandidates).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	err := db.Model(&models.Candidate{}).
		Select("COALESCE(AVG(relevance_score), 0)").
		Scan(&stats.AverageScore).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	err = db.Model(&models.Candidate{}).
		Where("relevance_score >= ?", highScoreThreshold).
		Count(&stats.HighScoreCandidates).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if stats.ByDepartment, err = r.groupCounts(ctx, "department"); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if stats.ByEducationLevel, err = r.groupCounts(ctx, "education_level"); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if stats.ByHierarchicalLevel, err = r.groupCounts(ctx, "hierarchical_level"); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if topSkills <= 0 {
		topSkills = 10
	}
	stats.TopSkills = []dto.NamedCount{}
	err = db.Raw(`SELECT skill AS name, COUNT(*) AS count
		FROM candidates, unnest(skills) AS skill
		GROUP BY skill
		ORDER BY count DESC, skill ASC
		LIMIT ?`, topSkills).
		Scan(&stats.TopSkills).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return stats, nil
}

// groupCounts only accepts the fixed column names used by Stats
func (r *candidateRepository) groupCounts(ctx context.Context, column string) ([]dto.NamedCount, error) {
	rows := []dto.NamedCount{}
	err := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Select(column + " AS name, COUNT(*) AS count").
		Where(column + " IS NOT NULL AND " + column + " <> ''").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
