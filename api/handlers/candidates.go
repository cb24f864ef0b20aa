package handlers

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/pagination"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
	"github.com/recruitstack/recruitstack/services/export"
)

const topSkillsLimit = 10

type CandidatesHandler struct {
	repo     interfaces.CandidateRepository
	exporter interfaces.CandidateExporter
}

func NewCandidatesHandler(repo interfaces.CandidateRepository, exporter interfaces.CandidateExporter) *CandidatesHandler {
	return &CandidatesHandler{repo: repo, exporter: exporter}
}

// List returns one page of candidates ordered by relevance score
func (h *CandidatesHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CandidatesHandler.List")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		query := c.Request.URL.Query()
		page := pagination.GetPaginationParams(query)

		result, err := h.repo.Query(ctx, candidateFilter(query), page)
		if err != nil {
			respondError(c, span, err)
			return
		}

		candidates := result.Items
		if candidates == nil {
			candidates = []models.Candidate{}
		}
		c.JSON(http.StatusOK, dto.CandidateListResponse{
			Candidates: candidates,
			Total:      result.TotalCount,
			Page:       page.Page,
			TotalPages: page.TotalPages(result.TotalCount),
			HasNext:    page.HasNext(result.TotalCount),
		})
	}
}

// Export writes every matching candidate to an xlsx workbook
func (h *CandidatesHandler) Export() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CandidatesHandler.Export")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.repo.Query(ctx, candidateFilter(c.Request.URL.Query()), nil)
		if err != nil {
			respondError(c, span, err)
			return
		}

		var buf bytes.Buffer
		if err = h.exporter.WriteCandidates(ctx, &buf, result.Items); err != nil {
			respondError(c, span, err)
			return
		}

		fileName := export.FileName(utils.Now().Format("20060102-150405"))
		c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
		c.Data(http.StatusOK, export.ContentType, buf.Bytes())
	}
}

func (h *CandidatesHandler) Stats() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CandidatesHandler.Stats")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		stats, err := h.repo.Stats(ctx, topSkillsLimit)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// candidateFilter also accepts the short education and hierarchical parameter names
func candidateFilter(query url.Values) interfaces.CandidateFilter {
	filter := interfaces.CandidateFilter{
		Search:            strings.TrimSpace(query.Get("search")),
		Department:        strings.TrimSpace(query.Get("department")),
		EducationLevel:    strings.TrimSpace(utils.FirstNonEmpty(query.Get("educationLevel"), query.Get("education"))),
		HierarchicalLevel: strings.TrimSpace(utils.FirstNonEmpty(query.Get("hierarchicalLevel"), query.Get("hierarchical"))),
	}
	if minScore, err := strconv.Atoi(query.Get("minScore")); err == nil && minScore > 0 {
		filter.MinScore = minScore
	}
	return filter
}
