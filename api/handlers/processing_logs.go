package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/pagination"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

const defaultProcessingLogLimit = 50

// ProcessingLogs lists the most recent audit entries, optionally for one run
func ProcessingLogs(repo interfaces.ProcessingLogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.ProcessingLogs")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		limit := defaultProcessingLogLimit
		if value, err := strconv.Atoi(c.Query("limit")); err == nil && value > 0 {
			limit = min(value, pagination.MaxLimit)
		}

		entries, err := repo.ListRecent(ctx, c.Query("runId"), limit)
		if err != nil {
			respondError(c, span, err)
			return
		}
		if entries == nil {
			entries = []models.ProcessingLogEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"logs": entries, "count": len(entries)})
	}
}
