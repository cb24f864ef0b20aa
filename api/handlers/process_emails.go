package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

// ProcessEmails runs the pipeline once and reports the number of processed messages.
// A failed run reports no partial counts.
func ProcessEmails(processor interfaces.EmailProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.ProcessEmails")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := processor.Run(ctx)
		if err != nil {
			respondError(c, span, err)
			return
		}

		tracing.TagEntity(span, result.RunId)
		c.JSON(http.StatusOK, dto.ProcessEmailsResponse{
			Success:           true,
			Processed:         result.Processed,
			Message:           fmt.Sprintf("Processed %d emails successfully", result.Processed),
			RunId:             result.RunId,
			CandidatesCreated: result.CandidatesCreated,
			AttachmentsFailed: result.AttachmentsFailed,
		})
	}
}
