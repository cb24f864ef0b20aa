package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/enum"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

type EmailConfigHandler struct {
	svc interfaces.EmailConfigService
}

func NewEmailConfigHandler(svc interfaces.EmailConfigService) *EmailConfigHandler {
	return &EmailConfigHandler{svc: svc}
}

func (h *EmailConfigHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailConfigHandler.List")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		response, err := h.svc.List(ctx)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, response)
	}
}

func (h *EmailConfigHandler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailConfigHandler.Create")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.MailboxConfigRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			badRequest(c, span, err)
			return
		}

		config, err := h.svc.Create(ctx, request)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "config": config})
	}
}

func (h *EmailConfigHandler) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailConfigHandler.Update")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.MailboxConfigUpdateRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			badRequest(c, span, err)
			return
		}

		config, err := h.svc.Update(ctx, c.Param("id"), request)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "config": config})
	}
}

func (h *EmailConfigHandler) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailConfigHandler.Delete")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		if err := h.svc.Delete(ctx, c.Param("id")); err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *EmailConfigHandler) Activate() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailConfigHandler.Activate")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.ActivateMailboxConfigRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			badRequest(c, span, errors.Wrap(err, "configuration id is required"))
			return
		}
		tracing.TagEntity(span, request.ID)

		if err := h.svc.Activate(ctx, request.ID); err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": request.ID})
	}
}

// Test always answers with a ConnectionTestResult body, including on failure
func (h *EmailConfigHandler) Test() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailConfigHandler.Test")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.svc.TestActive(ctx)
		switch {
		case errors.Is(err, internalerrors.ErrNoActiveConfig):
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, dto.ConnectionTestResult{
				Message: "No active email configuration",
				Details: dto.ConnectionTestDetails{Error: enum.ConnectionErrorNoConfig.String()},
			})
		case err != nil:
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, dto.ConnectionTestResult{
				Message: err.Error(),
				Details: dto.ConnectionTestDetails{
					Error:         enum.ConnectionErrorSystem.String(),
					OriginalError: err.Error(),
				},
			})
		default:
			c.JSON(http.StatusOK, result)
		}
	}
}
