package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/internal/enum"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/repository"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// respondError maps the error taxonomy to a status code and a JSON body
func respondError(c *gin.Context, span opentracing.Span, err error) {
	tracing.TraceErr(span, err)

	var validation *internalerrors.MultiErrors
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "VALIDATION_ERROR",
			Message: err.Error(),
			Fields:  validationFields(validation),
		})
	case errors.Is(err, internalerrors.ErrNoActiveConfig):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   enum.ConnectionErrorNoConfig.String(),
			Message: "No active email configuration. Configure and activate a mailbox first.",
		})
	case errors.Is(err, internalerrors.ErrConfigNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, internalerrors.ErrProcessingInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "PROCESSING_IN_PROGRESS", Message: err.Error()})
	case errors.Is(err, repository.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func badRequest(c *gin.Context, span opentracing.Span, err error) {
	tracing.TraceErr(span, err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_REQUEST", Message: err.Error()})
}

func validationFields(validation *internalerrors.MultiErrors) map[string][]string {
	fields := make(map[string][]string, len(validation.Errors))
	for field, infos := range validation.Errors {
		for _, info := range infos {
			fields[field] = append(fields[field], info.Message)
		}
	}
	return fields
}
