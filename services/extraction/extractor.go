package extraction

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/opentracing/opentracing-go"

	"github.com/recruitstack/recruitstack/interfaces"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
)

const genericMimeType = "application/octet-stream"

// Extractor turns résumé attachments into plain text with docconv
type Extractor struct {
	log logger.Logger
}

func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{log: log}
}

type conversion struct {
	text string
	err  error
}

func (e *Extractor) Extract(ctx context.Context, attachment interfaces.Attachment) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Extractor.Extract")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("attachment.name", attachment.Filename)

	if len(attachment.Content) == 0 {
		err := internalerrors.NewExtractionError("attachment is empty", nil)
		tracing.TraceErr(span, err)
		return "", err
	}

	mimeType := resolveMimeType(attachment)
	span.SetTag("mimeType", mimeType)

	if mimeType == "text/plain" {
		return plainText(attachment.Content)
	}

	// docconv is not context aware, so the caller is not kept waiting on a stuck converter
	resultCh := make(chan conversion, 1)
	go func() {
		resp, err := docconv.Convert(bytes.NewReader(attachment.Content), mimeType, false)
		if err != nil {
			resultCh <- conversion{err: err}
			return
		}
		resultCh <- conversion{text: resp.Body}
	}()

	select {
	case <-ctx.Done():
		err := internalerrors.NewExtractionError("extraction cancelled", ctx.Err())
		tracing.TraceErr(span, err)
		return "", err
	case result := <-resultCh:
		if result.err != nil {
			err := internalerrors.NewExtractionError("failed to convert "+attachment.Filename, result.err)
			tracing.TraceErr(span, err)
			e.log.Warnf("docconv failed for %s (%s): %v", attachment.Filename, mimeType, result.err)
			return "", err
		}
		text := utils.CollapseWhitespace(result.text)
		if text == "" {
			err := internalerrors.NewExtractionError("no text found in "+attachment.Filename, nil)
			tracing.TraceErr(span, err)
			return "", err
		}
		span.SetTag("text.length", len(text))
		return text, nil
	}
}

// resolveMimeType trusts the declared type unless it is missing or generic
func resolveMimeType(attachment interfaces.Attachment) string {
	mimeType := strings.ToLower(strings.TrimSpace(attachment.MimeType))
	if mimeType != "" && mimeType != genericMimeType {
		return mimeType
	}

	if strings.EqualFold(filepath.Ext(attachment.Filename), ".txt") {
		return "text/plain"
	}
	if byExt := docconv.MimeTypeByExtension(attachment.Filename); byExt != "" {
		return byExt
	}
	return genericMimeType
}

func plainText(content []byte) (string, error) {
	if !utf8.Valid(content) {
		content = bytes.ToValidUTF8(content, []byte(" "))
	}
	text := utils.CollapseWhitespace(string(content))
	if text == "" {
		return "", internalerrors.NewExtractionError("text attachment is blank", nil)
	}
	return text, nil
}
