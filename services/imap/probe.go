package imap

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/enum"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

const inboxMailbox = "INBOX"

// TestConnection opens a session, selects INBOX read-only and closes it again.
// It never returns an error; the outcome is described by the result.
func TestConnection(ctx context.Context, dialer interfaces.MailDialer, config *models.MailboxConfig, opts interfaces.SessionOptions) *dto.ConnectionTestResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "imap.TestConnection")
	defer span.Finish()
	tracing.SetDefaultImapSpanTags(ctx, span)

	result := &dto.ConnectionTestResult{
		Details: dto.ConnectionTestDetails{
			Host: config.Host,
			Port: config.Port,
			TLS:  config.UseTLS,
		},
	}

	session, err := dialer.Open(ctx, config, opts)
	if err != nil {
		tracing.TraceErr(span, err)
		describeFailure(result, config, err)
		return result
	}
	defer session.Close()

	mailbox, err := session.SelectMailbox(ctx, inboxMailbox, true)
	if err != nil {
		tracing.TraceErr(span, err)
		describeFailure(result, config, err)
		return result
	}

	messages := mailbox.MessageCount
	result.Success = true
	result.Message = fmt.Sprintf("Connected to %s:%d. INBOX is accessible with %d messages.", config.Host, config.Port, messages)
	result.Details.Messages = &messages
	return result
}

func describeFailure(result *dto.ConnectionTestResult, config *models.MailboxConfig, err error) {
	kind := enum.ConnectionErrorUnknown
	original := err.Error()

	var connErr *internalerrors.ConnectionError
	if errors.As(err, &connErr) {
		kind = connErr.Kind
		if msg := connErr.OriginalMessage(); msg != "" {
			original = msg
		}
	}

	result.Success = false
	result.Details.Error = kind.String()
	result.Details.OriginalError = original
	result.Message = failureMessage(kind, config, original)
}

func failureMessage(kind enum.ConnectionErrorKind, config *models.MailboxConfig, original string) string {
	switch kind {
	case enum.ConnectionErrorTimeout:
		return fmt.Sprintf("Connection to %s:%d timed out", config.Host, config.Port)
	case enum.ConnectionErrorDNS:
		return fmt.Sprintf("Could not resolve server name %s", config.Host)
	case enum.ConnectionErrorRefused:
		return fmt.Sprintf("Connection refused by %s:%d. Check the port.", config.Host, config.Port)
	case enum.ConnectionErrorAuth:
		return "Authentication failed. Check the username and password."
	case enum.ConnectionErrorTLS:
		return "SSL/TLS certificate error. Try disabling TLS or check the server certificate."
	case enum.ConnectionErrorMailboxAccess:
		return fmt.Sprintf("Connected but INBOX could not be opened: %s", original)
	default:
		return fmt.Sprintf("Connection error: %s", original)
	}
}
