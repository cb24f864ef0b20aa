package errors

import "github.com/pkg/errors"

var (
	// configuration errors
	ErrNoActiveConfig = errors.New("no active mailbox configuration")
	ErrConfigNotFound = errors.New("mailbox configuration not found")
	ErrInvalidConfig  = errors.New("invalid mailbox configuration")

	// connection errors
	ErrConnection        = errors.New("connection error")
	ErrConnectionTimeout = errors.New("connection timeout")
	ErrDNSResolution     = errors.New("dns resolution failed")
	ErrConnectionRefused = errors.New("connection refused")
	ErrAuthentication    = errors.New("authentication failed")
	ErrTLS               = errors.New("tls negotiation failed")
	ErrMailboxAccess     = errors.New("mailbox access failed")

	// session errors
	ErrInvalidSessionState = errors.New("invalid session state")

	// processing errors
	ErrMalformedMessage     = errors.New("malformed message")
	ErrExtraction           = errors.New("text extraction failed")
	ErrAnalysis             = errors.New("resume analysis failed")
	ErrProcessingInProgress = errors.New("a processing run is already in progress")
)

// ProcessingError carries a per-message or per-attachment failure.
// errors.Is matches it against its Kind sentinel.
type ProcessingError struct {
	Kind    error
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func (e *ProcessingError) Is(target error) bool {
	return target == e.Kind
}

func NewMalformedMessageError(message string, err error) error {
	return &ProcessingError{Kind: ErrMalformedMessage, Message: message, Err: err}
}

func NewExtractionError(message string, err error) error {
	return &ProcessingError{Kind: ErrExtraction, Message: message, Err: err}
}

func NewAnalysisError(message string, err error) error {
	return &ProcessingError{Kind: ErrAnalysis, Message: message, Err: err}
}
