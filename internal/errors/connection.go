package errors

import (
	"fmt"

	"github.com/recruitstack/recruitstack/internal/enum"
)

var connectionKindSentinels = map[enum.ConnectionErrorKind]error{
	enum.ConnectionErrorTimeout:       ErrConnectionTimeout,
	enum.ConnectionErrorDNS:           ErrDNSResolution,
	enum.ConnectionErrorRefused:       ErrConnectionRefused,
	enum.ConnectionErrorAuth:          ErrAuthentication,
	enum.ConnectionErrorTLS:           ErrTLS,
	enum.ConnectionErrorMailboxAccess: ErrMailboxAccess,
}

// ConnectionError describes a failed mailbox connection or mailbox selection
type ConnectionError struct {
	Kind enum.ConnectionErrorKind
	Host string
	Port int
	TLS  bool
	Err  error
}

func NewConnectionError(kind enum.ConnectionErrorKind, host string, port int, tls bool, err error) *ConnectionError {
	return &ConnectionError{Kind: kind, Host: host, Port: port, TLS: tls, Err: err}
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s:%d): %s", e.sentinel().Error(), e.Host, e.Port, e.Kind)
	}
	return fmt.Sprintf("%s (%s:%d): %s", e.sentinel().Error(), e.Host, e.Port, e.Err.Error())
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel. Every kind except mailbox access also matches ErrConnection.
func (e *ConnectionError) Is(target error) bool {
	if target == ErrConnection {
		return e.Kind != enum.ConnectionErrorMailboxAccess
	}
	return target == e.sentinel()
}

// OriginalMessage is the underlying transport error text
func (e *ConnectionError) OriginalMessage() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ConnectionError) sentinel() error {
	if sentinel, ok := connectionKindSentinels[e.Kind]; ok {
		return sentinel
	}
	return ErrConnection
}
