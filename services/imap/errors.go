package imap

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/internal/enum"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/models"
)

// stage is the step of the connection lifecycle an error came from
type stage int

const (
	stageDial stage = iota
	stageTLS
	stageGreeting
	stageLogin
	stageCommand
)

// ClassifyError maps a transport or protocol error onto the connection error taxonomy
func ClassifyError(err error) enum.ConnectionErrorKind {
	return classify(err, stageCommand)
}

func classify(err error, at stage) enum.ConnectionErrorKind {
	if err == nil {
		return ""
	}

	var connErr *internalerrors.ConnectionError
	if errors.As(err, &connErr) {
		return connErr.Kind
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return enum.ConnectionErrorDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return enum.ConnectionErrorRefused
	}

	if isTimeout(err) {
		return enum.ConnectionErrorTimeout
	}

	if isTLSError(err) {
		return enum.ConnectionErrorTLS
	}

	if at == stageTLS && !isConnectionLost(err) {
		return enum.ConnectionErrorTLS
	}

	// anything the server answers to LOGIN that is not a broken connection is a credential rejection
	if at == stageLogin && !isConnectionLost(err) {
		return enum.ConnectionErrorAuth
	}

	return classifyMessage(err.Error())
}

func classifyMessage(message string) enum.ConnectionErrorKind {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "enotfound") || strings.Contains(msg, "no such host"):
		return enum.ConnectionErrorDNS
	case strings.Contains(msg, "econnrefused") || strings.Contains(msg, "connection refused"):
		return enum.ConnectionErrorRefused
	case strings.Contains(msg, "etimedout") || strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout"):
		return enum.ConnectionErrorTimeout
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "invalid credentials") || strings.Contains(msg, "login failed"):
		return enum.ConnectionErrorAuth
	case strings.Contains(msg, "certificate") || strings.Contains(msg, "x509") || strings.Contains(msg, "tls:"):
		return enum.ConnectionErrorTLS
	default:
		return enum.ConnectionErrorUnknown
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func isTLSError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		invalidCert      x509.CertificateInvalidError
		verificationErr  *tls.CertificateVerificationError
		recordHeaderErr  tls.RecordHeaderError
		alertErr         tls.AlertError
	)
	return errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) ||
		errors.As(err, &verificationErr) ||
		errors.As(err, &recordHeaderErr) ||
		errors.As(err, &alertErr)
}

// isConnectionLost reports errors that mean the socket is gone rather than the server said no
func isConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	errorMsg := err.Error()
	return strings.Contains(errorMsg, "connection closed") ||
		strings.Contains(errorMsg, "i/o timeout") ||
		strings.Contains(errorMsg, "EOF") ||
		strings.Contains(errorMsg, "connection reset")
}

func newConnectionError(config *models.MailboxConfig, kind enum.ConnectionErrorKind, err error) *internalerrors.ConnectionError {
	return internalerrors.NewConnectionError(kind, config.Host, config.Port, config.UseTLS, err)
}
