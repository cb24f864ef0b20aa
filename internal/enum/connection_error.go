package enum

// ConnectionErrorKind values are returned to API clients as details.error
type ConnectionErrorKind string

const (
	ConnectionErrorTimeout       ConnectionErrorKind = "CONNECTION_TIMEOUT"
	ConnectionErrorDNS           ConnectionErrorKind = "DNS_ERROR"
	ConnectionErrorRefused       ConnectionErrorKind = "CONNECTION_REFUSED"
	ConnectionErrorAuth          ConnectionErrorKind = "AUTH_ERROR"
	ConnectionErrorTLS           ConnectionErrorKind = "SSL_ERROR"
	ConnectionErrorMailboxAccess ConnectionErrorKind = "INBOX_ACCESS_ERROR"
	ConnectionErrorUnknown       ConnectionErrorKind = "UNKNOWN_ERROR"
	ConnectionErrorNoConfig      ConnectionErrorKind = "NO_CONFIG"
	ConnectionErrorSystem        ConnectionErrorKind = "SYSTEM_ERROR"
)

func (k ConnectionErrorKind) String() string {
	return string(k)
}
