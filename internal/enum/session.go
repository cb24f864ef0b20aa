package enum

type SessionState string

const (
	SessionDisconnected     SessionState = "disconnected"
	SessionConnecting       SessionState = "connecting"
	SessionReady            SessionState = "ready"
	SessionSelectingMailbox SessionState = "selecting_mailbox"
	SessionIdle             SessionState = "idle"
	SessionSearching        SessionState = "searching"
	SessionFetching         SessionState = "fetching"
	SessionClosed           SessionState = "closed"
	SessionErrored          SessionState = "errored"
)

func (s SessionState) String() string {
	return string(s)
}
