package interfaces

import (
	"context"
	"time"

	"github.com/recruitstack/recruitstack/internal/enum"
	"github.com/recruitstack/recruitstack/internal/models"
)

type MailboxInfo struct {
	Name         string
	MessageCount uint32
	ReadOnly     bool
}

// RawMessage is the full RFC 5322 body of one fetched message
type RawMessage struct {
	UID  uint32
	Body []byte
}

type SessionOptions struct {
	ConnectTimeout        time.Duration
	AuthTimeout           time.Duration
	TLSInsecureSkipVerify bool
}

// MailSession is a single authenticated connection. It must be closed on every path.
type MailSession interface {
	State() enum.SessionState
	SelectMailbox(ctx context.Context, name string, readOnly bool) (*MailboxInfo, error)
	SearchUnseen(ctx context.Context) ([]uint32, error)
	// Fetch streams messages; the error channel receives exactly one value once the stream ends
	Fetch(ctx context.Context, uids []uint32) (<-chan RawMessage, <-chan error)
	Close() error
}

type MailDialer interface {
	Open(ctx context.Context, config *models.MailboxConfig, opts SessionOptions) (MailSession, error)
}
