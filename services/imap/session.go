package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/enum"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

const (
	defaultConnectTimeout = 60 * time.Second
	defaultAuthTimeout    = 30 * time.Second
	logoutTimeout         = 5 * time.Second
)

var allowedTransitions = map[enum.SessionState][]enum.SessionState{
	enum.SessionDisconnected:     {enum.SessionConnecting},
	enum.SessionConnecting:       {enum.SessionReady},
	enum.SessionReady:            {enum.SessionSelectingMailbox},
	enum.SessionSelectingMailbox: {enum.SessionIdle, enum.SessionReady},
	enum.SessionIdle:             {enum.SessionSelectingMailbox, enum.SessionSearching, enum.SessionFetching},
	enum.SessionSearching:        {enum.SessionIdle},
	enum.SessionFetching:         {enum.SessionIdle},
}

type Dialer struct {
	log logger.Logger
}

func NewDialer(log logger.Logger) *Dialer {
	return &Dialer{log: log}
}

type session struct {
	mu        sync.Mutex
	state     enum.SessionState
	config    *models.MailboxConfig
	client    *client.Client
	log       logger.Logger
	closeOnce sync.Once
	closeErr  error
	stopWatch func() bool
}

// Open connects, reads the greeting and logs in. The returned session is Ready.
// Cancelling ctx at any later point terminates the connection.
func (d *Dialer) Open(ctx context.Context, config *models.MailboxConfig, opts interfaces.SessionOptions) (interfaces.MailSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Dialer.Open")
	defer span.Finish()
	tracing.SetDefaultImapSpanTags(ctx, span)

	if config == nil {
		return nil, internalerrors.ErrNoActiveConfig
	}
	span.SetTag("server", config.Host)
	span.SetTag("port", config.Port)
	span.SetTag("tls", config.UseTLS)
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = defaultAuthTimeout
	}

	s := &session{state: enum.SessionDisconnected, config: config, log: d.log}
	if err := s.transition(enum.SessionConnecting); err != nil {
		return nil, err
	}

	c, err := d.connect(ctx, config, opts)
	if err != nil {
		s.setState(enum.SessionErrored)
		tracing.TraceErr(span, err)
		return nil, err
	}
	s.client = c

	c.Timeout = opts.AuthTimeout
	err = c.Login(config.Username, config.Password)
	c.Timeout = 0
	if err != nil {
		s.setState(enum.SessionErrored)
		_ = c.Terminate()
		connErr := newConnectionError(config, classify(err, stageLogin), err)
		tracing.TraceErr(span, connErr)
		d.log.Warnf("IMAP login to %s failed: %v", config.Host, err)
		return nil, connErr
	}

	if err := s.transition(enum.SessionReady); err != nil {
		_ = c.Terminate()
		return nil, err
	}
	s.stopWatch = context.AfterFunc(ctx, s.abort)

	d.log.Debugf("IMAP session opened to %s:%d as %s", config.Host, config.Port, config.Username)
	return s, nil
}

func (d *Dialer) connect(ctx context.Context, config *models.MailboxConfig, opts interfaces.SessionOptions) (*client.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	serverAddr := net.JoinHostPort(config.Host, fmt.Sprintf("%d", config.Port))
	dialer := &net.Dialer{KeepAlive: 30 * time.Second}

	conn, err := dialer.DialContext(connectCtx, "tcp", serverAddr)
	if err != nil {
		return nil, newConnectionError(config, classifyConnectFailure(connectCtx, err, stageDial), err)
	}

	if config.UseTLS {
		tlsConn := tls.Client(conn, &tls.Config{
			ServerName:         config.Host,
			InsecureSkipVerify: opts.TLSInsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		})
		if err := tlsConn.HandshakeContext(connectCtx); err != nil {
			_ = conn.Close()
			return nil, newConnectionError(config, classifyConnectFailure(connectCtx, err, stageTLS), err)
		}
		conn = tlsConn
	}

	stop := context.AfterFunc(connectCtx, func() {
		_ = conn.Close()
	})
	if deadline, ok := connectCtx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := client.New(conn)
	if !stop() {
		// connect context fired while waiting for the greeting
		if err == nil {
			err = connectCtx.Err()
		}
		_ = conn.Close()
		return nil, newConnectionError(config, classifyConnectFailure(connectCtx, err, stageGreeting), err)
	}
	if err != nil {
		_ = conn.Close()
		return nil, newConnectionError(config, classifyConnectFailure(connectCtx, err, stageGreeting), err)
	}
	_ = conn.SetDeadline(time.Time{})

	return c, nil
}

func classifyConnectFailure(ctx context.Context, err error, at stage) enum.ConnectionErrorKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return enum.ConnectionErrorTimeout
	}
	return classify(err, at)
}

func (s *session) State() enum.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) SelectMailbox(ctx context.Context, name string, readOnly bool) (*interfaces.MailboxInfo, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailSession.SelectMailbox")
	defer span.Finish()
	tracing.SetDefaultImapSpanTags(ctx, span)
	span.SetTag("mailbox", name)
	span.SetTag("readOnly", readOnly)

	if err := s.transition(enum.SessionSelectingMailbox); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	stop := context.AfterFunc(ctx, s.abort)
	status, err := s.client.Select(name, readOnly)
	stop()

	if err != nil {
		if s.connectionLost(ctx, err) {
			connErr := s.fail(err)
			tracing.TraceErr(span, connErr)
			return nil, connErr
		}
		_ = s.transition(enum.SessionReady)
		connErr := newConnectionError(s.config, enum.ConnectionErrorMailboxAccess, err)
		tracing.TraceErr(span, connErr)
		return nil, connErr
	}

	if err := s.transition(enum.SessionIdle); err != nil {
		return nil, err
	}

	span.SetTag("messages", status.Messages)
	return &interfaces.MailboxInfo{
		Name:         status.Name,
		MessageCount: status.Messages,
		ReadOnly:     status.ReadOnly,
	}, nil
}

func (s *session) SearchUnseen(ctx context.Context) ([]uint32, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailSession.SearchUnseen")
	defer span.Finish()
	tracing.SetDefaultImapSpanTags(ctx, span)

	if err := s.transition(enum.SessionSearching); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	stop := context.AfterFunc(ctx, s.abort)
	uids, err := s.client.UidSearch(criteria)
	stop()

	if err != nil {
		if s.connectionLost(ctx, err) {
			connErr := s.fail(err)
			tracing.TraceErr(span, connErr)
			return nil, connErr
		}
		_ = s.transition(enum.SessionIdle)
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to search unseen messages")
	}

	if err := s.transition(enum.SessionIdle); err != nil {
		return nil, err
	}

	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	span.SetTag("unseen", len(uids))
	return uids, nil
}

// Fetch streams full message bodies. The caller must drain the message channel
// or cancel ctx; the error channel then receives exactly one value.
func (s *session) Fetch(ctx context.Context, uids []uint32) (<-chan interfaces.RawMessage, <-chan error) {
	out := make(chan interfaces.RawMessage)
	done := make(chan error, 1)

	if err := s.transition(enum.SessionFetching); err != nil {
		close(out)
		done <- err
		return out, done
	}

	if len(uids) == 0 {
		close(out)
		done <- s.transition(enum.SessionIdle)
		return out, done
	}

	go func() {
		defer close(out)

		span, ctx := opentracing.StartSpanFromContext(ctx, "MailSession.Fetch")
		defer span.Finish()
		tracing.SetDefaultImapSpanTags(ctx, span)
		span.SetTag("uids", len(uids))

		seqSet := new(imap.SeqSet)
		seqSet.AddNum(uids...)

		section := &imap.BodySectionName{}
		items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

		stop := context.AfterFunc(ctx, s.abort)
		defer stop()

		messages := make(chan *imap.Message, 10)
		fetchDone := make(chan error, 1)
		go func() {
			fetchDone <- s.client.UidFetch(seqSet, items, messages)
		}()

		delivered := 0
		cancelled := false
		for msg := range messages {
			if cancelled || msg == nil {
				continue
			}

			raw := interfaces.RawMessage{UID: msg.Uid}
			if body := msg.GetBody(section); body != nil {
				data, err := io.ReadAll(body)
				if err != nil {
					s.log.Warnf("Failed to read body of message %d: %v", msg.Uid, err)
				}
				raw.Body = data
			}

			select {
			case out <- raw:
				delivered++
			case <-ctx.Done():
				// keep draining so UidFetch can return
				cancelled = true
			}
		}

		err := <-fetchDone
		span.SetTag("delivered", delivered)

		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err != nil {
			if s.connectionLost(ctx, err) {
				connErr := s.fail(err)
				tracing.TraceErr(span, connErr)
				done <- connErr
				return
			}
			_ = s.transition(enum.SessionIdle)
			tracing.TraceErr(span, err)
			done <- errors.Wrap(err, "failed to fetch messages")
			return
		}

		done <- s.transition(enum.SessionIdle)
	}()

	return out, done
}

// Close logs out and falls back to terminating the connection. Safe to call more than once.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		if s.stopWatch != nil {
			s.stopWatch()
		}

		s.mu.Lock()
		errored := s.state == enum.SessionErrored
		s.mu.Unlock()

		if s.client == nil {
			s.setState(enum.SessionClosed)
			return
		}

		if errored {
			_ = s.client.Terminate()
			s.setState(enum.SessionClosed)
			return
		}

		s.client.Timeout = logoutTimeout
		logoutDone := make(chan error, 1)
		go func() {
			logoutDone <- s.client.Logout()
		}()

		select {
		case err := <-logoutDone:
			if err != nil {
				s.log.Debugf("IMAP logout from %s failed, terminating: %v", s.config.Host, err)
				s.closeErr = s.client.Terminate()
			}
		case <-time.After(logoutTimeout):
			s.log.Warnf("IMAP logout from %s timed out, terminating", s.config.Host)
			s.closeErr = s.client.Terminate()
		}
		s.setState(enum.SessionClosed)
	})
	return s.closeErr
}

// abort terminates the connection so any pending command fails fast
func (s *session) abort() {
	s.mu.Lock()
	if s.state == enum.SessionClosed {
		s.mu.Unlock()
		return
	}
	s.state = enum.SessionErrored
	s.mu.Unlock()

	if s.client != nil {
		_ = s.client.Terminate()
	}
}

func (s *session) connectionLost(ctx context.Context, err error) bool {
	if ctx.Err() != nil || s.State() == enum.SessionErrored {
		return true
	}
	if s.client != nil && s.client.State() == imap.LogoutState {
		return true
	}
	return isConnectionLost(err)
}

// fail moves the session to Errored and wraps err as a connection error
func (s *session) fail(err error) error {
	s.setState(enum.SessionErrored)
	kind := classify(err, stageCommand)
	if kind == enum.ConnectionErrorUnknown && isTimeout(err) {
		kind = enum.ConnectionErrorTimeout
	}
	return newConnectionError(s.config, kind, err)
}

func (s *session) transition(next enum.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !canTransition(s.state, next) {
		return errors.Wrapf(internalerrors.ErrInvalidSessionState, "cannot move from %s to %s", s.state, next)
	}
	s.state = next
	return nil
}

// setState forces a terminal or error state, never leaving Closed
func (s *session) setState(next enum.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == enum.SessionClosed {
		return
	}
	if s.state == enum.SessionErrored && next != enum.SessionClosed {
		return
	}
	s.state = next
}

func canTransition(from, to enum.SessionState) bool {
	if from == enum.SessionClosed {
		return false
	}
	if from == enum.SessionErrored {
		return to == enum.SessionClosed
	}
	if to == enum.SessionClosed || to == enum.SessionErrored {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
