package imap

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/emersion/go-imap/backend/memory"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-imap/server"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/enum"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/models"
)

const testMessage = "From: Ana Pérez <ana.perez@example.com>\r\n" +
	"To: jobs@example.com\r\n" +
	"Subject: Application\r\n" +
	"Date: Wed, 11 May 2016 14:31:59 +0000\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Please find my CV attached.\r\n"

var testOptions = interfaces.SessionOptions{ConnectTimeout: 5 * time.Second, AuthTimeout: 5 * time.Second}

func testLogger() logger.Logger {
	log := logger.NewAppLogger(&logger.Config{LogLevel: "error"})
	log.InitLogger()
	return log
}

func startTestServer(t *testing.T) *models.MailboxConfig {
	t.Helper()

	s := server.New(memory.New())
	s.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		_ = s.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = s.Close()
	})

	addr := ln.Addr().(*net.TCPAddr)
	return &models.MailboxConfig{
		Host:     "127.0.0.1",
		Port:     addr.Port,
		Username: "username",
		Password: "password",
		UseTLS:   false,
	}
}

func appendUnseen(t *testing.T, config *models.MailboxConfig, body string) {
	t.Helper()

	c, err := client.Dial(net.JoinHostPort(config.Host, strconv.Itoa(config.Port)))
	require.NoError(t, err)
	defer c.Logout()

	require.NoError(t, c.Login(config.Username, config.Password))
	require.NoError(t, c.Append("INBOX", nil, time.Now(), bytes.NewBufferString(body)))
}

func TestSession_SearchAndFetchUnseen(t *testing.T) {
	config := startTestServer(t)
	appendUnseen(t, config, testMessage)

	ctx := context.Background()
	session, err := NewDialer(testLogger()).Open(ctx, config, testOptions)
	require.NoError(t, err)
	defer session.Close()
	require.Equal(t, enum.SessionReady, session.State())

	info, err := session.SelectMailbox(ctx, "INBOX", false)
	require.NoError(t, err)
	require.GreaterOrEqual(t, info.MessageCount, uint32(1))
	require.Equal(t, enum.SessionIdle, session.State())

	uids, err := session.SearchUnseen(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, uids)

	messages, done := session.Fetch(ctx, uids)
	var fetched []interfaces.RawMessage
	for msg := range messages {
		fetched = append(fetched, msg)
	}
	require.NoError(t, <-done)
	require.Len(t, fetched, len(uids))
	require.Contains(t, string(fetched[len(fetched)-1].Body), "Please find my CV attached.")
	require.Equal(t, enum.SessionIdle, session.State())

	require.NoError(t, session.Close())
	require.Equal(t, enum.SessionClosed, session.State())
}

func TestSession_FetchNothing(t *testing.T) {
	config := startTestServer(t)

	ctx := context.Background()
	session, err := NewDialer(testLogger()).Open(ctx, config, testOptions)
	require.NoError(t, err)
	defer session.Close()

	_, err = session.SelectMailbox(ctx, "INBOX", false)
	require.NoError(t, err)

	messages, done := session.Fetch(ctx, nil)
	_, open := <-messages
	require.False(t, open)
	require.NoError(t, <-done)
}

func TestSession_AuthFailure(t *testing.T) {
	config := startTestServer(t)
	config.Password = "wrong"

	_, err := NewDialer(testLogger()).Open(context.Background(), config, testOptions)
	require.Error(t, err)

	var connErr *internalerrors.ConnectionError
	require.True(t, errors.As(err, &connErr))
	require.Equal(t, enum.ConnectionErrorAuth, connErr.Kind)
	require.True(t, errors.Is(err, internalerrors.ErrAuthentication))
	require.True(t, errors.Is(err, internalerrors.ErrConnection))
}

func TestSession_SelectMissingMailbox(t *testing.T) {
	config := startTestServer(t)

	ctx := context.Background()
	session, err := NewDialer(testLogger()).Open(ctx, config, testOptions)
	require.NoError(t, err)
	defer session.Close()

	_, err = session.SelectMailbox(ctx, "Nope", false)
	require.Error(t, err)
	require.True(t, errors.Is(err, internalerrors.ErrMailboxAccess))
	require.False(t, errors.Is(err, internalerrors.ErrConnection))
	require.Equal(t, enum.SessionReady, session.State())

	_, err = session.SelectMailbox(ctx, "INBOX", true)
	require.NoError(t, err)
	require.Equal(t, enum.SessionIdle, session.State())
}

func TestSession_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	config := &models.MailboxConfig{Host: "127.0.0.1", Port: port, Username: "u", Password: "p"}
	_, err = NewDialer(testLogger()).Open(context.Background(), config, testOptions)
	require.Error(t, err)
	require.True(t, errors.Is(err, internalerrors.ErrConnectionRefused))
}

func TestSession_GreetingTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		// never send a greeting
		time.Sleep(2 * time.Second)
		_ = conn.Close()
	}()

	config := &models.MailboxConfig{Host: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port, Username: "u", Password: "p"}
	opts := interfaces.SessionOptions{ConnectTimeout: 200 * time.Millisecond, AuthTimeout: time.Second}

	_, err = NewDialer(testLogger()).Open(context.Background(), config, opts)
	require.Error(t, err)
	require.True(t, errors.Is(err, internalerrors.ErrConnectionTimeout))
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	config := startTestServer(t)

	session, err := NewDialer(testLogger()).Open(context.Background(), config, testOptions)
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	require.Equal(t, enum.SessionClosed, session.State())

	_, err = session.SearchUnseen(context.Background())
	require.True(t, errors.Is(err, internalerrors.ErrInvalidSessionState))
}

func TestSession_RejectsOutOfOrderCommands(t *testing.T) {
	config := startTestServer(t)

	ctx := context.Background()
	session, err := NewDialer(testLogger()).Open(ctx, config, testOptions)
	require.NoError(t, err)
	defer session.Close()

	_, err = session.SearchUnseen(ctx)
	require.True(t, errors.Is(err, internalerrors.ErrInvalidSessionState))

	messages, done := session.Fetch(ctx, []uint32{1})
	_, open := <-messages
	require.False(t, open)
	require.True(t, errors.Is(<-done, internalerrors.ErrInvalidSessionState))
	require.Equal(t, enum.SessionReady, session.State())
}

func TestSession_CancelTerminates(t *testing.T) {
	config := startTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	session, err := NewDialer(testLogger()).Open(ctx, config, testOptions)
	require.NoError(t, err)
	defer session.Close()

	cancel()
	require.Eventually(t, func() bool {
		return session.State() == enum.SessionErrored
	}, time.Second, 10*time.Millisecond)

	_, err = session.SelectMailbox(context.Background(), "INBOX", false)
	require.True(t, errors.Is(err, internalerrors.ErrInvalidSessionState))
}

func TestCanTransition(t *testing.T) {
	require.True(t, canTransition(enum.SessionDisconnected, enum.SessionConnecting))
	require.True(t, canTransition(enum.SessionIdle, enum.SessionFetching))
	require.True(t, canTransition(enum.SessionFetching, enum.SessionErrored))
	require.True(t, canTransition(enum.SessionErrored, enum.SessionClosed))
	require.False(t, canTransition(enum.SessionErrored, enum.SessionReady))
	require.False(t, canTransition(enum.SessionReady, enum.SessionSearching))
	require.False(t, canTransition(enum.SessionClosed, enum.SessionErrored))
	require.False(t, canTransition(enum.SessionSearching, enum.SessionFetching))
}

func TestTestConnection(t *testing.T) {
	config := startTestServer(t)

	result := TestConnection(context.Background(), NewDialer(testLogger()), config, testOptions)
	require.True(t, result.Success)
	require.NotNil(t, result.Details.Messages)
	require.Empty(t, result.Details.Error)
	require.Contains(t, result.Message, "INBOX is accessible")

	config.Password = "wrong"
	result = TestConnection(context.Background(), NewDialer(testLogger()), config, testOptions)
	require.False(t, result.Success)
	require.Equal(t, "AUTH_ERROR", result.Details.Error)
	require.NotEmpty(t, result.Details.OriginalError)
}
