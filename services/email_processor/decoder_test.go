package email_processor

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
)

func buildMessage(from, subject string, attachments map[string][]byte) []byte {
	const boundary = "recruitstack-boundary"
	msg := fmt.Sprintf("From: %s\r\nTo: jobs@example.com\r\nSubject: %s\r\nMIME-Version: 1.0\r\n"+
		"Content-Type: multipart/mixed; boundary=%q\r\n\r\n", from, subject, boundary)
	msg += fmt.Sprintf("--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\nHola, adjunto mi hoja de vida.\r\n", boundary)
	for name, content := range attachments {
		msg += fmt.Sprintf("--%s\r\nContent-Type: application/octet-stream; name=%q\r\n"+
			"Content-Disposition: attachment; filename=%q\r\nContent-Transfer-Encoding: base64\r\n\r\n%s\r\n",
			boundary, name, name, base64.StdEncoding.EncodeToString(content))
	}
	msg += fmt.Sprintf("--%s--\r\n", boundary)
	return []byte(msg)
}

func TestDecodeMessage(t *testing.T) {
	raw := buildMessage("Juan Pérez <Juan.Perez@Example.com>", "Postulación", map[string][]byte{
		"hoja_de_vida.pdf": []byte("%PDF-1.4 fake"),
	})

	msg, err := DecodeMessage(7, raw)
	require.NoError(t, err)
	require.Equal(t, uint32(7), msg.UID)
	require.Equal(t, "Postulación", msg.Subject)
	require.Equal(t, "Juan Pérez", msg.FromName)
	require.Equal(t, "juan.perez@example.com", msg.FromAddress)
	require.Len(t, msg.Attachments, 1)
	require.Equal(t, "hoja_de_vida.pdf", msg.Attachments[0].Filename)
	require.Equal(t, "application/octet-stream", msg.Attachments[0].MimeType)
	require.Equal(t, []byte("%PDF-1.4 fake"), msg.Attachments[0].Content)
}

func TestDecodeMessage_NoAttachments(t *testing.T) {
	raw := []byte("From: a@example.com\r\nSubject: hi\r\nContent-Type: text/plain\r\n\r\nbody\r\n")

	msg, err := DecodeMessage(1, raw)
	require.NoError(t, err)
	require.Empty(t, msg.Attachments)
	require.Equal(t, "a@example.com", msg.FromAddress)
	require.Empty(t, msg.FromName)
}

func TestDecodeMessage_Empty(t *testing.T) {
	_, err := DecodeMessage(1, nil)
	require.True(t, errors.Is(err, internalerrors.ErrMalformedMessage))

	_, err = DecodeMessage(1, []byte("  \r\n"))
	require.True(t, errors.Is(err, internalerrors.ErrMalformedMessage))
}

func TestDecodeMessage_NamedPartWithoutDisposition(t *testing.T) {
	raw := []byte("From: Ana <ana@example.com>\r\nSubject: Hoja de vida\r\nMIME-Version: 1.0\r\n" +
		"Content-Type: multipart/related; boundary=\"rel\"\r\n\r\n" +
		"--rel\r\nContent-Type: text/html; charset=utf-8\r\n\r\n<p>Adjunto mi cv</p>\r\n" +
		"--rel\r\nContent-Type: application/pdf; name=\"cv_ana.pdf\"\r\nContent-Transfer-Encoding: base64\r\n\r\n" +
		base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 ana")) + "\r\n" +
		"--rel--\r\n")

	msg, err := DecodeMessage(3, raw)
	require.NoError(t, err)
	require.Len(t, msg.Attachments, 1)
	require.Equal(t, "cv_ana.pdf", msg.Attachments[0].Filename)
	require.Equal(t, "application/pdf", msg.Attachments[0].MimeType)
	require.Equal(t, []byte("%PDF-1.4 ana"), msg.Attachments[0].Content)
}
