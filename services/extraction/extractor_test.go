package extraction

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/recruitstack/recruitstack/interfaces"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/logger"
)

func newTestExtractor() *Extractor {
	log := logger.NewAppLogger(&logger.Config{LogLevel: "error"})
	log.InitLogger()
	return NewExtractor(log)
}

func TestResolveMimeType(t *testing.T) {
	require.Equal(t, "application/pdf", resolveMimeType(interfaces.Attachment{Filename: "cv.bin", MimeType: "Application/PDF"}))
	require.Equal(t, "text/plain", resolveMimeType(interfaces.Attachment{Filename: "cv.txt", MimeType: "application/octet-stream"}))
	require.Equal(t, "application/pdf", resolveMimeType(interfaces.Attachment{Filename: "cv.pdf", MimeType: "application/octet-stream"}))
	require.Equal(t, "application/octet-stream", resolveMimeType(interfaces.Attachment{Filename: "cv", MimeType: ""}))
}

func TestExtract_PlainText(t *testing.T) {
	text, err := newTestExtractor().Extract(context.Background(), interfaces.Attachment{
		Filename: "cv.txt",
		MimeType: "text/plain",
		Content:  []byte("  Juan   Pérez\n\nIngeniero de software  "),
	})
	require.NoError(t, err)
	require.Equal(t, "Juan Pérez Ingeniero de software", text)
}

func TestExtract_EmptyAttachment(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), interfaces.Attachment{Filename: "cv.pdf", MimeType: "application/pdf"})
	require.True(t, errors.Is(err, internalerrors.ErrExtraction))
}

func TestExtract_BlankText(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), interfaces.Attachment{Filename: "cv.txt", MimeType: "text/plain", Content: []byte(" \n\t ")})
	require.True(t, errors.Is(err, internalerrors.ErrExtraction))
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExtractor().Extract(ctx, interfaces.Attachment{Filename: "cv.pdf", MimeType: "application/pdf", Content: []byte("not a pdf")})
	require.True(t, errors.Is(err, internalerrors.ErrExtraction))
}
