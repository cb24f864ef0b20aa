package email_processor

import (
	"bytes"
	"mime"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/jhillyerd/enmime"

	"github.com/recruitstack/recruitstack/interfaces"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/utils"
)

const defaultAttachmentMimeType = "application/octet-stream"

// DecodeMessage parses a raw RFC 5322 message into subject, sender and attachments
func DecodeMessage(uid uint32, raw []byte) (*interfaces.DecodedMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, internalerrors.NewMalformedMessageError("empty message body", nil)
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, internalerrors.NewMalformedMessageError("failed to parse message", err)
	}

	decoded := &interfaces.DecodedMessage{
		UID:     uid,
		Subject: strings.TrimSpace(env.GetHeader("Subject")),
	}

	decoded.FromName, decoded.FromAddress = parseSender(env)

	for _, part := range env.Attachments {
		if attachment, ok := toAttachment(part); ok {
			decoded.Attachments = append(decoded.Attachments, attachment)
		}
	}
	// inline parts and parts without a disposition (multipart/related) count only when named
	for _, parts := range [][]*enmime.Part{env.Inlines, env.OtherParts} {
		for _, part := range parts {
			if part == nil || part.FileName == "" {
				continue
			}
			if attachment, ok := toAttachment(part); ok {
				decoded.Attachments = append(decoded.Attachments, attachment)
			}
		}
	}

	return decoded, nil
}

func parseSender(env *enmime.Envelope) (string, string) {
	addresses, err := env.AddressList("From")
	if err == nil && len(addresses) > 0 {
		return addresses[0].Name, normalizeAddress(addresses[0].Address)
	}

	// unparsable From header, try to salvage an address
	from := env.GetHeader("From")
	if from == "" {
		return "", ""
	}
	local, domain := utils.SplitEmail(from)
	if local == "" || domain == "" {
		return "", ""
	}
	return "", normalizeAddress(local + "@" + domain)
}

func normalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	syntaxValidation := mailvalidate.ValidateEmailSyntax(address)
	if syntaxValidation.IsValid {
		return strings.ToLower(syntaxValidation.CleanEmail)
	}
	return strings.ToLower(address)
}

func toAttachment(part *enmime.Part) (interfaces.Attachment, bool) {
	if part == nil {
		return interfaces.Attachment{}, false
	}

	filename := strings.TrimSpace(part.FileName)
	if filename == "" {
		return interfaces.Attachment{}, false
	}

	mimeType := part.ContentType
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}
	if mimeType == "" {
		mimeType = defaultAttachmentMimeType
	}

	return interfaces.Attachment{
		Filename: filename,
		MimeType: strings.ToLower(mimeType),
		Content:  part.Content,
	}, true
}
