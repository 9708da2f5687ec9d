package parser

import (
	"bytes"
	"net/mail"
	"strings"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/interfaces"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/utils"
)

const (
	NoSubject         = "No Subject"
	UnknownSender     = "Unknown Sender"
	UnknownRecipient  = "Unknown Recipient"
	contentTypePlain  = "text/plain"
	dispositionAttach = "attachment"
)

type messageParser struct {
	mailboxAddress string
	now            func() time.Time
}

// NewMessageParser builds a parser. mailboxAddress is the recipient used when a message has no To header.
func NewMessageParser(mailboxAddress string) interfaces.MessageParser {
	return &messageParser{
		mailboxAddress: mailboxAddress,
		now:            time.Now,
	}
}

func (p *messageParser) Parse(raw dto.RawMessage) (*dto.NormalizedMessage, error) {
	if len(bytes.TrimSpace(raw.Body)) == 0 {
		return nil, errors.Wrapf(mserrors.ErrParse, "message uid %d is empty", raw.UID)
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, errors.Wrapf(mserrors.ErrParse, "message uid %d: %v", raw.UID, err)
	}

	msg := &dto.NormalizedMessage{
		Subject: utils.FirstNonEmpty(env.GetHeader("Subject"), NoSubject),
		Date:    p.parseDate(env.GetHeader("Date")),
		Body:    extractBody(env),
		Raw:     raw.Body,
	}

	msg.MessageID = utils.NormalizeMessageID(env.GetHeader("Message-ID"))
	if msg.MessageID == "" {
		msg.MessageID = utils.DeriveMessageID(raw.Body)
	}

	msg.From, msg.FromAddress = parseSender(env)
	msg.To, msg.ToAddresses = p.parseRecipients(env)
	msg.Attachments = extractAttachments(env)

	p.sanitize(msg)

	return msg, nil
}

// sanitize cleans every text field for storage and re-applies the fallbacks a field may have lost.
func (p *messageParser) sanitize(msg *dto.NormalizedMessage) {
	msg.MessageID = utils.SanitizeText(msg.MessageID)
	if msg.MessageID == "" {
		msg.MessageID = utils.DeriveMessageID(msg.Raw)
	}
	msg.Subject = utils.FirstNonEmpty(utils.SanitizeText(msg.Subject), NoSubject)
	msg.From = utils.FirstNonEmpty(utils.SanitizeText(msg.From), UnknownSender)
	msg.FromAddress = utils.SanitizeText(msg.FromAddress)
	msg.To = utils.FirstNonEmpty(utils.SanitizeText(msg.To), p.mailboxAddress, UnknownRecipient)
	for i, address := range msg.ToAddresses {
		msg.ToAddresses[i] = utils.SanitizeText(address)
	}
	msg.Body = utils.SanitizeText(msg.Body)
	for i := range msg.Attachments {
		msg.Attachments[i].Filename = utils.SanitizeText(msg.Attachments[i].Filename)
		msg.Attachments[i].ContentType = utils.SanitizeText(msg.Attachments[i].ContentType)
	}
}

func (p *messageParser) parseDate(value string) time.Time {
	if value != "" {
		if date, err := mail.ParseDate(value); err == nil {
			return date.UTC()
		}
	}
	return p.now().UTC()
}

func parseSender(env *enmime.Envelope) (string, string) {
	addresses, err := env.AddressList("From")
	if err != nil || len(addresses) == 0 {
		return utils.FirstNonEmpty(env.GetHeader("From"), UnknownSender), ""
	}

	sender := addresses[0]
	address := cleanAddress(sender.Address)
	if address == "" {
		address = strings.TrimSpace(sender.Address)
	}
	if address == "" {
		return utils.FirstNonEmpty(sender.Name, UnknownSender), ""
	}
	if sender.Name == "" {
		return address, address
	}
	return sender.Name + " <" + address + ">", address
}

func (p *messageParser) parseRecipients(env *enmime.Envelope) (string, []string) {
	addresses, err := env.AddressList("To")
	if err != nil || len(addresses) == 0 {
		return utils.FirstNonEmpty(env.GetHeader("To"), p.mailboxAddress, UnknownRecipient), []string{}
	}

	cleaned := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if address := cleanAddress(addr.Address); address != "" {
			cleaned = append(cleaned, address)
		}
	}
	if len(cleaned) == 0 {
		return utils.FirstNonEmpty(env.GetHeader("To"), p.mailboxAddress, UnknownRecipient), cleaned
	}
	return strings.Join(cleaned, ", "), cleaned
}

func cleanAddress(address string) string {
	validation := mailvalidate.ValidateEmailSyntax(address)
	if !validation.IsValid {
		return ""
	}
	return validation.CleanEmail
}

// extractBody prefers a real text/plain part; HTML-only mail is stripped to text.
func extractBody(env *enmime.Envelope) string {
	text := strings.TrimSpace(env.Text)
	if env.HTML == "" || (text != "" && hasPlainTextPart(env.Root)) {
		return text
	}
	stripped, err := utils.HTMLToPlainText(env.HTML)
	if err != nil {
		return text
	}
	return stripped
}

func hasPlainTextPart(part *enmime.Part) bool {
	if part == nil {
		return false
	}
	if part.ContentType == contentTypePlain && part.Disposition != dispositionAttach {
		return true
	}
	for child := part.FirstChild; child != nil; child = child.NextSibling {
		if hasPlainTextPart(child) {
			return true
		}
	}
	return false
}

func extractAttachments(env *enmime.Envelope) []dto.Attachment {
	attachments := make([]dto.Attachment, 0, len(env.Attachments)+len(env.Inlines))
	for _, part := range env.Attachments {
		attachments = append(attachments, toAttachment(part))
	}
	for _, part := range env.Inlines {
		attachments = append(attachments, toAttachment(part))
	}
	return attachments
}

func toAttachment(part *enmime.Part) dto.Attachment {
	return dto.Attachment{
		Filename:    part.FileName,
		Size:        len(part.Content),
		ContentType: part.ContentType,
	}
}
