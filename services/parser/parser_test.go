package parser

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsorter/dto"
	mserrors "github.com/customeros/mailsorter/internal/errors"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestParser(mailboxAddress string) *messageParser {
	p := NewMessageParser(mailboxAddress).(*messageParser)
	p.now = func() time.Time { return fixedNow }
	return p
}

func crlf(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

func TestParse_PlainMessage(t *testing.T) {
	p := newTestParser("me@example.com")
	raw := crlf(
		"Message-ID: <abc-123@mail.example.com>",
		"From: Jane Recruiter <Jane@Hiring.example.com>",
		"To: Me <me@example.com>, other@example.com",
		"Subject: Interview invitation",
		"Date: Mon, 02 Jan 2006 15:04:05 -0700",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"We would like to invite you to an interview.",
	)

	msg, err := p.Parse(dto.RawMessage{UID: 1, Body: raw})
	require.NoError(t, err)

	assert.Equal(t, "abc-123@mail.example.com", msg.MessageID)
	assert.Equal(t, "Interview invitation", msg.Subject)
	assert.Equal(t, "jane@hiring.example.com", strings.ToLower(msg.FromAddress))
	assert.Contains(t, msg.From, "Jane Recruiter <")
	assert.Equal(t, []string{"me@example.com", "other@example.com"}, msg.ToAddresses)
	assert.Equal(t, "me@example.com, other@example.com", msg.To)
	assert.Equal(t, time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC), msg.Date)
	assert.Equal(t, "We would like to invite you to an interview.", msg.Body)
	assert.Empty(t, msg.Attachments)
	assert.Equal(t, raw, msg.Raw)
}

func TestParse_MissingHeadersFallBack(t *testing.T) {
	p := newTestParser("me@example.com")
	raw := crlf(
		"Content-Type: text/plain; charset=utf-8",
		"",
		"no headers at all",
	)

	msg, err := p.Parse(dto.RawMessage{UID: 2, Body: raw})
	require.NoError(t, err)

	assert.Equal(t, NoSubject, msg.Subject)
	assert.Equal(t, UnknownSender, msg.From)
	assert.Equal(t, "me@example.com", msg.To)
	assert.Equal(t, fixedNow, msg.Date)
	assert.True(t, strings.HasPrefix(msg.MessageID, "generated-"))

	again, err := p.Parse(dto.RawMessage{UID: 2, Body: raw})
	require.NoError(t, err)
	assert.Equal(t, msg.MessageID, again.MessageID)
}

func TestParse_NoRecipientAndNoMailboxAddress(t *testing.T) {
	p := newTestParser("")
	raw := crlf(
		"Message-ID: <x@example.com>",
		"Content-Type: text/plain",
		"",
		"body",
	)

	msg, err := p.Parse(dto.RawMessage{Body: raw})
	require.NoError(t, err)
	assert.Equal(t, UnknownRecipient, msg.To)
	assert.Empty(t, msg.ToAddresses)
}

func TestParse_InvalidDateFallsBackToNow(t *testing.T) {
	p := newTestParser("me@example.com")
	raw := crlf(
		"Message-ID: <d@example.com>",
		"Date: not a date",
		"Content-Type: text/plain",
		"",
		"body",
	)

	msg, err := p.Parse(dto.RawMessage{Body: raw})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, msg.Date)
}

func TestParse_HTMLOnlyBodyIsStripped(t *testing.T) {
	p := newTestParser("me@example.com")
	raw := crlf(
		"Message-ID: <html@example.com>",
		"From: news@example.com",
		"Subject: Weekly digest",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<html><head><style>p { color: red; }</style></head><body>"+
			"<p>Hello</p><script>alert('x')</script><div>World</div></body></html>",
	)

	msg, err := p.Parse(dto.RawMessage{Body: raw})
	require.NoError(t, err)

	assert.Contains(t, msg.Body, "Hello")
	assert.Contains(t, msg.Body, "World")
	assert.NotContains(t, msg.Body, "alert")
	assert.NotContains(t, msg.Body, "color")
	assert.NotContains(t, msg.Body, "<p>")
}

func TestParse_AlternativePrefersPlainText(t *testing.T) {
	p := newTestParser("me@example.com")
	raw := crlf(
		"Message-ID: <alt@example.com>",
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative; boundary=\"b1\"",
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"plain version",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>html version</p>",
		"--b1--",
		"",
	)

	msg, err := p.Parse(dto.RawMessage{Body: raw})
	require.NoError(t, err)
	assert.Equal(t, "plain version", msg.Body)
}

func TestParse_AttachmentsInOrder(t *testing.T) {
	p := newTestParser("me@example.com")
	raw := crlf(
		"Message-ID: <att@example.com>",
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=\"mix\"",
		"",
		"--mix",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"see attached",
		"--mix",
		"Content-Type: application/pdf; name=\"invoice.pdf\"",
		"Content-Disposition: attachment; filename=\"invoice.pdf\"",
		"Content-Transfer-Encoding: base64",
		"",
		"UERGREFUQQ==",
		"--mix",
		"Content-Type: text/plain; name=\"notes.txt\"",
		"Content-Disposition: attachment; filename=\"notes.txt\"",
		"",
		"hi",
		"--mix--",
		"",
	)

	msg, err := p.Parse(dto.RawMessage{Body: raw})
	require.NoError(t, err)

	assert.Equal(t, "see attached", msg.Body)
	require.Len(t, msg.Attachments, 2)
	assert.Equal(t, "invoice.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, 7, msg.Attachments[0].Size)
	assert.Equal(t, "notes.txt", msg.Attachments[1].Filename)
}

func TestParse_EmptyInput(t *testing.T) {
	p := newTestParser("me@example.com")

	_, err := p.Parse(dto.RawMessage{UID: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mserrors.ErrParse))

	_, err = p.Parse(dto.RawMessage{UID: 4, Body: []byte("  \r\n ")})
	assert.True(t, errors.Is(err, mserrors.ErrParse))
}

func TestParse_InvalidBytesAreStorable(t *testing.T) {
	p := newTestParser("me@example.com")
	raw := crlf(
		"Message-ID: <bad-bytes@example.com>",
		"From: Sender <sender@example.com>",
		"To: me@example.com",
		"Subject: Hi \xff\xfe there",
		"Date: Mon, 02 Jan 2006 15:04:05 -0700",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"body \x00 with \xc3( bytes",
	)

	msg, err := p.Parse(dto.RawMessage{UID: 9, Body: raw})
	require.NoError(t, err)

	for name, value := range map[string]string{
		"subject":   msg.Subject,
		"body":      msg.Body,
		"from":      msg.From,
		"to":        msg.To,
		"messageId": msg.MessageID,
	} {
		assert.True(t, utf8.ValidString(value), "%s is not valid utf-8: %q", name, value)
		assert.NotContains(t, value, "\x00", "%s contains NUL", name)
	}
	assert.Contains(t, msg.Subject, "there")
	assert.Contains(t, msg.Body, "body")
	assert.Contains(t, msg.Body, "bytes")
	assert.Equal(t, "bad-bytes@example.com", msg.MessageID)
}
