package imap

import (
	"context"
	"io"
	"iter"

	"github.com/emersion/go-imap"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailsorter/dto"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/tracing"
)

const fetchBuffer = 10

// FetchRecent searches the folder for unseen messages received within the last windowDays days.
// The returned sequence fetches lazily; messages are never marked as seen.
func (m *Client) FetchRecent(ctx context.Context, windowDays int) (iter.Seq2[dto.RawMessage, error], error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxClient.FetchRecent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("folder", m.cfg.Folder)
	span.SetTag("window.days", windowDays)

	if m.c == nil {
		return nil, errors.Wrap(mserrors.ErrConnection, "mailbox client is not connected")
	}
	if windowDays <= 0 {
		windowDays = 1
	}

	if _, err := m.c.Select(m.cfg.Folder, true); err != nil {
		err = errors.Wrapf(mserrors.ErrConnection, "failed to select folder %s: %v", m.cfg.Folder, err)
		tracing.TraceErr(span, err)
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	criteria.Since = m.now().AddDate(0, 0, -windowDays)

	uids, err := m.c.UidSearch(criteria)
	if err != nil {
		err = errors.Wrapf(mserrors.ErrConnection, "failed to search folder %s: %v", m.cfg.Folder, err)
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.SetTag("unseen.total", len(uids))
	m.log.Infof("Found %d unseen messages in %s within %d day(s)", len(uids), m.cfg.Folder, windowDays)

	if len(uids) == 0 {
		return func(yield func(dto.RawMessage, error) bool) {}, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)
	return m.fetch(ctx, seqSet), nil
}

func (m *Client) fetch(ctx context.Context, seqSet *imap.SeqSet) iter.Seq2[dto.RawMessage, error] {
	c := m.c
	return func(yield func(dto.RawMessage, error) bool) {
		section := &imap.BodySectionName{Peek: true}
		items := []imap.FetchItem{section.FetchItem(), imap.FetchUid}

		messages := make(chan *imap.Message, fetchBuffer)
		done := make(chan error, 1)
		go func() {
			done <- c.UidFetch(seqSet, items, messages)
		}()

		// the channel is always drained so the connection stays usable for logout
		stopped := false
		for msg := range messages {
			if stopped {
				continue
			}
			if err := ctx.Err(); err != nil {
				stopped = true
				yield(dto.RawMessage{}, err)
				continue
			}

			raw := dto.RawMessage{SeqNum: msg.SeqNum, UID: msg.Uid}
			body := msg.GetBody(section)
			if body == nil {
				if !yield(raw, errors.Wrapf(mserrors.ErrParse, "message uid %d has no body", msg.Uid)) {
					stopped = true
				}
				continue
			}

			data, err := io.ReadAll(body)
			if err != nil {
				if !yield(raw, errors.Wrapf(mserrors.ErrParse, "failed to read body of uid %d: %v", msg.Uid, err)) {
					stopped = true
				}
				continue
			}
			raw.Body = data
			if !yield(raw, nil) {
				stopped = true
			}
		}

		if err := <-done; err != nil && !stopped {
			yield(dto.RawMessage{}, errors.Wrapf(mserrors.ErrConnection, "fetch failed: %v", err))
		}
	}
}
