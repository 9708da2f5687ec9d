package interfaces

import (
	"context"
	"iter"

	"github.com/customeros/mailsorter/dto"
)

// MailboxClient owns a single IMAP session; Close must be called once per Connect.
type MailboxClient interface {
	Connect(ctx context.Context) error
	FetchRecent(ctx context.Context, windowDays int) (iter.Seq2[dto.RawMessage, error], error)
	Close() error
}

// MailboxClientFactory returns a fresh, unconnected client for each run.
type MailboxClientFactory func() MailboxClient
