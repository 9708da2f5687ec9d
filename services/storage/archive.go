package storage

import (
	"context"

	"github.com/customeros/mailsorter/interfaces"
	"github.com/customeros/mailsorter/internal/utils"
)

const rawEmailContentType = "message/rfc822"

// RawEmailArchive stores the original RFC 822 bytes of ingested messages.
type RawEmailArchive struct {
	storage interfaces.StorageService
}

func NewRawEmailArchive(storage interfaces.StorageService) *RawEmailArchive {
	return &RawEmailArchive{storage: storage}
}

func RawEmailKey(messageID string) string {
	return "raw/" + utils.MessageIDKey(messageID) + ".eml"
}

// Archive uploads raw under a key derived from messageID and returns that key.
func (a *RawEmailArchive) Archive(ctx context.Context, messageID string, raw []byte) (string, error) {
	key := RawEmailKey(messageID)
	if err := a.storage.Upload(ctx, key, raw, rawEmailContentType); err != nil {
		return "", err
	}
	return key, nil
}

func (a *RawEmailArchive) Load(ctx context.Context, messageID string) ([]byte, error) {
	return a.storage.Download(ctx, RawEmailKey(messageID))
}
