package interfaces

import "context"

type StorageService interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
}

// RawEmailArchiver keeps the raw bytes of ingested messages and returns the object key.
type RawEmailArchiver interface {
	Archive(ctx context.Context, messageID string, raw []byte) (string, error)
}
