package storage

import (
	"github.com/customeros/mailsorter/config"
	"github.com/customeros/mailsorter/interfaces"
	"github.com/customeros/mailsorter/services/storage/aws_client"
)

// NewR2StorageService returns nil, nil when R2 is not configured.
func NewR2StorageService(cfg *config.R2StorageConfig) (interfaces.StorageService, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, nil
	}

	client, err := aws_client.NewR2Client(aws_client.R2Config{
		AccountID:       cfg.AccountID,
		AccessKeyID:     cfg.AccessKeyID,
		AccessKeySecret: cfg.AccessKeySecret,
	})
	if err != nil {
		return nil, err
	}
	return NewStorageService(client, cfg.RawEmailBucket), nil
}
