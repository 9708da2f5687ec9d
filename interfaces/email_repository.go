package interfaces

import (
	"context"

	"github.com/customeros/mailsorter/internal/models"
)

type EmailRepository interface {
	Exists(ctx context.Context, messageID string) (bool, error)
	Insert(ctx context.Context, email *models.Email) error
	GetByMessageID(ctx context.Context, messageID string) (*models.Email, error)
}
