package interfaces

import (
	"context"

	"github.com/customeros/mailsorter/dto"
)

type EventsPublisher interface {
	PublishEmailClassified(ctx context.Context, event dto.EmailClassified) error
	Close() error
}
