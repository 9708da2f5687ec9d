package events

import (
	"context"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/interfaces"
)

type noopPublisher struct{}

func NewNoopPublisher() interfaces.EventsPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishEmailClassified(ctx context.Context, event dto.EmailClassified) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
