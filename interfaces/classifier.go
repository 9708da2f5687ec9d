package interfaces

import (
	"context"

	"github.com/customeros/mailsorter/dto"
)

type ClassifierService interface {
	Classify(ctx context.Context, message *dto.NormalizedMessage) (*dto.Verdict, error)
}
