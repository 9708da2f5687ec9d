package interfaces

import (
	"context"

	"github.com/customeros/mailsorter/dto"
)

type EmailProcessor interface {
	RunOnce(ctx context.Context) (int, error)
	Status() *dto.RunStats
	IsRunning() bool
}
