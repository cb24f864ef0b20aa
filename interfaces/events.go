package interfaces

import (
	"context"

	"github.com/recruitstack/recruitstack/dto"
)

type EventPublisher interface {
	PublishCandidateCreated(ctx context.Context, event dto.CandidateCreated) error
	PublishProcessingRunCompleted(ctx context.Context, result dto.ProcessingRunResult) error
	Close() error
}
