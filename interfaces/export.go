package interfaces

import (
	"context"
	"io"

	"github.com/recruitstack/recruitstack/internal/models"
)

type CandidateExporter interface {
	WriteCandidates(ctx context.Context, w io.Writer, candidates []models.Candidate) error
}
