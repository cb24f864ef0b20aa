package interfaces

import (
	"context"

	"github.com/recruitstack/recruitstack/dto"
)

type EmailConfigService interface {
	List(ctx context.Context) (*dto.MailboxConfigListResponse, error)
	Create(ctx context.Context, request dto.MailboxConfigRequest) (*dto.MailboxConfigResponse, error)
	Update(ctx context.Context, id string, request dto.MailboxConfigUpdateRequest) (*dto.MailboxConfigResponse, error)
	Delete(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) error
	// TestActive returns ErrNoActiveConfig when there is nothing to test
	TestActive(ctx context.Context) (*dto.ConnectionTestResult, error)
}
