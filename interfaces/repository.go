package interfaces

import (
	"context"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/internal/enum"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/pagination"
)

type MailboxConfigUpdate struct {
	Name     *string
	Host     *string
	Port     *int
	Username *string
	Password *string
	UseTLS   *bool
	// only false is accepted here, activation goes through SetActive
	IsActive *bool
}

type MailboxConfigRepository interface {
	// GetActive returns nil without error when no configuration is active
	GetActive(ctx context.Context) (*models.MailboxConfig, error)
	GetByID(ctx context.Context, id string) (*models.MailboxConfig, error)
	ListAll(ctx context.Context) ([]models.MailboxConfig, error)
	Save(ctx context.Context, config *models.MailboxConfig) (*models.MailboxConfig, error)
	Update(ctx context.Context, id string, update MailboxConfigUpdate) (*models.MailboxConfig, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string) error
	RecordTestResult(ctx context.Context, id string, status enum.TestStatus, message string) error
}

type CandidateFilter struct {
	Search            string
	Department        string
	EducationLevel    string
	HierarchicalLevel string
	MinScore          int
}

type CandidatePage struct {
	Items      []models.Candidate
	TotalCount int64
}

type CandidateRepository interface {
	Insert(ctx context.Context, candidate *models.Candidate) (*models.Candidate, error)
	Query(ctx context.Context, filter CandidateFilter, page *pagination.Params) (*CandidatePage, error)
	Stats(ctx context.Context, topSkills int) (*dto.CandidateStatsResponse, error)
}

type ProcessingLogUpdate struct {
	Status       enum.ProcessingStatus
	CandidateID  *string
	ErrorMessage *string
}

type ProcessingLogRepository interface {
	Insert(ctx context.Context, entry *models.ProcessingLogEntry) (*models.ProcessingLogEntry, error)
	Update(ctx context.Context, id string, update ProcessingLogUpdate) error
	ListRecent(ctx context.Context, runId string, limit int) ([]models.ProcessingLogEntry, error)
}
