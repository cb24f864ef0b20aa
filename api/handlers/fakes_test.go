package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/pagination"
)

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Run(ctx context.Context) (*dto.ProcessingRunResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*dto.ProcessingRunResult)
	return result, args.Error(1)
}

type mockEmailConfigService struct {
	mock.Mock
}

func (m *mockEmailConfigService) List(ctx context.Context) (*dto.MailboxConfigListResponse, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*dto.MailboxConfigListResponse)
	return result, args.Error(1)
}

func (m *mockEmailConfigService) Create(ctx context.Context, request dto.MailboxConfigRequest) (*dto.MailboxConfigResponse, error) {
	args := m.Called(ctx, request)
	result, _ := args.Get(0).(*dto.MailboxConfigResponse)
	return result, args.Error(1)
}

func (m *mockEmailConfigService) Update(ctx context.Context, id string, request dto.MailboxConfigUpdateRequest) (*dto.MailboxConfigResponse, error) {
	args := m.Called(ctx, id, request)
	result, _ := args.Get(0).(*dto.MailboxConfigResponse)
	return result, args.Error(1)
}

func (m *mockEmailConfigService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEmailConfigService) Activate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEmailConfigService) TestActive(ctx context.Context) (*dto.ConnectionTestResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*dto.ConnectionTestResult)
	return result, args.Error(1)
}

type mockCandidateRepository struct {
	mock.Mock
}

func (m *mockCandidateRepository) Insert(ctx context.Context, candidate *models.Candidate) (*models.Candidate, error) {
	args := m.Called(ctx, candidate)
	result, _ := args.Get(0).(*models.Candidate)
	return result, args.Error(1)
}

func (m *mockCandidateRepository) Query(ctx context.Context, filter interfaces.CandidateFilter, page *pagination.Params) (*interfaces.CandidatePage, error) {
	args := m.Called(ctx, filter, page)
	result, _ := args.Get(0).(*interfaces.CandidatePage)
	return result, args.Error(1)
}

func (m *mockCandidateRepository) Stats(ctx context.Context, topSkills int) (*dto.CandidateStatsResponse, error) {
	args := m.Called(ctx, topSkills)
	result, _ := args.Get(0).(*dto.CandidateStatsResponse)
	return result, args.Error(1)
}

type mockProcessingLogRepository struct {
	mock.Mock
}

func (m *mockProcessingLogRepository) Insert(ctx context.Context, entry *models.ProcessingLogEntry) (*models.ProcessingLogEntry, error) {
	args := m.Called(ctx, entry)
	result, _ := args.Get(0).(*models.ProcessingLogEntry)
	return result, args.Error(1)
}

func (m *mockProcessingLogRepository) Update(ctx context.Context, id string, update interfaces.ProcessingLogUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *mockProcessingLogRepository) ListRecent(ctx context.Context, runId string, limit int) ([]models.ProcessingLogEntry, error) {
	args := m.Called(ctx, runId, limit)
	result, _ := args.Get(0).([]models.ProcessingLogEntry)
	return result, args.Error(1)
}

type fakeExporter struct {
	candidates []models.Candidate
}

func (f *fakeExporter) WriteCandidates(ctx context.Context, w io.Writer, candidates []models.Candidate) error {
	f.candidates = candidates
	_, err := w.Write([]byte("xlsx"))
	return err
}
