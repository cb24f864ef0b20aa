package email_processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/enum"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/pagination"
)

type fakeConfigs struct {
	active *models.MailboxConfig
	err    error
}

func (f *fakeConfigs) GetActive(ctx context.Context) (*models.MailboxConfig, error) {
	return f.active, f.err
}

func (f *fakeConfigs) GetByID(ctx context.Context, id string) (*models.MailboxConfig, error) {
	return f.active, nil
}

func (f *fakeConfigs) ListAll(ctx context.Context) ([]models.MailboxConfig, error) {
	return nil, nil
}

func (f *fakeConfigs) Save(ctx context.Context, config *models.MailboxConfig) (*models.MailboxConfig, error) {
	return config, nil
}

func (f *fakeConfigs) Update(ctx context.Context, id string, update interfaces.MailboxConfigUpdate) (*models.MailboxConfig, error) {
	return f.active, nil
}

func (f *fakeConfigs) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeConfigs) SetActive(ctx context.Context, id string) error {
	return nil
}

func (f *fakeConfigs) RecordTestResult(ctx context.Context, id string, status enum.TestStatus, message string) error {
	return nil
}

type fakeCandidates struct {
	mu          sync.Mutex
	items       []models.Candidate
	afterInsert func()
}

func (f *fakeCandidates) Insert(ctx context.Context, candidate *models.Candidate) (*models.Candidate, error) {
	f.mu.Lock()
	candidate.ID = fmt.Sprintf("cand_%d", len(f.items)+1)
	f.items = append(f.items, *candidate)
	hook := f.afterInsert
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return candidate, nil
}

func (f *fakeCandidates) Query(ctx context.Context, filter interfaces.CandidateFilter, page *pagination.Params) (*interfaces.CandidatePage, error) {
	return &interfaces.CandidatePage{Items: f.items, TotalCount: int64(len(f.items))}, nil
}

func (f *fakeCandidates) Stats(ctx context.Context, topSkills int) (*dto.CandidateStatsResponse, error) {
	return &dto.CandidateStatsResponse{}, nil
}

type fakeLogs struct {
	mu      sync.Mutex
	entries []*models.ProcessingLogEntry
	// failUpdates makes the next n updates fail
	failUpdates int
	updateCalls int
}

func (f *fakeLogs) Insert(ctx context.Context, entry *models.ProcessingLogEntry) (*models.ProcessingLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = fmt.Sprintf("plog_%d", len(f.entries)+1)
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeLogs) Update(ctx context.Context, id string, update interfaces.ProcessingLogUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failUpdates > 0 {
		f.failUpdates--
		return fmt.Errorf("store unavailable")
	}
	for _, entry := range f.entries {
		if entry.ID == id {
			entry.ProcessingStatus = update.Status
			if update.CandidateID != nil {
				entry.CandidateID = update.CandidateID
			}
			if update.ErrorMessage != nil {
				entry.ErrorMessage = update.ErrorMessage
			}
			return nil
		}
	}
	return fmt.Errorf("entry %s not found", id)
}

func (f *fakeLogs) ListRecent(ctx context.Context, runId string, limit int) ([]models.ProcessingLogEntry, error) {
	return nil, nil
}

func (f *fakeLogs) byStatus(status enum.ProcessingStatus) []*models.ProcessingLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.ProcessingLogEntry
	for _, entry := range f.entries {
		if entry.ProcessingStatus == status {
			result = append(result, entry)
		}
	}
	return result
}

type fakeSession struct {
	mu         sync.Mutex
	messages   []interfaces.RawMessage
	selectErr  error
	fetchErr   error
	closeCount int
	readOnly   *bool
}

func (s *fakeSession) State() enum.SessionState {
	return enum.SessionIdle
}

func (s *fakeSession) SelectMailbox(ctx context.Context, name string, readOnly bool) (*interfaces.MailboxInfo, error) {
	s.readOnly = &readOnly
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	return &interfaces.MailboxInfo{Name: name, MessageCount: uint32(len(s.messages))}, nil
}

func (s *fakeSession) SearchUnseen(ctx context.Context) ([]uint32, error) {
	uids := make([]uint32, 0, len(s.messages))
	for _, msg := range s.messages {
		uids = append(uids, msg.UID)
	}
	return uids, nil
}

func (s *fakeSession) Fetch(ctx context.Context, uids []uint32) (<-chan interfaces.RawMessage, <-chan error) {
	out := make(chan interfaces.RawMessage)
	done := make(chan error, 1)
	go func() {
		defer close(out)
		for _, msg := range s.messages {
			out <- msg
		}
		done <- s.fetchErr
	}()
	return out, done
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCount++
	return nil
}

func (s *fakeSession) closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCount
}

type fakeDialer struct {
	session *fakeSession
	err     error
	opened  int
}

func (d *fakeDialer) Open(ctx context.Context, config *models.MailboxConfig, opts interfaces.SessionOptions) (interfaces.MailSession, error) {
	d.opened++
	if d.err != nil {
		return nil, d.err
	}
	return d.session, nil
}

type extractorFunc func(ctx context.Context, attachment interfaces.Attachment) (string, error)

func (f extractorFunc) Extract(ctx context.Context, attachment interfaces.Attachment) (string, error) {
	return f(ctx, attachment)
}

type analyzerFunc func(ctx context.Context, text string) (*interfaces.ResumeAnalysis, error)

func (f analyzerFunc) Analyze(ctx context.Context, text string) (*interfaces.ResumeAnalysis, error) {
	return f(ctx, text)
}

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	return nil
}

func (s *fakeStorage) Download(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	return nil
}

func (s *fakeStorage) GetPublicURL(key string) string {
	return "https://files.example.com/" + key
}

type fakePublisher struct {
	mu        sync.Mutex
	created   []dto.CandidateCreated
	completed []dto.ProcessingRunResult
	err       error
}

func (p *fakePublisher) PublishCandidateCreated(ctx context.Context, event dto.CandidateCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
	return p.err
}

func (p *fakePublisher) PublishProcessingRunCompleted(ctx context.Context, result dto.ProcessingRunResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, result)
	return p.err
}

func (p *fakePublisher) Close() error {
	return nil
}
