package email_processor

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/enum"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
)

const (
	DefaultMailbox         = "INBOX"
	DefaultResumeURLPrefix = "/resumes"
	ResumeArchivePrefix    = "resumes"
)

type Options struct {
	Mailbox            string
	Session            interfaces.SessionOptions
	Concurrency        int
	MaxAttachmentBytes int
	MaxTextChars       int
	ResumeURLPrefix    string
}

type Dependencies struct {
	Configs    interfaces.MailboxConfigRepository
	Candidates interfaces.CandidateRepository
	Logs       interfaces.ProcessingLogRepository
	Dialer     interfaces.MailDialer
	Extractor  interfaces.TextExtractor
	Analyzer   interfaces.ResumeAnalyzer
	// optional
	Storage   interfaces.StorageService
	Publisher interfaces.EventPublisher
}

type Processor struct {
	deps    Dependencies
	opts    Options
	log     logger.Logger
	running sync.Mutex
}

func NewProcessor(deps Dependencies, opts Options, log logger.Logger) *Processor {
	if opts.Mailbox == "" {
		opts.Mailbox = DefaultMailbox
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.ResumeURLPrefix == "" {
		opts.ResumeURLPrefix = DefaultResumeURLPrefix
	}
	return &Processor{deps: deps, opts: opts, log: log}
}

// runState collects counters from concurrent attachment tasks
type runState struct {
	mu     sync.Mutex
	result *dto.ProcessingRunResult
}

func (r *runState) addMessage(msg *interfaces.DecodedMessage) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result.Processed++
	r.result.ProcessedMessages = append(r.result.ProcessedMessages, dto.ProcessedMessage{
		UID:          msg.UID,
		Subject:      msg.Subject,
		SenderEmail:  msg.FromAddress,
		CandidateIds: []string{},
	})
	return len(r.result.ProcessedMessages) - 1
}

func (r *runState) recordCandidate(index int, candidateId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result.CandidatesCreated++
	r.result.ProcessedMessages[index].CandidateIds = append(r.result.ProcessedMessages[index].CandidateIds, candidateId)
}

func (r *runState) recordFailure(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result.AttachmentsFailed++
	r.result.ProcessedMessages[index].Failed++
}

// Run performs one end-to-end pass over the unseen messages of the active mailbox.
// Only one run executes at a time; a concurrent call gets ErrProcessingInProgress.
func (p *Processor) Run(ctx context.Context) (*dto.ProcessingRunResult, error) {
	if !p.running.TryLock() {
		return nil, internalerrors.ErrProcessingInProgress
	}
	defer p.running.Unlock()

	runId := uuid.New().String()
	ctx = utils.SetRunIdInContext(ctx, runId)

	span, ctx := opentracing.StartSpanFromContext(ctx, "Processor.Run")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, runId)

	log := p.log.With(zap.String("runId", runId))

	config, err := p.deps.Configs.GetActive(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to load active mailbox configuration")
	}
	if config == nil {
		tracing.TraceErr(span, internalerrors.ErrNoActiveConfig)
		return nil, internalerrors.ErrNoActiveConfig
	}

	state := &runState{result: &dto.ProcessingRunResult{
		RunId:             runId,
		StartedAt:         utils.Now(),
		ProcessedMessages: []dto.ProcessedMessage{},
	}}

	if err := p.processMailbox(ctx, log, config, state); err != nil {
		tracing.TraceErr(span, err)
		log.Errorf("Processing run failed: %v", err)
		return nil, err
	}

	result := state.result
	result.FinishedAt = utils.Now()
	span.SetTag("messages.found", result.MessagesFound)
	span.SetTag("candidates.created", result.CandidatesCreated)
	log.Infof("Processing run finished: %d messages found, %d processed, %d candidates created, %d attachments failed",
		result.MessagesFound, result.Processed, result.CandidatesCreated, result.AttachmentsFailed)

	if p.deps.Publisher != nil {
		if err := p.deps.Publisher.PublishProcessingRunCompleted(ctx, *result); err != nil {
			tracing.TraceErr(span, err)
			log.Warnf("Failed to publish run completed event: %v", err)
		}
	}

	return result, nil
}

// processMailbox owns the session; it is closed exactly once on every path out of here
func (p *Processor) processMailbox(ctx context.Context, log logger.Logger, config *models.MailboxConfig, state *runState) error {
	session, err := p.deps.Dialer.Open(ctx, config, p.opts.Session)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Debugf("Error closing IMAP session: %v", err)
		}
	}()

	if _, err := session.SelectMailbox(ctx, p.opts.Mailbox, false); err != nil {
		return err
	}

	uids, err := session.SearchUnseen(ctx)
	if err != nil {
		return err
	}
	state.result.MessagesFound = len(uids)
	if len(uids) == 0 {
		log.Info("No unseen messages")
		return nil
	}

	messages, done := session.Fetch(ctx, uids)

	group := new(errgroup.Group)
	group.SetLimit(p.opts.Concurrency)

	for raw := range messages {
		msg, err := DecodeMessage(raw.UID, raw.Body)
		if err != nil {
			state.mu.Lock()
			state.result.MessagesMalformed++
			state.mu.Unlock()
			log.Warnf("Skipping message %d: %v", raw.UID, err)
			continue
		}

		state.mu.Lock()
		state.result.MessagesDecoded++
		state.mu.Unlock()

		var resumes []interfaces.Attachment
		for _, attachment := range msg.Attachments {
			if IsResumeCandidate(attachment.Filename) {
				resumes = append(resumes, attachment)
			}
		}
		if len(resumes) == 0 {
			log.Debugf("Message %d has no résumé attachments", msg.UID)
			continue
		}

		index := state.addMessage(msg)
		for _, attachment := range resumes {
			attachment := attachment
			group.Go(func() error {
				candidateId, err := p.processAttachment(ctx, log, msg, attachment)
				if err != nil {
					state.recordFailure(index)
					log.Warnf("Attachment %q from message %d failed: %v", attachment.Filename, msg.UID, err)
					return nil
				}
				state.recordCandidate(index, candidateId)
				return nil
			})
		}
	}

	_ = group.Wait()

	if err := <-done; err != nil {
		return err
	}
	return ctx.Err()
}

// processAttachment runs one résumé through extraction, analysis and persistence.
// The log entry it creates is always finalised, including after a panic.
func (p *Processor) processAttachment(ctx context.Context, log logger.Logger, msg *interfaces.DecodedMessage, attachment interfaces.Attachment) (candidateId string, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Processor.processAttachment")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("attachment.name", attachment.Filename)
	span.SetTag("attachment.size", len(attachment.Content))
	span.SetTag("message.uid", msg.UID)

	var entry *models.ProcessingLogEntry

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing attachment: %v", r)
			log.Errorf("%v\n%s", err, debug.Stack())
			candidateId = ""
		}
		if err != nil {
			tracing.TraceErr(span, err)
			if entry != nil {
				p.finaliseWithError(ctx, log, entry.ID, err)
			}
		}
	}()

	entry, err = p.deps.Logs.Insert(ctx, &models.ProcessingLogEntry{
		RunID:            utils.GetRunIdFromContext(ctx),
		EmailSubject:     msg.Subject,
		SenderEmail:      msg.FromAddress,
		AttachmentName:   attachment.Filename,
		ProcessingStatus: enum.ProcessingStatusProcessing,
	})
	if err != nil {
		entry = nil
		return "", errors.Wrap(err, "failed to create processing log entry")
	}

	if msg.FromAddress == "" {
		return "", internalerrors.NewExtractionError("sender address is missing", nil)
	}
	if p.opts.MaxAttachmentBytes > 0 && len(attachment.Content) > p.opts.MaxAttachmentBytes {
		return "", internalerrors.NewExtractionError(fmt.Sprintf("attachment exceeds %d bytes", p.opts.MaxAttachmentBytes), nil)
	}

	text, err := p.deps.Extractor.Extract(ctx, attachment)
	if err != nil {
		if !errors.Is(err, internalerrors.ErrExtraction) {
			err = internalerrors.NewExtractionError(attachment.Filename, err)
		}
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", internalerrors.NewExtractionError("no text found in "+attachment.Filename, nil)
	}
	text = utils.Truncate(text, p.opts.MaxTextChars)

	analysis, err := p.deps.Analyzer.Analyze(ctx, text)
	if err != nil {
		if !errors.Is(err, internalerrors.ErrAnalysis) {
			err = internalerrors.NewAnalysisError("analyzer failed", err)
		}
		return "", err
	}
	if analysis == nil {
		return "", internalerrors.NewAnalysisError("empty analysis", nil)
	}
	if analysis.RelevanceScore < 1 || analysis.RelevanceScore > 100 {
		return "", internalerrors.NewAnalysisError(fmt.Sprintf("relevance score %d out of range", analysis.RelevanceScore), nil)
	}

	objectPath := archiveObjectPath(entry.ID, attachment.Filename)
	if p.deps.Storage != nil {
		key := ResumeArchivePrefix + "/" + objectPath
		if err := p.deps.Storage.Upload(ctx, key, attachment.Content, attachment.MimeType); err != nil {
			return "", errors.Wrapf(err, "failed to archive %s", key)
		}
	}

	candidate, err := p.deps.Candidates.Insert(ctx, &models.Candidate{
		Email:             msg.FromAddress,
		FullName:          DeriveCandidateName(msg.FromName, msg.FromAddress),
		Department:        utils.StringPtrNillable(analysis.Department),
		EducationLevel:    utils.StringPtrNillable(analysis.EducationLevel),
		HierarchicalLevel: utils.StringPtrNillable(analysis.HierarchicalLevel),
		Skills:            pq.StringArray(nonNilSkills(analysis.Skills)),
		ExecutiveSummary:  utils.StringPtrNillable(analysis.ExecutiveSummary),
		RelevanceScore:    analysis.RelevanceScore,
		ResumeURL:         utils.StringPtr(resumeURL(p.opts.ResumeURLPrefix, objectPath)),
		SourceRunID:       utils.GetRunIdFromContext(ctx),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to save candidate")
	}
	tracing.TagEntity(span, candidate.ID)

	if err := p.completeEntry(ctx, entry.ID, candidate.ID); err != nil {
		// the candidate exists, so the attachment still counts as created
		tracing.TraceErr(span, err)
		log.Errorf("Failed to complete processing log %s for candidate %s: %v", entry.ID, candidate.ID, err)
	}

	if p.deps.Publisher != nil {
		event := dto.CandidateCreated{
			CandidateId:       candidate.ID,
			Email:             candidate.Email,
			FullName:          candidate.FullName,
			Department:        analysis.Department,
			HierarchicalLevel: analysis.HierarchicalLevel,
			Skills:            candidate.Skills,
			RelevanceScore:    candidate.RelevanceScore,
			ResumeUrl:         utils.GetOrDefault(candidate.ResumeURL, ""),
			ProcessingLogId:   entry.ID,
		}
		if err := p.deps.Publisher.PublishCandidateCreated(ctx, event); err != nil {
			tracing.TraceErr(span, err)
			log.Warnf("Failed to publish candidate created event for %s: %v", candidate.ID, err)
		}
	}

	return candidate.ID, nil
}

// completeEntry marks the entry completed once the candidate row exists, even if the run was cancelled meanwhile.
// A failed update is retried once.
func (p *Processor) completeEntry(ctx context.Context, entryId, candidateId string) error {
	ctx = context.WithoutCancel(ctx)
	update := interfaces.ProcessingLogUpdate{
		Status:      enum.ProcessingStatusCompleted,
		CandidateID: utils.StringPtr(candidateId),
	}
	err := p.deps.Logs.Update(ctx, entryId, update)
	if err == nil {
		return nil
	}
	if retryErr := p.deps.Logs.Update(ctx, entryId, update); retryErr != nil {
		return errors.Wrapf(retryErr, "retry after: %v", err)
	}
	return nil
}

func (p *Processor) finaliseWithError(ctx context.Context, log logger.Logger, entryId string, cause error) {
	// the run context may already be cancelled, the log entry must still be finalised
	ctx = context.WithoutCancel(ctx)
	message := cause.Error()
	if err := p.deps.Logs.Update(ctx, entryId, interfaces.ProcessingLogUpdate{
		Status:       enum.ProcessingStatusError,
		ErrorMessage: &message,
	}); err != nil {
		log.Errorf("Failed to mark processing log %s as failed: %v", entryId, err)
	}
}

func archiveFileName(filename string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(filename))
	if name == "" {
		return "resume"
	}
	return name
}

// archiveObjectPath scopes the file under its processing log entry so equal file names never share an object
func archiveObjectPath(entryId, filename string) string {
	return entryId + "/" + archiveFileName(filename)
}

func resumeURL(prefix, filename string) string {
	return strings.TrimRight(prefix, "/") + "/" + filename
}

func nonNilSkills(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
