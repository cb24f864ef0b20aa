package cron

import (
	"context"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	cronv3 "github.com/robfig/cron/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/interfaces"
	cron_config "github.com/recruitstack/recruitstack/internal/cron/config"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
)

const (
	JobHeartbeat     = "heartbeat"
	JobProcessEmails = "process_emails"

	leaseName = "recruitstack-cron-leader"

	// LeaseDuration is how long a lease lasts before needing renewal
	LeaseDuration = 15 * time.Second
	// RenewDeadline is how long a leader has to renew its lease
	RenewDeadline = 10 * time.Second
	// RetryPeriod is how long to wait between leadership attempts
	RetryPeriod = 2 * time.Second

	appSourceCron = "cron"
)

type CronManager struct {
	cfg       *config.Config
	log       logger.Logger
	cron      *cronv3.Cron
	k8s       kubernetes.Interface
	processor interfaces.EmailProcessor
	schedule  cron_config.Config

	mu       sync.Mutex
	jobIDs   map[string]cronv3.EntryID
	stopCh   chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc
}

func NewCronManager(cfg *config.Config, log logger.Logger, k8s kubernetes.Interface, processor interfaces.EmailProcessor) *CronManager {
	return &CronManager{
		cfg:       cfg,
		log:       log,
		k8s:       k8s,
		processor: processor,
		stopCh:    make(chan struct{}),
		jobIDs:    make(map[string]cronv3.EntryID),
	}
}

// Start schedules the jobs. Without a kubernetes client, or in local dev, no leader election is done.
func (cm *CronManager) Start(ctx context.Context) error {
	if err := env.Parse(&cm.schedule); err != nil {
		return errors.Wrap(err, "failed to parse cron config")
	}

	if cm.k8s == nil || cm.cfg.KubernetesConfig.LocalDev {
		cm.log.Info("Starting cron manager in local mode")
		return cm.StartCron()
	}

	ctx, cancel := context.WithCancel(ctx)
	cm.cancel = cancel

	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Name:      leaseName,
			Namespace: cm.cfg.KubernetesConfig.Namespace,
		},
		Client: cm.k8s.CoordinationV1(),
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: cm.cfg.KubernetesConfig.PodName,
		},
	}

	le, err := leaderelection.NewLeaderElector(leaderelection.LeaderElectionConfig{
		Lock:            lock,
		ReleaseOnCancel: true,
		LeaseDuration:   LeaseDuration,
		RenewDeadline:   RenewDeadline,
		RetryPeriod:     RetryPeriod,
		Callbacks: leaderelection.LeaderCallbacks{
			OnStartedLeading: func(ctx context.Context) {
				if err := cm.StartCron(); err != nil {
					cm.log.Errorf("Failed to start crons as leader: %v", err)
				}
			},
			OnStoppedLeading: func() {
				cm.log.Info("Leader lost - stopping crons")
				cm.stopCron()
			},
			OnNewLeader: func(identity string) {
				cm.log.Infof("New leader elected: %s", identity)
			},
		},
	})
	if err != nil {
		cm.log.Warnf("Leader election failed, falling back to local mode: %v", err)
		return cm.StartCron()
	}

	go le.Run(ctx)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (cm *CronManager) Stop() {
	cm.stopOnce.Do(func() {
		if cm.cancel != nil {
			cm.cancel()
		}
		cm.stopCron()
		close(cm.stopCh)
	})
}

func (cm *CronManager) stopCron() {
	cm.mu.Lock()
	c := cm.cron
	cm.cron = nil
	cm.mu.Unlock()

	if c != nil {
		cm.log.Info("Stopping cron manager")
		<-c.Stop().Done()
	}
}

// StartCron creates the scheduler, registers the jobs and starts it
func (cm *CronManager) StartCron() error {
	cm.log.Info("Starting cron manager")
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	)
	if err := cm.registerJobs(c); err != nil {
		return err
	}

	cm.mu.Lock()
	cm.cron = c
	cm.mu.Unlock()

	c.Start()
	return nil
}

func (cm *CronManager) registerJobs(c *cronv3.Cron) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.schedule.CronScheduleHeartbeat != "" {
		podName := cm.cfg.KubernetesConfig.PodName
		id, err := c.AddFunc(cm.schedule.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			return errors.Wrap(err, "could not add heartbeat cron job")
		}
		cm.jobIDs[JobHeartbeat] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cm.schedule.CronScheduleHeartbeat)
	}

	if cm.schedule.CronScheduleProcessEmails != "" && cm.processor != nil {
		id, err := c.AddFunc(cm.schedule.CronScheduleProcessEmails, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.processEmails()
		})
		if err != nil {
			return errors.Wrap(err, "could not add process emails cron job")
		}
		cm.jobIDs[JobProcessEmails] = id
		cm.log.Infof("Registered process emails job with schedule: %s", cm.schedule.CronScheduleProcessEmails)
	}
	return nil
}

func (cm *CronManager) processEmails() {
	ctx := utils.SetAppSourceInContext(context.Background(), appSourceCron)

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.processEmails")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	result, err := cm.processor.Run(ctx)
	switch {
	case errors.Is(err, internalerrors.ErrNoActiveConfig):
		cm.log.Debug("Skipping scheduled processing, no active mailbox configuration")
	case errors.Is(err, internalerrors.ErrProcessingInProgress):
		cm.log.Info("Skipping scheduled processing, a run is already in progress")
	case err != nil:
		tracing.TraceErr(span, err)
		cm.log.Errorf("Scheduled processing failed: %v", err)
	default:
		cm.log.Infof("Scheduled processing run %s done: %d processed, %d candidates created", result.RunId, result.Processed, result.CandidatesCreated)
	}
}
