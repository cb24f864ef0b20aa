package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes"

	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/dto"
	cron_config "github.com/recruitstack/recruitstack/internal/cron/config"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/logger"
)

type mockKubernetesInterface struct {
	kubernetes.Interface
	mock.Mock
}

type mockProcessor struct {
	mock.Mock
	calls atomic.Int32
}

func (m *mockProcessor) Run(ctx context.Context) (*dto.ProcessingRunResult, error) {
	m.calls.Add(1)
	args := m.Called(ctx)
	result, _ := args.Get(0).(*dto.ProcessingRunResult)
	return result, args.Error(1)
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func testConfig() *config.Config {
	return &config.Config{
		KubernetesConfig: &config.KubernetesConfig{
			PodName:   "recruitstack-0",
			Namespace: "default",
			LocalDev:  true,
		},
	}
}

func TestNewCronManager(t *testing.T) {
	cfg := testConfig()
	log := getLogger()
	k8s := &mockKubernetesInterface{}

	cm := NewCronManager(cfg, log, k8s, nil)

	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.Equal(t, k8s, cm.k8s)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_RegisterJobs(t *testing.T) {
	processor := &mockProcessor{}
	cm := NewCronManager(testConfig(), getLogger(), nil, processor)
	cm.schedule = cron_config.Config{
		CronScheduleHeartbeat:     "0 * * * * *",
		CronScheduleProcessEmails: "0 */15 * * * *",
	}

	c := cronv3.New(cronv3.WithSeconds())
	require.NoError(t, cm.registerJobs(c))

	assert.Len(t, cm.jobIDs, 2)
	assert.Contains(t, cm.jobIDs, JobHeartbeat)
	assert.Contains(t, cm.jobIDs, JobProcessEmails)
	assert.Len(t, c.Entries(), 2)
}

func TestCronManager_RegisterJobs_ProcessingDisabled(t *testing.T) {
	cm := NewCronManager(testConfig(), getLogger(), nil, &mockProcessor{})
	cm.schedule = cron_config.Config{CronScheduleHeartbeat: "0 * * * * *"}

	c := cronv3.New(cronv3.WithSeconds())
	require.NoError(t, cm.registerJobs(c))

	assert.Len(t, cm.jobIDs, 1)
	assert.NotContains(t, cm.jobIDs, JobProcessEmails)
}

func TestCronManager_RegisterJobs_InvalidSchedule(t *testing.T) {
	cm := NewCronManager(testConfig(), getLogger(), nil, &mockProcessor{})
	cm.schedule = cron_config.Config{CronScheduleProcessEmails: "not a schedule"}

	err := cm.registerJobs(cronv3.New(cronv3.WithSeconds()))
	assert.Error(t, err)
}

func TestCronManager_ProcessEmails(t *testing.T) {
	processor := &mockProcessor{}
	processor.On("Run", mock.Anything).Return(&dto.ProcessingRunResult{RunId: "run-1", Processed: 2}, nil).Once()
	processor.On("Run", mock.Anything).Return(nil, internalerrors.ErrNoActiveConfig).Once()
	processor.On("Run", mock.Anything).Return(nil, internalerrors.ErrProcessingInProgress).Once()

	cm := NewCronManager(testConfig(), getLogger(), nil, processor)
	cm.processEmails()
	cm.processEmails()
	cm.processEmails()

	processor.AssertExpectations(t)
	assert.Equal(t, int32(3), processor.calls.Load())
}

func TestCronManager_StartLocalAndStop(t *testing.T) {
	t.Setenv("CRON_SCHEDULE_HEARTBEAT", "* * * * * *")
	t.Setenv("CRON_SCHEDULE_PROCESS_EMAILS", "* * * * * *")

	processor := &mockProcessor{}
	processor.On("Run", mock.Anything).Return(nil, internalerrors.ErrNoActiveConfig)

	cm := NewCronManager(testConfig(), getLogger(), &mockKubernetesInterface{}, processor)
	require.NoError(t, cm.Start(context.Background()))
	assert.Contains(t, cm.jobIDs, JobProcessEmails)

	assert.Eventually(t, func() bool {
		return processor.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)

	cm.Stop()
	cm.Stop()

	select {
	case <-cm.stopCh:
	default:
		t.Error("Stop channel was not closed")
	}
	assert.Nil(t, cm.cron)
}
