package cron

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/customeros/mailsorter/interfaces"
	cron_config "github.com/customeros/mailsorter/internal/cron/config"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/logger"
	"github.com/customeros/mailsorter/internal/tracing"
	"github.com/customeros/mailsorter/internal/utils"
)

const (
	TriggerStartup   = "startup"
	TriggerScheduled = "scheduled"

	jobPipeline  = "pipeline"
	jobHeartbeat = "heartbeat"
)

type CronManager struct {
	cfg       *cron_config.Config
	log       logger.Logger
	processor interfaces.EmailProcessor

	mu       sync.Mutex
	cron     *cronv3.Cron
	jobIDs   map[string]cronv3.EntryID
	interval time.Duration
	inflight sync.WaitGroup
}

func NewCronManager(cfg *cron_config.Config, log logger.Logger, processor interfaces.EmailProcessor) *CronManager {
	if cfg == nil {
		cfg = &cron_config.Config{}
	}
	return &CronManager{
		cfg:       cfg,
		log:       log,
		processor: processor,
		jobIDs:    make(map[string]cronv3.EntryID),
	}
}

// StartScheduled runs the pipeline every interval, starting with one immediate run.
func (cm *CronManager) StartScheduled(interval time.Duration) error {
	if interval <= 0 {
		return errors.Errorf("invalid pipeline interval %v", interval)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cron != nil {
		return errors.New("scheduler already started")
	}

	cronLog := newCronLogger(cm.log)
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithLogger(cronLog),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronLog),
			cronv3.Recover(cronLog),
		),
	)

	cm.jobIDs[jobPipeline] = c.Schedule(cronv3.Every(interval), cronv3.FuncJob(func() {
		defer tracing.RecoverAndLogToJaeger(cm.log)
		cm.runPipeline(TriggerScheduled)
	}))

	if cm.cfg.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cm.cfg.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s, pipeline running: %t", podName, cm.processor.IsRunning())
		})
		if err != nil {
			cm.jobIDs = make(map[string]cronv3.EntryID)
			return errors.Wrap(err, "could not add heartbeat cron job")
		}
		cm.jobIDs[jobHeartbeat] = id
	}

	c.Start()
	cm.cron = c
	cm.interval = interval
	cm.log.Infof("Pipeline scheduled every %v", interval)

	cm.inflight.Add(1)
	go func() {
		defer cm.inflight.Done()
		defer tracing.RecoverAndLogToJaeger(cm.log)
		cm.runPipeline(TriggerStartup)
	}()

	return nil
}

// StopScheduled stops the scheduler and waits for any in-flight run to finish.
func (cm *CronManager) StopScheduled() {
	cm.mu.Lock()
	c := cm.cron
	cm.cron = nil
	cm.interval = 0
	cm.jobIDs = make(map[string]cronv3.EntryID)
	cm.mu.Unlock()

	if c != nil {
		cm.log.Info("Stopping cron manager")
		<-c.Stop().Done()
	}
	cm.inflight.Wait()
}

func (cm *CronManager) IsScheduled() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.cron != nil
}

func (cm *CronManager) Interval() time.Duration {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.interval
}

// NextRun is the zero time when the scheduler is stopped.
func (cm *CronManager) NextRun() time.Time {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cron == nil {
		return time.Time{}
	}
	id, ok := cm.jobIDs[jobPipeline]
	if !ok {
		return time.Time{}
	}
	return cm.cron.Entry(id).Next
}

func (cm *CronManager) runPipeline(trigger string) {
	ctx := utils.WithTrigger(context.Background(), trigger)

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runPipeline")
	defer span.Finish()
	tracing.TagComponentCronJob(span)
	span.SetTag(tracing.SpanTagTrigger, trigger)

	persisted, err := cm.processor.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, mserrors.ErrRunInProgress) {
			cm.log.Infof("Skipping %s pipeline run, another run is in progress", trigger)
			return
		}
		tracing.TraceErr(span, err)
		cm.log.Errorf("Scheduled pipeline run failed: %v", err)
		return
	}
	cm.log.Infof("Scheduled pipeline run persisted %d new emails", persisted)
}
