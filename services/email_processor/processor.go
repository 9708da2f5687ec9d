package email_processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/interfaces"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/logger"
	"github.com/customeros/mailsorter/internal/tracing"
	"github.com/customeros/mailsorter/internal/utils"
)

// Processor runs the ingestion pipeline: fetch, parse, dedup, classify, persist.
// At most one run is active at a time.
type Processor struct {
	mailboxFactory interfaces.MailboxClientFactory
	parser         interfaces.MessageParser
	classifier     interfaces.ClassifierService
	repository     interfaces.EmailRepository
	publisher      interfaces.EventsPublisher
	archiver       interfaces.RawEmailArchiver
	windowDays     int
	log            logger.Logger
	now            func() time.Time

	running atomic.Bool
	statsMu sync.RWMutex
	lastRun *dto.RunStats
}

// NewProcessor builds a processor. archiver may be nil, in which case raw messages are not archived.
func NewProcessor(
	mailboxFactory interfaces.MailboxClientFactory,
	parser interfaces.MessageParser,
	classifier interfaces.ClassifierService,
	repository interfaces.EmailRepository,
	publisher interfaces.EventsPublisher,
	archiver interfaces.RawEmailArchiver,
	windowDays int,
	log logger.Logger,
) *Processor {
	return &Processor{
		mailboxFactory: mailboxFactory,
		parser:         parser,
		classifier:     classifier,
		repository:     repository,
		publisher:      publisher,
		archiver:       archiver,
		windowDays:     windowDays,
		log:            log,
		now:            time.Now,
	}
}

func (p *Processor) IsRunning() bool {
	return p.running.Load()
}

// Status returns a copy of the last run's stats, or of the current run while one is active.
func (p *Processor) Status() *dto.RunStats {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	if p.lastRun == nil {
		return nil
	}
	stats := *p.lastRun
	return &stats
}

// RunOnce performs one pipeline run and returns the number of newly persisted records.
// It returns ErrRunInProgress without doing anything when another run is active.
func (p *Processor) RunOnce(ctx context.Context) (int, error) {
	if !p.running.CompareAndSwap(false, true) {
		return 0, mserrors.ErrRunInProgress
	}
	defer p.running.Store(false)

	runId := uuid.NewString()
	ctx = utils.WithRunId(ctx, runId)

	span, ctx := opentracing.StartSpanFromContext(ctx, "Processor.RunOnce")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	log := p.log.With(zap.String("runId", runId))
	stats := &dto.RunStats{
		RunID:     runId,
		Trigger:   utils.GetTriggerFromContext(ctx),
		StartedAt: p.now().UTC(),
	}
	p.publishStats(stats)

	log.Infof("Pipeline run started, trigger: %s", stats.Trigger)
	err := p.run(ctx, log, stats)

	finishedAt := p.now().UTC()
	stats.FinishedAt = &finishedAt
	if err != nil {
		stats.Error = err.Error()
		tracing.TraceErr(span, err)
		log.Errorf("Pipeline run aborted: %v", err)
	} else {
		log.Infof("Pipeline run finished: fetched %d, persisted %d, duplicates %d, degraded %d, failed %d",
			stats.Fetched, stats.Persisted, stats.Duplicates, stats.Degraded, stats.Failed)
	}
	p.publishStats(stats)
	tracing.LogObjectAsJson(span, "stats", stats)

	return stats.Persisted, err
}

func (p *Processor) publishStats(stats *dto.RunStats) {
	snapshot := *stats
	p.statsMu.Lock()
	p.lastRun = &snapshot
	p.statsMu.Unlock()
}

func (p *Processor) run(ctx context.Context, log logger.Logger, stats *dto.RunStats) error {
	client := p.mailboxFactory()
	defer func() {
		if err := client.Close(); err != nil {
			log.Warnf("Failed to close mailbox session: %v", err)
		}
	}()

	if err := client.Connect(ctx); err != nil {
		return err
	}

	messages, err := client.FetchRecent(ctx, p.windowDays)
	if err != nil {
		return err
	}

	for raw, fetchErr := range messages {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "pipeline run cancelled")
		}
		if fetchErr != nil {
			if errors.Is(fetchErr, mserrors.ErrConnection) {
				return fetchErr
			}
			stats.Fetched++
			stats.Failed++
			log.Warnf("Skipping message uid %d: %v", raw.UID, fetchErr)
			continue
		}
		stats.Fetched++

		result, err := p.processMessage(ctx, log, raw)
		if err != nil {
			return err
		}
		result.apply(stats)
		p.publishStats(stats)
	}

	return nil
}
