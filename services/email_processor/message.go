package email_processor

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/internal/enum"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/logger"
	"github.com/customeros/mailsorter/internal/models"
	"github.com/customeros/mailsorter/internal/tracing"
	"github.com/customeros/mailsorter/internal/utils"
	"github.com/customeros/mailsorter/services/classifier"
)

type messageResult struct {
	persisted bool
	duplicate bool
	degraded  bool
	failed    bool
}

func (r messageResult) apply(stats *dto.RunStats) {
	switch {
	case r.persisted:
		stats.Persisted++
	case r.duplicate:
		stats.Duplicates++
	case r.failed:
		stats.Failed++
	}
	if r.degraded {
		stats.Degraded++
	}
}

// processMessage handles one message. Only run-fatal errors are returned; everything else is logged
// and reported through the result.
func (p *Processor) processMessage(ctx context.Context, log logger.Logger, raw dto.RawMessage) (messageResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Processor.processMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("uid", raw.UID)

	msg, err := p.parser.Parse(raw)
	if err != nil {
		tracing.TraceErr(span, err)
		log.Warnf("Skipping unparseable message uid %d: %v", raw.UID, err)
		return messageResult{failed: true}, nil
	}
	tracing.TagMessageId(span, msg.MessageID)

	exists, err := p.repository.Exists(ctx, msg.MessageID)
	if err != nil {
		tracing.TraceErr(span, err)
		log.Errorf("Failed to check %s against the store: %v", msg.MessageID, err)
		return messageResult{failed: true}, nil
	}
	if exists {
		log.Debugf("Message %s already processed, skipping", msg.MessageID)
		return messageResult{duplicate: true}, nil
	}

	result := messageResult{}
	verdict, err := p.classifier.Classify(ctx, msg)
	if err != nil {
		if mserrors.IsRunFatal(err) {
			return result, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, errors.Wrap(ctxErr, "pipeline run cancelled")
		}
		tracing.TraceErr(span, err)
		log.Warnf("Classification of %s degraded: %v", msg.MessageID, err)
		verdict = classifier.Degrade(err)
		result.degraded = true
	}

	email := p.buildEmail(msg, verdict)
	email.RawArchiveKey = p.archiveRaw(ctx, log, msg)

	if err = p.repository.Insert(ctx, email); err != nil {
		if errors.Is(err, mserrors.ErrDuplicateKey) {
			log.Infof("Message %s was stored concurrently, skipping", msg.MessageID)
			return messageResult{duplicate: true}, nil
		}
		tracing.TraceErr(span, err)
		log.Errorf("Failed to store %s: %v", msg.MessageID, err)
		result.failed = true
		return result, nil
	}
	result.persisted = true

	p.publishClassified(ctx, log, email)
	return result, nil
}

func (p *Processor) buildEmail(msg *dto.NormalizedMessage, verdict *dto.Verdict) *models.Email {
	category := verdict.Category
	if !category.IsValid() {
		category = enum.CategoryOther
	}

	attachments := make(models.Attachments, 0, len(msg.Attachments))
	for _, attachment := range msg.Attachments {
		attachments = append(attachments, models.Attachment{
			Filename:    attachment.Filename,
			Size:        attachment.Size,
			ContentType: attachment.ContentType,
		})
	}

	return &models.Email{
		ID:          utils.GenerateNanoIDWithPrefix("email", 24),
		MessageID:   msg.MessageID,
		Subject:     msg.Subject,
		From:        msg.From,
		FromAddress: msg.FromAddress,
		To:          msg.To,
		ToAddresses: msg.ToAddresses,
		Date:        msg.Date,
		Body:        msg.Body,
		Attachments: attachments,
		Category:    category,
		Confidence:  verdict.Confidence,
		Reasoning:   verdict.Reasoning,
		Priority:    enum.PriorityForCategory(category),
		IsRead:      false,
		ProcessedAt: p.now().UTC(),
	}
}

func (p *Processor) archiveRaw(ctx context.Context, log logger.Logger, msg *dto.NormalizedMessage) string {
	if p.archiver == nil || len(msg.Raw) == 0 {
		return ""
	}
	key, err := p.archiver.Archive(ctx, msg.MessageID, msg.Raw)
	if err != nil {
		log.Warnf("Failed to archive raw message %s: %v", msg.MessageID, err)
		return ""
	}
	return key
}

func (p *Processor) publishClassified(ctx context.Context, log logger.Logger, email *models.Email) {
	err := p.publisher.PublishEmailClassified(ctx, dto.EmailClassified{
		EmailID:     email.ID,
		MessageID:   email.MessageID,
		Subject:     email.Subject,
		From:        email.From,
		Category:    email.Category,
		Confidence:  email.Confidence,
		Priority:    email.Priority,
		ProcessedAt: email.ProcessedAt,
	})
	if err != nil {
		log.Warnf("Failed to publish classification of %s: %v", email.MessageID, err)
	}
}
