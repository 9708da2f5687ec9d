package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/mailsorter/interfaces"
	"github.com/customeros/mailsorter/internal/models"
	"github.com/customeros/mailsorter/internal/tracing"
)

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) interfaces.EmailRepository {
	return &emailRepository{
		db: db,
	}
}

// Exists is a fast-path check only; the unique index on message_id is authoritative.
func (r *emailRepository) Exists(ctx context.Context, messageID string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Exists")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagMessageId(span, messageID)

	if messageID == "" {
		return false, ErrInvalidInput
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("message_id = ?", messageID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return false, errors.Wrap(err, "failed to check email existence")
	}

	span.SetTag("exists", count > 0)
	return count > 0, nil
}

// Insert never overwrites; a second insert for the same message id fails with ErrDuplicateKey.
func (r *emailRepository) Insert(ctx context.Context, email *models.Email) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Insert")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if email == nil || email.MessageID == "" {
		return ErrInvalidInput
	}
	tracing.TagMessageId(span, email.MessageID)

	result := r.db.WithContext(ctx).Create(email)
	if result.Error != nil {
		err := translateInsertError(result.Error, email.MessageID)
		tracing.TraceErr(span, err)
		return err
	}

	span.SetTag("email.id", email.ID)
	return nil
}

// GetByMessageID returns nil, nil when no record exists.
func (r *emailRepository) GetByMessageID(ctx context.Context, messageID string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByMessageID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagMessageId(span, messageID)

	var email models.Email
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}
