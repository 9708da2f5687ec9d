package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/customeros/mailsorter/internal/enum"
	"github.com/customeros/mailsorter/internal/utils"
)

// Email is the persisted, classified form of one ingested message.
type Email struct {
	ID        string `gorm:"column:id;type:varchar(50);primaryKey"`
	MessageID string `gorm:"column:message_id;uniqueIndex;type:varchar(512);not null"`

	Subject     string         `gorm:"column:subject;type:varchar(1000);not null"`
	From        string         `gorm:"column:from;type:varchar(512);not null"`
	FromAddress string         `gorm:"column:from_address;type:varchar(255);index"`
	To          string         `gorm:"column:to;type:text;not null"`
	ToAddresses pq.StringArray `gorm:"column:to_addresses;type:text[]"`
	Date        time.Time      `gorm:"column:date;type:timestamp;index;not null"`
	Body        string         `gorm:"column:body;type:text;not null"`
	Attachments Attachments    `gorm:"column:attachments;type:jsonb"`

	// Classification
	Category   enum.EmailCategory `gorm:"column:category;type:varchar(50);index;not null;default:other"`
	Confidence float64            `gorm:"column:confidence;not null;default:0"`
	Reasoning  string             `gorm:"column:reasoning;type:text"`
	Priority   enum.EmailPriority `gorm:"column:priority;type:varchar(20);index;not null;default:medium"`

	IsRead        bool      `gorm:"column:is_read;not null;default:false"`
	RawArchiveKey string    `gorm:"column:raw_archive_key;type:varchar(255)"`
	ProcessedAt   time.Time `gorm:"column:processed_at;type:timestamp;not null"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (Email) TableName() string {
	return "classified_emails"
}

func (e *Email) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("email", 24)
	}
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now().UTC()
	}
	return nil
}
