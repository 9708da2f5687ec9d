package dto

import (
	"time"

	"github.com/customeros/mailsorter/internal/enum"
)

// EmailClassified is published after a record has been committed.
type EmailClassified struct {
	EmailID     string             `json:"emailId"`
	MessageID   string             `json:"messageId"`
	Subject     string             `json:"subject"`
	From        string             `json:"from"`
	Category    enum.EmailCategory `json:"category"`
	Confidence  float64            `json:"confidence"`
	Priority    enum.EmailPriority `json:"priority"`
	ProcessedAt time.Time          `json:"processedAt"`
}

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id        string      `json:"id"`
	EntityId  string      `json:"entityId"`
	EventType string      `json:"eventType"`
	Data      interface{} `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uberTraceId"`
	RunId       string `json:"runId"`
	Timestamp   string `json:"timestamp"`
}
