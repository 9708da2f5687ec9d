package dto

import "time"

type NormalizedMessage struct {
	MessageID   string
	Subject     string
	From        string
	FromAddress string
	To          string
	ToAddresses []string
	Date        time.Time
	Body        string
	Attachments []Attachment

	// Raw is kept for archiving and is never persisted in the record itself.
	Raw []byte `json:"-"`
}

type Attachment struct {
	Filename    string `json:"filename"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType"`
}
