package interfaces

import "github.com/customeros/mailsorter/dto"

type MessageParser interface {
	Parse(raw dto.RawMessage) (*dto.NormalizedMessage, error)
}
