package dto

// RawMessage is one message as fetched from the mailbox, before parsing.
type RawMessage struct {
	SeqNum uint32
	UID    uint32
	Body   []byte
}
