package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const generatedMessageIdDomain = "mailsorter.local"

func NormalizeMessageID(messageID string) string {
	messageID = strings.TrimSpace(messageID)
	messageID = strings.TrimPrefix(messageID, "<")
	messageID = strings.TrimSuffix(messageID, ">")
	return strings.TrimSpace(messageID)
}

// DeriveMessageID builds a stable id from the raw message bytes, for mail without a Message-ID header.
func DeriveMessageID(raw []byte) string {
	hash := sha256.Sum256(raw)
	return fmt.Sprintf("generated-%x@%s", hash[:16], generatedMessageIdDomain)
}

// MessageIDKey is a storage-safe key for a message id.
func MessageIDKey(messageID string) string {
	hash := sha256.Sum256([]byte(messageID))
	return fmt.Sprintf("%x", hash)
}

func GenerateNanoIDWithPrefix(prefix string, size int) string {
	alphabet := "abcdefghijklmnopqrstuvwxyz0123456789"
	id, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		panic(err)
	}
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
