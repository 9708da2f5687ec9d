package repository

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	mserrors "github.com/customeros/mailsorter/internal/errors"
)

func TestTranslateInsertError(t *testing.T) {
	assert.NoError(t, translateInsertError(nil, "id"))

	dup := translateInsertError(gorm.ErrDuplicatedKey, "abc@example.com")
	assert.True(t, errors.Is(dup, mserrors.ErrDuplicateKey))
	assert.Contains(t, dup.Error(), "abc@example.com")

	other := translateInsertError(errors.New("connection reset"), "abc@example.com")
	assert.False(t, errors.Is(other, mserrors.ErrDuplicateKey))
	assert.Contains(t, other.Error(), "connection reset")
}
