package repository

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	mserrors "github.com/customeros/mailsorter/internal/errors"
)

var ErrInvalidInput = errors.New("invalid input parameters")

// translateInsertError maps storage uniqueness violations to ErrDuplicateKey.
func translateInsertError(err error, messageID string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(mserrors.ErrDuplicateKey, "message id %s", messageID)
	}
	return errors.Wrap(err, "failed to insert email")
}
