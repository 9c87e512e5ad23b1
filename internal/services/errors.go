package services

import (
	"errors"

	"gdpr-tracker/internal/apperrors"

	"gorm.io/gorm"
)

// notFound converts a missing-row error into a NotFound with the given
// message and passes every other error through unchanged.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(format, args...)
	}
	return err
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
