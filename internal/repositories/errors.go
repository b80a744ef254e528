package repositories

import (
	"example.com/backstage/services/picking/internal/database"

	"github.com/pkg/errors"
)

// Common repository errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
	// ErrStaleState is returned by conditional updates whose expected status no longer holds
	ErrStaleState = errors.New("record is not in the expected state")
)

// translate maps driver errors onto the repository sentinels
func translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case database.IsRecordNotFoundError(err):
		return ErrNotFound
	case database.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	}
	return errors.Wrap(err, msg)
}
