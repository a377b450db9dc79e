package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the repository-level not-found sentinel. Implementations
// wrap their driver's own sentinel so services never import gorm directly
// for error checks.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err means the requested record is absent.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
