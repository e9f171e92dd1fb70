package persistence

import (
	"errors"

	"github.com/shopcart/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM errors onto the shared domain errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	default:
		return err
	}
}
