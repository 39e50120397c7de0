// Package repository holds the gorm-backed repositories and their shared
// error mapping.
package repository

import (
	"errors"

	"github.com/amirasaad/payminute/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors. It relies on
// TranslateError being enabled so postgres codes 23505, 23503 and 23514 arrive
// as gorm sentinels. A check violation means a row failed a schema guard such
// as balance >= 0 and is reported as a validation error.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		case errors.Is(currentErr, gorm.ErrForeignKeyViolated):
			return domain.ErrAccountNotFound
		case errors.Is(currentErr, gorm.ErrCheckConstraintViolated):
			return domain.ErrValidation
		}
		currentErr = errors.Unwrap(currentErr)
	}

	return err
}

// WrapError runs a GORM operation and maps its error.
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
