// Package dto holds the typed requests accepted by the settlement services.
package dto

import (
	"fmt"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v's struct tags and wraps failures in domain.ErrValidation.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	return nil
}
