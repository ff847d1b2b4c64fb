package services

import (
	"errors"
	"fmt"
)

// ErrValidation marks input the caller must fix. The wrapped error carries the detail.
var ErrValidation = errors.New("validation failed")

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
