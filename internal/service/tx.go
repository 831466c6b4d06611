package service

import (
	"errors"

	"ripple/internal/models"
)

// txError maps a transaction failure back to its AppError so the error code
// survives the transaction boundary. A nil error passes through unchanged.
func txError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}
