package service

import (
	"errors"

	"github.com/perfectballers/league/internal/domain"
)

// appError surfaces an AppError carried anywhere in err's chain and wraps
// everything else as an internal error.
func appError(msg string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return domain.ErrInternal(msg, err)
}
