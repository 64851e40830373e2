package catalog

import "hearsight/internal/domain"

// storeUnavailable marks a vector-store failure as retryable.
func storeUnavailable(msg string, err error) error {
	return &domain.UnavailableError{Message: msg, Err: err}
}
