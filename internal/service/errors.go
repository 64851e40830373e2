package service

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"hearsight/internal/domain"
)

// validationError converts an ozzo-validation result into a domain.ValidationError.
// When several fields fail, the first field in lexical order is reported.
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fields := make([]string, 0, len(fieldErrs))
		for field := range fieldErrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return &domain.ValidationError{Field: fields[0], Message: fieldErrs[fields[0]].Error()}
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return domain.WrapError(err, "failed to validate request")
	}

	return &domain.ValidationError{Field: "request", Message: err.Error()}
}
