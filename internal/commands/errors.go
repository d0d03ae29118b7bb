package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to categorised command errors.
const (
	CodeInvalidMessage  = "FOLIO_INVALID_MESSAGE"
	CodeCanceled        = "FOLIO_CANCELED"
	CodeTimeout         = "FOLIO_TIMEOUT"
	CodeContext         = "FOLIO_CONTEXT_ERROR"
	CodeExecutionFailed = "FOLIO_EXECUTION_FAILED"
)

// ErrorCode maps a domain sentinel to the text code reported when an
// execution error wraps it.
type ErrorCode struct {
	Target error
	Code   string
}

type failure struct {
	validation bool
	message    string
	code       string
}

func categorise(err error, f failure) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	category := goerrors.CategoryCommand
	if f.validation {
		category = goerrors.CategoryValidation
	}
	return goerrors.Wrap(err, category, f.message).WithTextCode(f.code)
}

func rejectMessage(err error) error {
	return categorise(err, failure{true, "invalid command message", CodeInvalidMessage})
}

func interrupted(err error) error {
	f := failure{message: "command interrupted", code: CodeContext}
	switch {
	case errors.Is(err, context.Canceled):
		f.message, f.code = "command canceled", CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		f.message, f.code = "command timed out", CodeTimeout
	}
	return categorise(err, f)
}

// executionFailed tags err with the first matching domain code, falling back
// to CodeExecutionFailed.
func executionFailed(err error, codes []ErrorCode) error {
	code := CodeExecutionFailed
	for _, candidate := range codes {
		if candidate.Target != nil && errors.Is(err, candidate.Target) {
			code = candidate.Code
			break
		}
	}
	return categorise(err, failure{message: "command failed", code: code})
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
