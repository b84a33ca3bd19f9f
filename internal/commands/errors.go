package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors produced by the command pipeline.
const (
	CodeInvalidMessage  = "PORTFOLIO_COMMAND_INVALID"
	CodeCanceled        = "PORTFOLIO_COMMAND_CANCELED"
	CodeDeadline        = "PORTFOLIO_COMMAND_DEADLINE"
	CodeContext         = "PORTFOLIO_COMMAND_CONTEXT"
	CodeExecutionFailed = "PORTFOLIO_COMMAND_FAILED"
)

// wrapCommandError classifies err unless an earlier layer already did.
func wrapCommandError(err error, category goerrors.Category, message, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func wrapValidationError(err error) error {
	return wrapCommandError(err, goerrors.CategoryValidation, "invalid portfolio command", CodeInvalidMessage)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return wrapCommandError(err, goerrors.CategoryCommand, "portfolio command canceled", CodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return wrapCommandError(err, goerrors.CategoryCommand, "portfolio command timed out", CodeDeadline)
	default:
		return wrapCommandError(err, goerrors.CategoryCommand, "portfolio command context failed", CodeContext)
	}
}

func wrapExecuteError(err error) error {
	return wrapCommandError(err, goerrors.CategoryCommand, "portfolio command failed", CodeExecutionFailed)
}
