package provider

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailed        = errors.New("authentication failed")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrInvalidRepository = errors.New("invalid repository identifier")
)

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts startup and API errors to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrInvalidRepository) {
		return &UserError{
			Message: "Invalid repository",
			Hint:    "Repositories are given as owner/name, e.g. rust-lang/cargo",
			Err:     err,
		}
	}

	if errors.Is(err, ErrAuthFailed) {
		return &UserError{
			Message: "Authentication failed",
			Hint:    "Check that your API tokens are valid and can cancel builds.\n  - Travis: set TRAVIS_TOKEN or pass --travis\n  - AppVeyor: set APPVEYOR_TOKEN or pass --appveyor",
			Err:     err,
		}
	}

	if errors.Is(err, ErrNotFound) {
		return &UserError{
			Message: "Project not found",
			Hint:    "Check the repository name and, for AppVeyor, the --appveyor-account value.",
			Err:     err,
		}
	}

	return err
}
