// Package apperrors holds the sentinel errors shared by repositories, services and handlers.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("invalid state")
	ErrUnavailable       = errors.New("service unavailable")

	ErrAlreadyApplied   = fmt.Errorf("already applied to this campaign: %w", ErrConflict)
	ErrEmailTaken       = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrBadCredentials   = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrSessionNotFound  = fmt.Errorf("session expired or revoked: %w", ErrUnauthorized)
	ErrStatusChanged    = fmt.Errorf("status changed concurrently: %w", ErrConflict)
	ErrCampaignNotOpen  = fmt.Errorf("campaign is not accepting applications: %w", ErrInvalidState)
	ErrCampaignReadOnly = fmt.Errorf("campaign can no longer be edited: %w", ErrInvalidState)
)

// Wrap adds context to err, keeping it matchable with errors.Is.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Validation builds a validation error carrying a human readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// Transition reports a rejected status change.
func Transition(from, action string) error {
	return fmt.Errorf("cannot %s from %s: %w", action, from, ErrInvalidTransition)
}
