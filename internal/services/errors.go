package services

import (
	"errors"
	"time"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidAmount       = errors.New("amount must be a non-negative integer")
	ErrInsufficientBalance = errors.New("Insufficient token balance")
	ErrUserNotFound        = errors.New("user not found")
	ErrProjectNotFound     = errors.New("Project not found")
	ErrJobNotFound         = errors.New("Generation job not found")
	ErrForbidden           = errors.New("Access denied")
	ErrModelNotAllowed     = errors.New("model not available on your plan")
	ErrDailyAlreadyClaimed = errors.New("daily tokens already claimed")
	ErrUnauthorized        = errors.New("unauthorized")
)

// ClaimCooldownError is returned by ClaimDaily inside its cooldown window.
type ClaimCooldownError struct {
	NextClaimAt time.Time
}

func (e *ClaimCooldownError) Error() string {
	return ErrDailyAlreadyClaimed.Error() + "; next claim at " + e.NextClaimAt.UTC().Format(time.RFC3339)
}

func (e *ClaimCooldownError) Is(target error) bool {
	return target == ErrDailyAlreadyClaimed
}
