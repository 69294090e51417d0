package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrTrendNotFound     = errors.New("trend not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidBet        = errors.New("invalid bet amount")
	ErrInvalidConfidence = errors.New("confidence out of range")
	ErrInvalidZone       = errors.New("invalid zone")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrInvalidProfile    = errors.New("invalid profile")
	ErrEngineStopped     = errors.New("engine stopped")
	ErrLockHeld          = errors.New("lock already held")
)
