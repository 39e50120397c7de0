package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when a user is not authorized to perform an action
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
	// ErrServiceUnavailable is returned when a backing store or provider cannot be reached.
	// It is never used for business-rule failures.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrInvalidTransition is returned when a status change is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Ledger errors
var (
	// ErrInsufficientFunds is returned when a debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAccountNotFound is returned when a ledger account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAmountMustBePositive is returned for zero or negative transaction amounts.
	ErrAmountMustBePositive = errors.New("transaction amount must be positive")
	// ErrBalanceOverflow is returned when a credit would overflow the balance.
	ErrBalanceOverflow = errors.New("balance exceeds maximum safe integer value")
)

// Billing errors
var (
	ErrRoomNotFound      = errors.New("call room not found")
	ErrRoomAlreadyExists = errors.New("call room already exists")
	ErrAlreadyFinalized  = errors.New("call already finalized")
	ErrInvalidPrice      = errors.New("price per minute out of range")
	ErrSameParticipant   = errors.New("viewer and streamer must be different users")
)

// ErrInvalidCommissionRange is returned when a commission update leaves the allowed range.
var ErrInvalidCommissionRange = errors.New("invalid commission range")

// Withdrawal errors
var (
	ErrKYCRequired           = errors.New("KYC required")
	ErrDailyLimitReached     = errors.New("daily withdrawal limit reached")
	ErrMaximumAmountExceeded = errors.New("maximum withdrawal exceeded")
	ErrInvalidPixKey         = errors.New("invalid pix key")
	ErrWithdrawalNotFound    = errors.New("withdrawal not found")
	ErrHoldPeriodActive      = errors.New("withdrawal hold period has not elapsed")
)

// KYC errors
var (
	ErrDuplicateKYCSubmission = errors.New("an active KYC submission already exists")
	ErrKYCNotFound            = errors.New("KYC submission not found")
	ErrInvalidCPF             = errors.New("invalid CPF")
	// ErrCommentRequired is returned when a rejection carries no reason.
	ErrCommentRequired = errors.New("a reason is required")
)

// Recharge errors
var (
	ErrRechargeNotFound     = errors.New("recharge not found")
	ErrInvalidRechargeValue = errors.New("recharge amount out of range")
)
