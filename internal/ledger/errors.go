package ledger

import (
	"errors"
	"fmt"
)

// Errors returned by ledger operations. Every one of them aborts the call
// with no state change.
var (
	ErrAlreadyInitialized    = errors.New("ledger already initialized")
	ErrNotOwner              = errors.New("caller is not the ledger owner")
	ErrAccountNotFound       = errors.New("account has no balance record")
	ErrAllowanceNotFound     = errors.New("allowance does not exist")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrArithmeticUnderflow   = errors.New("arithmetic underflow")
)

// CallError ties a failure to the operation that produced it.
type CallError struct {
	Op  Op
	Err error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is an authorization failure
// (wrong owner, missing or insufficient allowance).
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrAllowanceNotFound) ||
		errors.Is(err, ErrInsufficientAllowance)
}

// IsArithmeticError reports whether err came from a checked add or sub.
func IsArithmeticError(err error) bool {
	return errors.Is(err, ErrArithmeticOverflow) || errors.Is(err, ErrArithmeticUnderflow)
}
