package service

import "errors"

// Sentinel errors returned by the service layer. Handlers translate them
// into HTTP status codes; the wrapped message is safe to show to clients.
var (
	// ErrNotFound: the referenced record does not exist or is soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a uniqueness or referential rule rejected the write.
	ErrConflict = errors.New("conflict")
	// ErrValidation: the request is well-formed but semantically invalid.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientStock: a decrease or reservation would drive
	// avail_qty below zero. The message names every offending stock unit
	// with its requested and available quantities.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity: a ledger operation was asked to move zero or a
	// negative number of units.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidTransition: the sale's status does not allow the operation.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNoOutstandingBalance: a payment was recorded against a sale that
	// is already fully settled.
	ErrNoOutstandingBalance = errors.New("no outstanding balance")
	// ErrPaymentExceedsBalance: the payment amount is larger than what the
	// sale still owes.
	ErrPaymentExceedsBalance = errors.New("payment exceeds outstanding balance")
)
