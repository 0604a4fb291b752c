package services

import "errors"

// Sentinel errors surfaced by the order and payment services. Controllers
// map these onto response envelope codes; the services never format
// user-facing text.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrAlreadyPaid  = errors.New("order already paid")
	ErrInvalidState = errors.New("order is not payable")
)
