// Package services implements the storefront business logic on top of
// repository interfaces, keeping Telegram transport concerns out.
package services

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidProduct indicates the product cannot be sold on the requested path.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrPaymentNotFound indicates no payment matches the correlation token.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentAlreadyCompleted indicates a duplicate finalize attempt.
	ErrPaymentAlreadyCompleted = errors.New("payment already completed")
	// ErrDuplicateName indicates a category with the same name already exists.
	ErrDuplicateName = errors.New("duplicate name")
)
