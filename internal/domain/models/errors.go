package models

import "errors"

var (
	// ErrConfiguration marks a missing credential or store binding.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks bad caller input.
	ErrValidation = errors.New("validation error")
	// ErrStoreUnavailable marks a failed read or write on the key-value store.
	ErrStoreUnavailable = errors.New("store unavailable")
)
