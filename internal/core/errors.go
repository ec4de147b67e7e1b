// Package core defines sentinel errors.
package core

import "errors"

var (
	// Attribute / negotiation errors
	ErrInvalidAttribute = errors.New("aulev: invalid extension attribute")
	ErrInvalidExtmap    = errors.New("aulev: invalid extmap entry")

	// Registry errors
	ErrExtensionNotFound   = errors.New("aulev: extension not found")
	ErrExtensionRegistered = errors.New("aulev: extension already registered")

	// Encode / decode caller-contract errors
	ErrShortBuffer      = errors.New("aulev: buffer too short")
	ErrUnsupportedFlags = errors.New("aulev: unsupported header extension flags")

	// Configuration errors
	ErrConfigInvalid = errors.New("aulev: invalid configuration")
)
