// Package cryptoerr defines the error kinds shared by the cipher packages.
//
// Every package-level error in gf256, rijndael and modes wraps exactly one of
// these, so callers can tell a bad parameter from a missing key or from
// corrupted ciphertext with errors.Is.
package cryptoerr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports invalid construction parameters: sizes,
	// modulus, missing IV, unknown mode or padding.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidSize reports a key, IV or block of the wrong length.
	ErrInvalidSize = fmt.Errorf("%w: invalid size", ErrConfiguration)

	// ErrNotConfigured reports a block operation attempted before a key was set.
	ErrNotConfigured = errors.New("cipher not configured")

	// ErrIntegrity reports malformed padding or ciphertext that cannot be
	// the output of an encryption under the current parameters.
	ErrIntegrity = errors.New("cryptographic integrity error")
)
