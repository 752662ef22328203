package sealant

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error kinds.
var (
	// ErrNilArgument indicates a required argument was absent.
	ErrNilArgument = errors.New("missing argument")

	// ErrCredentialNotFound indicates the named credential is absent
	// from the registry.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrUnknownAlgorithm indicates an algorithm tag outside the closed
	// set, or one with no primitive on this platform.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrUnsupportedProtocol indicates an envelope version byte other
	// than 1.
	ErrUnsupportedProtocol = errors.New("unsupported envelope version")

	// ErrTruncated indicates an envelope shorter than its declared
	// IV length.
	ErrTruncated = errors.New("truncated envelope")

	// ErrCipher indicates the underlying primitive rejected its input:
	// bad padding, bad key length, or misaligned ciphertext.
	ErrCipher = errors.New("cipher failure")

	// ErrUnknownMaskType indicates a mask type outside the builtin set.
	ErrUnknownMaskType = errors.New("unknown mask type")
)

// CredentialError wraps a sentinel error with the credential name that
// triggered it.
type CredentialError struct {
	Err  error  // Underlying sentinel error
	Name string // Credential name; "(default)" for a default lookup
}

func (e *CredentialError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: credential %q", e.Err.Error(), e.Name)
	}
	return e.Err.Error()
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// newCredentialError creates a CredentialError with the given context.
func newCredentialError(err error, name string) *CredentialError {
	return &CredentialError{Err: err, Name: name}
}
