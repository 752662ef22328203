package sealant

import "fmt"

// Credential pairs key material with an algorithm under a caller-visible
// name. The name is a label used to select the credential; it is neither
// the key nor a secret.
type Credential struct {
	Name      string
	Algorithm Algorithm
	Key       []byte
	IVSize    int // 8 or 16; must equal the algorithm's block size
}

// validate checks the credential invariants. Registries call this at
// construction so a bad credential fails the build, not the first use.
func (c *Credential) validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return newCredentialError(
			fmt.Errorf("%w: %q (valid: %s)", ErrUnknownAlgorithm, c.Algorithm, algorithmList), c.Name)
	}
	if c.Algorithm == RC2 {
		return newCredentialError(
			fmt.Errorf("%w: rc2 has no primitive on this platform", ErrUnknownAlgorithm), c.Name)
	}
	if len(c.Key) == 0 {
		return newCredentialError(fmt.Errorf("%w: key material", ErrNilArgument), c.Name)
	}
	if !c.Algorithm.validKeySize(len(c.Key)) {
		return newCredentialError(
			fmt.Errorf("%w: key length %d invalid for %s (valid: %v)",
				ErrCipher, len(c.Key), c.Algorithm, c.Algorithm.KeySizes()), c.Name)
	}
	if c.IVSize != c.Algorithm.BlockSize() {
		return newCredentialError(
			fmt.Errorf("%w: IV size %d, %s uses %d",
				ErrCipher, c.IVSize, c.Algorithm, c.Algorithm.BlockSize()), c.Name)
	}
	return nil
}
