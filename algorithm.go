package sealant

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"fmt"
)

// Algorithm identifies a symmetric cipher. The set is closed; new
// credentials should use AES. The legacy tags exist so ciphertexts
// produced under them remain readable.
type Algorithm string

const (
	// AES runs AES in CBC mode with PKCS#7 padding. 16, 24 or 32 byte
	// keys select AES-128, AES-192 or AES-256.
	AES Algorithm = "aes"

	// DES is single DES with an 8-byte key. Legacy only.
	DES Algorithm = "des"

	// RC2 is retained for the closed tag set but has no trustworthy Go
	// primitive; credentials using it fail registry construction.
	RC2 Algorithm = "rc2"

	// Rijndael is 128-bit-block Rijndael, which is exactly AES. The tag
	// survives so ciphertexts labeled with it keep decrypting.
	Rijndael Algorithm = "rijndael"

	// TripleDES is EDE triple DES with a 16 or 24 byte key.
	TripleDES Algorithm = "tripledes"
)

// validAlgorithms contains all members of the closed tag set.
var validAlgorithms = map[Algorithm]bool{
	AES:       true,
	DES:       true,
	RC2:       true,
	Rijndael:  true,
	TripleDES: true,
}

// algorithmList is the message form of the valid set, kept in one place
// so every ErrUnknownAlgorithm lists the same names.
const algorithmList = "aes, des, rc2, rijndael, tripledes"

// IsValidAlgorithm returns true if algo is a member of the closed set.
func IsValidAlgorithm(algo Algorithm) bool {
	return validAlgorithms[algo]
}

// BlockSize returns the cipher block size in bytes. Envelopes produced
// under an algorithm carry an IV of this size. Zero for unknown tags.
func (a Algorithm) BlockSize() int {
	switch a {
	case AES, Rijndael:
		return 16
	case DES, RC2, TripleDES:
		return 8
	}
	return 0
}

// KeySizes returns the valid key lengths in bytes, smallest first.
func (a Algorithm) KeySizes() []int {
	switch a {
	case AES, Rijndael:
		return []int{16, 24, 32}
	case DES:
		return []int{8}
	case TripleDES:
		return []int{16, 24}
	case RC2:
		return []int{16}
	}
	return nil
}

// PreferredKeySize returns the key length used when material is derived
// rather than supplied, the largest valid size.
func (a Algorithm) PreferredKeySize() int {
	sizes := a.KeySizes()
	if len(sizes) == 0 {
		return 0
	}
	return sizes[len(sizes)-1]
}

func (a Algorithm) validKeySize(n int) bool {
	for _, s := range a.KeySizes() {
		if n == s {
			return true
		}
	}
	return false
}

// newBlockCipher returns a block cipher for the algorithm keyed with
// key. The cipher is always run in CBC mode with PKCS#7 padding by the
// Encryptor/Decryptor layer.
func newBlockCipher(a Algorithm, key []byte) (cipher.Block, error) {
	switch a {
	case AES, Rijndael:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCipher, err)
		}
		return block, nil
	case DES:
		block, err := des.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCipher, err)
		}
		return block, nil
	case TripleDES:
		// Two-key EDE: K1 K2 K1.
		if len(key) == 16 {
			key = append(append([]byte(nil), key...), key[:8]...)
		}
		block, err := des.NewTripleDESCipher(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCipher, err)
		}
		return block, nil
	case RC2:
		return nil, fmt.Errorf("%w: rc2 has no primitive on this platform", ErrUnknownAlgorithm)
	}
	return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownAlgorithm, a, algorithmList)
}
