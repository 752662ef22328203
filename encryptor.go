package sealant

import (
	"bytes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"github.com/andreburgaud/crypt2go/padding"
)

// Encryptor performs single-shot encryption under one credential. It
// borrows an immutable credential from the registry, holds no state
// between calls and is safe for concurrent use.
type Encryptor struct {
	cred *Credential
}

// Credential returns the credential the encryptor is bound to.
func (e *Encryptor) Credential() *Credential {
	return e.cred
}

// EncryptBytes encrypts plain and returns a self-describing envelope:
// a fresh IV is drawn per call and framed inline ahead of the CBC
// ciphertext.
func (e *Encryptor) EncryptBytes(plain []byte) ([]byte, error) {
	block, err := newBlockCipher(e.cred.Algorithm, e.cred.Key)
	if err != nil {
		return nil, err
	}
	iv, err := randomBytes(e.cred.IVSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}

	padder := padding.NewPkcs7Padding(block.BlockSize())
	padded, err := padder.Pad(append([]byte(nil), plain...))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	var buf bytes.Buffer
	buf.Grow(headerLen + len(iv) + len(ciphertext))
	writeHeader(&buf, iv)
	buf.Write(ciphertext)
	return buf.Bytes(), nil
}

// EncryptString encrypts the UTF-8 bytes of plain and returns the
// envelope in standard Base64 with padding.
func (e *Encryptor) EncryptString(plain string) (string, error) {
	env, err := e.EncryptBytes([]byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(env), nil
}

// Decryptor performs single-shot decryption under one credential. Like
// Encryptor it is stateless between calls and safe for concurrent use.
type Decryptor struct {
	cred *Credential
}

// Credential returns the credential the decryptor is bound to.
func (d *Decryptor) Credential() *Credential {
	return d.cred
}

// DecryptBytes reads the envelope header of envelope, extracts the IV
// and decrypts the remaining bytes. The credential is chosen by the
// caller; the envelope does not describe it.
func (d *Decryptor) DecryptBytes(envelope []byte) ([]byte, error) {
	iv, ciphertext, err := readHeader(envelope)
	if err != nil {
		return nil, err
	}
	block, err := newBlockCipher(d.cred.Algorithm, d.cred.Key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("%w: IV length %d, %s uses %d",
			ErrCipher, len(iv), d.cred.Algorithm, block.BlockSize())
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not block aligned", ErrCipher, len(ciphertext))
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
	padder := padding.NewPkcs7Padding(block.BlockSize())
	unpadded, err := padder.Unpad(plain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	return unpadded, nil
}

// DecryptString Base64-decodes s, decrypts the envelope and returns the
// plaintext as a UTF-8 string. It is a left-inverse of EncryptString
// for the same credential. It does not detect already-plain input;
// callers probing for that must use IsEnveloped on the raw bytes.
func (d *Decryptor) DecryptString(s string) (string, error) {
	env, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipher, err)
	}
	plain, err := d.DecryptBytes(env)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
