package sealant

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Crypto resolves credential names against a registry and exposes
// one-shot encrypt/decrypt conveniences. A Crypto is immutable and safe
// for concurrent use; concurrent calls are independent.
type Crypto struct {
	reg *Registry
}

// New returns a Crypto facade over reg.
func New(reg *Registry) (*Crypto, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: reg", ErrNilArgument)
	}
	return &Crypto{reg: reg}, nil
}

// Registry returns the underlying credential registry.
func (c *Crypto) Registry() *Registry {
	return c.reg
}

// Encryptor returns an encryptor bound to the named credential. The
// empty name selects the default credential.
func (c *Crypto) Encryptor(name string) (*Encryptor, error) {
	cred, err := c.reg.Get(name)
	if err != nil {
		return nil, err
	}
	return &Encryptor{cred: cred}, nil
}

// Decryptor returns a decryptor bound to the named credential. The
// empty name selects the default credential.
func (c *Crypto) Decryptor(name string) (*Decryptor, error) {
	cred, err := c.reg.Get(name)
	if err != nil {
		return nil, err
	}
	return &Decryptor{cred: cred}, nil
}

// CanEncrypt reports whether the named credential is available for
// encryption.
func (c *Crypto) CanEncrypt(name string) bool {
	return c.reg.CanEncrypt(name)
}

// CanDecrypt reports whether the named credential is available for
// decryption.
func (c *Crypto) CanDecrypt(name string) bool {
	return c.reg.CanDecrypt(name)
}

// Encrypt encrypts plain under the named credential. It is equivalent
// to Encryptor(name) followed by a single EncryptBytes call.
func (c *Crypto) Encrypt(ctx context.Context, plain []byte, name string) ([]byte, error) {
	start := time.Now()
	env, algo, err := c.encrypt(plain, name)
	emitCrypto(ctx, "encrypt", name, algo, len(env), time.Since(start), err)
	return env, err
}

func (c *Crypto) encrypt(plain []byte, name string) ([]byte, string, error) {
	enc, err := c.Encryptor(name)
	if err != nil {
		return nil, "", err
	}
	env, err := enc.EncryptBytes(plain)
	return env, string(enc.cred.Algorithm), err
}

// Decrypt decrypts envelope under the named credential.
func (c *Crypto) Decrypt(ctx context.Context, envelope []byte, name string) ([]byte, error) {
	start := time.Now()
	plain, algo, err := c.decrypt(envelope, name)
	emitCrypto(ctx, "decrypt", name, algo, len(envelope), time.Since(start), err)
	return plain, err
}

func (c *Crypto) decrypt(envelope []byte, name string) ([]byte, string, error) {
	dec, err := c.Decryptor(name)
	if err != nil {
		return nil, "", err
	}
	plain, err := dec.DecryptBytes(envelope)
	return plain, string(dec.cred.Algorithm), err
}

// EncryptString encrypts plain under the named credential and returns
// the Base64 string envelope.
func (c *Crypto) EncryptString(ctx context.Context, plain, name string) (string, error) {
	start := time.Now()
	enc, err := c.Encryptor(name)
	if err != nil {
		emitCrypto(ctx, "encrypt", name, "", 0, time.Since(start), err)
		return "", err
	}
	out, err := enc.EncryptString(plain)
	emitCrypto(ctx, "encrypt", name, string(enc.cred.Algorithm), len(out), time.Since(start), err)
	return out, err
}

// DecryptString decrypts a Base64 string envelope under the named
// credential.
func (c *Crypto) DecryptString(ctx context.Context, s, name string) (string, error) {
	start := time.Now()
	dec, err := c.Decryptor(name)
	if err != nil {
		emitCrypto(ctx, "decrypt", name, "", 0, time.Since(start), err)
		return "", err
	}
	out, err := dec.DecryptString(s)
	emitCrypto(ctx, "decrypt", name, string(dec.cred.Algorithm), len(s), time.Since(start), err)
	return out, err
}

// defaultCrypto holds the process-wide facade installed by SetDefault.
var defaultCrypto atomic.Pointer[Crypto]

// SetDefault installs c as the process-wide facade returned by Default.
// The first call wins; later calls are no-ops returning false. Set it
// once at startup. Nothing inside this package reads it.
func SetDefault(c *Crypto) bool {
	if c == nil {
		return false
	}
	return defaultCrypto.CompareAndSwap(nil, c)
}

// Default returns the facade installed by SetDefault, or nil when none
// has been installed.
func Default() *Crypto {
	return defaultCrypto.Load()
}
