// Package sealant provides credential-keyed symmetric encryption for
// byte and text payloads.
//
// A Registry binds caller-visible credential names to key material and
// an algorithm tag. A Crypto facade resolves names against the registry
// and hands out Encryptor/Decryptor values that perform single-shot
// encryption and decryption. Ciphertext is framed in a self-describing
// envelope that carries the protocol version and the initialization
// vector inline, so a decryptor needs only the credential, never
// out-of-band IV bookkeeping.
//
// # Envelope
//
// Every ciphertext produced by this package has the layout
//
//	[0]    version (0x01)
//	[1..2] IV length, little-endian uint16
//	[3..]  IV, then the raw block-cipher output
//
// IsEnveloped probes this shape without touching ciphertext bytes. The
// string forms are the binary envelope in standard Base64 with padding.
//
// # Credentials
//
//	reg, err := sealant.NewRegistry([]sealant.Credential{{
//	    Name:      "orders",
//	    Algorithm: sealant.AES,
//	    Key:       key,
//	    IVSize:    16,
//	}}, "orders")
//	crypto, err := sealant.New(reg)
//
//	envelope, err := crypto.Encrypt(ctx, payload, "orders")
//	payload, err = crypto.Decrypt(ctx, envelope, "orders")
//
// The empty credential name selects the registry's default. Registries
// are immutable once built and validate every credential up front:
// unsupported algorithms and wrong key lengths fail construction, not
// the first encrypt.
//
// # Algorithms
//
// The algorithm set is closed: aes, des, rc2, rijndael, tripledes. New
// credentials should use AES; the legacy tags exist to read ciphertexts
// produced under them. All ciphers run in CBC mode with PKCS#7 padding.
//
// # Field-level encryption
//
// The fieldcrypt subpackage rewrites selected nodes of XML and JSON
// documents (by XPath and JSONPath) through a Crypto facade, leaving
// the surrounding document intact.
//
// # Configuration
//
// LoadRegistry reads a credential file (JSON, YAML or TOML). Records
// carry either Base64 key material or a passphrase plus salt, in which
// case the key is derived with PBKDF2-SHA256.
//
// # Observability
//
// Operations emit capitan signals (SignalEncrypt, SignalDecrypt and the
// field-level pair) with credential name, algorithm, sizes, duration
// and error, so hosts can wire metrics or logging without this package
// choosing either.
package sealant
