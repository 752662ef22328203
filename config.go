package sealant

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/spf13/viper"
	"golang.org/x/crypto/pbkdf2"
)

// CredentialRecord is the on-disk shape of one registry entry. Key and
// Passphrase are mutually exclusive: Key carries Base64 key material,
// Passphrase derives it (with Salt) via PBKDF2-SHA256 at the
// algorithm's preferred key size.
type CredentialRecord struct {
	Name       string `mapstructure:"name"`
	Algorithm  string `mapstructure:"algorithm"`
	Key        string `mapstructure:"key"`
	Passphrase string `mapstructure:"passphrase"`
	Salt       string `mapstructure:"salt"`
	IVSize     int    `mapstructure:"ivSize"`
	Default    bool   `mapstructure:"default"`
}

// pbkdf2Iterations follows current OWASP guidance for PBKDF2-SHA256.
const pbkdf2Iterations = 600_000

// LoadRegistry reads a credential file and builds a Registry from its
// "credentials" list. The format (JSON, YAML or TOML) is decided by the
// file extension. This is a convenience around RegistryFromRecords; the
// cryptographic core itself never reads files.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path", ErrNilArgument)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading credential file: %w", err)
	}
	var records []CredentialRecord
	if err := v.UnmarshalKey("credentials", &records); err != nil {
		return nil, fmt.Errorf("decoding credential file: %w", err)
	}
	return RegistryFromRecords(records)
}

// RegistryFromRecords resolves key material for each record and builds
// a validated Registry. At most one record may be marked Default.
func RegistryFromRecords(records []CredentialRecord) (*Registry, error) {
	creds := make([]Credential, 0, len(records))
	defaultName := ""
	for _, rec := range records {
		algo := Algorithm(rec.Algorithm)
		key, err := rec.keyMaterial(algo)
		if err != nil {
			return nil, newCredentialError(err, rec.Name)
		}
		ivSize := rec.IVSize
		if ivSize == 0 {
			ivSize = algo.BlockSize()
		}
		creds = append(creds, Credential{
			Name:      rec.Name,
			Algorithm: algo,
			Key:       key,
			IVSize:    ivSize,
		})
		if rec.Default {
			if defaultName != "" {
				return nil, fmt.Errorf("credential file designates both %q and %q as default",
					defaultName, rec.Name)
			}
			defaultName = rec.Name
		}
	}
	return NewRegistry(creds, defaultName)
}

// keyMaterial returns the record's key bytes, decoding or deriving as
// declared.
func (rec CredentialRecord) keyMaterial(algo Algorithm) ([]byte, error) {
	switch {
	case rec.Key != "" && rec.Passphrase != "":
		return nil, fmt.Errorf("key and passphrase are mutually exclusive")
	case rec.Key != "":
		key, err := base64.StdEncoding.DecodeString(rec.Key)
		if err != nil {
			return nil, fmt.Errorf("decoding key: %w", err)
		}
		return key, nil
	case rec.Passphrase != "":
		if rec.Salt == "" {
			return nil, fmt.Errorf("%w: salt (required with passphrase)", ErrNilArgument)
		}
		salt, err := base64.StdEncoding.DecodeString(rec.Salt)
		if err != nil {
			return nil, fmt.Errorf("decoding salt: %w", err)
		}
		return pbkdf2.Key([]byte(rec.Passphrase), salt, pbkdf2Iterations, algo.PreferredKeySize(), sha256.New), nil
	default:
		return nil, fmt.Errorf("%w: key material", ErrNilArgument)
	}
}
