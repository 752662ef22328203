package sealant

import (
	"fmt"
	"sort"
)

// Registry holds named credentials and designates at most one default.
// It is built once at startup and immutable thereafter, so any worker
// may read it without locking.
type Registry struct {
	byName      map[string]*Credential
	def         *Credential
	defaultName string
}

// NewRegistry builds a registry from creds. defaultName, when non-empty,
// selects the default credential and must name one of creds. Every
// credential is validated here: unsupported algorithms and wrong key
// lengths fail construction rather than the first use. Names are
// case-sensitive and must be unique.
func NewRegistry(creds []Credential, defaultName string) (*Registry, error) {
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: creds", ErrNilArgument)
	}
	r := &Registry{byName: make(map[string]*Credential, len(creds))}
	for i := range creds {
		c := creds[i]
		if c.Name == "" {
			return nil, newCredentialError(fmt.Errorf("%w: credential name", ErrNilArgument), "")
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[c.Name]; dup {
			return nil, newCredentialError(fmt.Errorf("duplicate credential name"), c.Name)
		}
		// Copy the key so later mutation of the caller's slice cannot
		// reach the registry.
		c.Key = append([]byte(nil), c.Key...)
		r.byName[c.Name] = &c
	}
	if defaultName != "" {
		def, ok := r.byName[defaultName]
		if !ok {
			return nil, newCredentialError(ErrCredentialNotFound, defaultName)
		}
		r.def = def
		r.defaultName = defaultName
	}
	return r, nil
}

// Get returns the credential registered under name. The empty name
// selects the default credential.
func (r *Registry) Get(name string) (*Credential, error) {
	if name == "" {
		if r.def == nil {
			return nil, newCredentialError(ErrCredentialNotFound, "(default)")
		}
		return r.def, nil
	}
	c, ok := r.byName[name]
	if !ok {
		return nil, newCredentialError(ErrCredentialNotFound, name)
	}
	return c, nil
}

// CanEncrypt reports whether Get(name) would succeed for encryption.
// The split from CanDecrypt exists so future registries may authorize
// the two operations asymmetrically; today they are equivalent.
func (r *Registry) CanEncrypt(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// CanDecrypt reports whether Get(name) would succeed for decryption.
func (r *Registry) CanDecrypt(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// Names returns the registered credential names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultName returns the name of the default credential, or "" when no
// default is designated.
func (r *Registry) DefaultName() string {
	return r.defaultName
}
