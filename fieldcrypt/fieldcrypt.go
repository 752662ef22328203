// Package fieldcrypt rewrites selected fields of XML and JSON documents
// through a sealant Crypto facade, leaving the surrounding document
// intact.
//
// XML documents are addressed with XPath 1.0 expressions, JSON
// documents with $-rooted JSONPath expressions. Path expressions are
// processed in input order; within one expression, matches are
// processed in document order, and later rewrites observe earlier ones.
// The credential is resolved lazily, so a document in which no path
// matches never touches the registry.
//
//	engine, err := fieldcrypt.New(crypto)
//	out, err := engine.EncryptXML(ctx, doc, []string{"/r/a"}, "orders")
//	doc, err = engine.DecryptXML(ctx, out, []string{"/r/a"}, "orders")
//
// On decryption, a matched value that is not a ciphertext envelope is
// skipped rather than treated as an error, so decrypting a partially
// encrypted document is safe. JSON values round-trip with their types:
// a number that was encrypted decrypts back to a number.
//
// All operations accept a context that is checked before every
// per-field crypto operation; observing cancellation aborts the call
// with ErrCanceled and the partially rewritten document is discarded.
package fieldcrypt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/sealant"
)

// Sentinel errors for path handling. Use errors.Is() to check for them.
var (
	// ErrNoPaths indicates an empty path list.
	ErrNoPaths = errors.New("no paths")

	// ErrInvalidPath indicates an empty or unparsable path expression.
	ErrInvalidPath = errors.New("invalid path")

	// ErrCanceled indicates the caller's cancellation signal was
	// observed.
	ErrCanceled = errors.New("canceled")
)

// PathError reports a failure while processing one path expression.
type PathError struct {
	Err   error  // Underlying error
	Path  string // The failing path expression
	Index int    // Match index within the expression, -1 when not tied to a match
}

func (e *PathError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("path %q, match %d: %v", e.Path, e.Index, e.Err)
	}
	return fmt.Sprintf("path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func newPathError(err error, path string, index int) *PathError {
	return &PathError{Err: err, Path: path, Index: index}
}

// Engine walks documents along path expressions and rewrites matched
// nodes. An Engine holds only its facade and is safe for concurrent
// use; the document tree built during a call is never shared.
type Engine struct {
	crypto *sealant.Crypto
}

// New returns an Engine over crypto.
func New(crypto *sealant.Crypto) (*Engine, error) {
	if crypto == nil {
		return nil, fmt.Errorf("%w: crypto", sealant.ErrNilArgument)
	}
	return &Engine{crypto: crypto}, nil
}

// lazyEncryptor resolves its credential on first use. Single-assignment;
// each field-level call owns one, so no locking is needed.
type lazyEncryptor struct {
	crypto     *sealant.Crypto
	credential string
	enc        *sealant.Encryptor
}

func (l *lazyEncryptor) get() (*sealant.Encryptor, error) {
	if l.enc == nil {
		enc, err := l.crypto.Encryptor(l.credential)
		if err != nil {
			return nil, err
		}
		l.enc = enc
	}
	return l.enc, nil
}

// lazyDecryptor is the decryption counterpart of lazyEncryptor.
type lazyDecryptor struct {
	crypto     *sealant.Crypto
	credential string
	dec        *sealant.Decryptor
}

func (l *lazyDecryptor) get() (*sealant.Decryptor, error) {
	if l.dec == nil {
		dec, err := l.crypto.Decryptor(l.credential)
		if err != nil {
			return nil, err
		}
		l.dec = dec
	}
	return l.dec, nil
}

// checkPaths rejects an empty path list.
func checkPaths(paths []string) error {
	if len(paths) == 0 {
		return ErrNoPaths
	}
	return nil
}

// checkCanceled surfaces context cancellation as a PathError carrying
// the position the traversal had reached.
func checkCanceled(ctx context.Context, path string, index int) error {
	if err := ctx.Err(); err != nil {
		return newPathError(fmt.Errorf("%w: %v", ErrCanceled, err), path, index)
	}
	return nil
}

// decryptProbe Base64-decodes s and decrypts it when it carries a
// ciphertext envelope. ok is false when s is not an envelope: the value
// was never encrypted and the caller skips the node.
func decryptProbe(dec *sealant.Decryptor, s string) (plain string, ok bool, err error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || !sealant.IsEnveloped(raw) {
		return s, false, nil
	}
	out, err := dec.DecryptBytes(raw)
	if err != nil {
		return "", false, err
	}
	return string(out), true, nil
}

// emitStart emits the field-operation start event.
func emitStart(ctx context.Context, format, op, credential string, pathCount int) {
	capitan.Emit(ctx, sealant.SignalFieldStart,
		sealant.KeyFormat.Field(format),
		sealant.KeyOperation.Field(op),
		sealant.KeyCredential.Field(credential),
		sealant.KeyPathCount.Field(pathCount),
	)
}

// emitComplete emits the field-operation completion event.
func emitComplete(ctx context.Context, format, op, credential string, pathCount, fieldCount int, duration time.Duration, err error) {
	fields := []capitan.Field{
		sealant.KeyFormat.Field(format),
		sealant.KeyOperation.Field(op),
		sealant.KeyCredential.Field(credential),
		sealant.KeyPathCount.Field(pathCount),
		sealant.KeyFieldCount.Field(fieldCount),
		sealant.KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, sealant.KeyError.Field(err))
		capitan.Error(ctx, sealant.SignalFieldComplete, fields...)
	} else {
		capitan.Emit(ctx, sealant.SignalFieldComplete, fields...)
	}
}
