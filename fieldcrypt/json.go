package fieldcrypt

import (
	"context"
	"fmt"
	"time"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// jsonOptions keeps serialization deterministic: object members are
// written in sorted key order, both for output documents and for the
// minified form of a token about to be encrypted.
var jsonOptions = ojg.Options{Sort: true}

// EncryptJSON parses document, evaluates each JSONPath expression in
// order and replaces every matched token with a JSON string holding its
// encryption under the named credential. The matched token is
// serialized as minified JSON before encryption, so objects, arrays and
// non-string scalars round-trip with their types. When an expression
// matches the document root, the result is that single quoted-string
// document and the traversal ends.
func (e *Engine) EncryptJSON(ctx context.Context, document string, paths []string, credential string) (string, error) {
	start := time.Now()
	emitStart(ctx, "json", "encrypt", credential, len(paths))
	out, rewritten, err := e.encryptJSON(ctx, document, paths, credential)
	emitComplete(ctx, "json", "encrypt", credential, len(paths), rewritten, time.Since(start), err)
	return out, err
}

func (e *Engine) encryptJSON(ctx context.Context, document string, paths []string, credential string) (string, int, error) {
	if err := checkPaths(paths); err != nil {
		return "", 0, err
	}
	data, err := oj.ParseString(document)
	if err != nil {
		return "", 0, fmt.Errorf("parsing document: %w", err)
	}
	enc := &lazyEncryptor{crypto: e.crypto, credential: credential}
	rewritten := 0
	for _, path := range paths {
		locs, err := matchJSON(data, path)
		if err != nil {
			return "", rewritten, err
		}
		for i, loc := range locs {
			if err := checkCanceled(ctx, path, i); err != nil {
				return "", rewritten, err
			}
			handle, err := enc.get()
			if err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			ciphertext, err := handle.EncryptString(oj.JSON(loc.First(data), &jsonOptions))
			if err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			if isRoot(loc) {
				// The whole document is now one string token; nothing
				// is left for later expressions to address.
				return oj.JSON(ciphertext, &jsonOptions), rewritten + 1, nil
			}
			if err := loc.Set(data, ciphertext); err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			rewritten++
		}
	}
	return oj.JSON(data, &jsonOptions), rewritten, nil
}

// DecryptJSON is the inverse traversal: every matched string token that
// is a ciphertext envelope is decrypted and the plaintext is parsed
// back into a typed JSON token before being spliced into its parent, so
// an encrypted number decrypts to a number, not a quoted string. Tokens
// that are not envelopes are skipped. When an expression matches the
// root, the decrypted token becomes the new root and later expressions
// are evaluated against it.
func (e *Engine) DecryptJSON(ctx context.Context, document string, paths []string, credential string) (string, error) {
	start := time.Now()
	emitStart(ctx, "json", "decrypt", credential, len(paths))
	out, rewritten, err := e.decryptJSON(ctx, document, paths, credential)
	emitComplete(ctx, "json", "decrypt", credential, len(paths), rewritten, time.Since(start), err)
	return out, err
}

func (e *Engine) decryptJSON(ctx context.Context, document string, paths []string, credential string) (string, int, error) {
	if err := checkPaths(paths); err != nil {
		return "", 0, err
	}
	data, err := oj.ParseString(document)
	if err != nil {
		return "", 0, fmt.Errorf("parsing document: %w", err)
	}
	dec := &lazyDecryptor{crypto: e.crypto, credential: credential}
	rewritten := 0
	for _, path := range paths {
		locs, err := matchJSON(data, path)
		if err != nil {
			return "", rewritten, err
		}
		for i, loc := range locs {
			if err := checkCanceled(ctx, path, i); err != nil {
				return "", rewritten, err
			}
			handle, err := dec.get()
			if err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			s, isString := loc.First(data).(string)
			if !isString {
				continue
			}
			plain, changed, err := decryptProbe(handle, s)
			if err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			if !changed {
				continue
			}
			token, err := oj.ParseString(plain)
			if err != nil {
				return "", rewritten, newPathError(fmt.Errorf("decrypted value is not valid JSON: %v", err), path, i)
			}
			if isRoot(loc) {
				// Later expressions are evaluated against the decrypted
				// root.
				data = token
				rewritten++
				break
			}
			if err := loc.Set(data, token); err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			rewritten++
		}
	}
	return oj.JSON(data, &jsonOptions), rewritten, nil
}

// matchJSON validates path and evaluates it against data, returning the
// normalized location of every match as an eager snapshot in document
// order.
func matchJSON(data any, path string) ([]jp.Expr, error) {
	if path == "" {
		return nil, newPathError(ErrInvalidPath, path, -1)
	}
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, newPathError(fmt.Errorf("%w: %v", ErrInvalidPath, err), path, -1)
	}
	if len(expr) == 1 {
		if _, ok := expr[0].(jp.Root); ok {
			// Locate reports no location for the bare root expression;
			// the root itself is the single match.
			return []jp.Expr{expr}, nil
		}
	}
	return expr.Locate(data, 0), nil
}

// isRoot reports whether a normalized location addresses the document
// root itself.
func isRoot(loc jp.Expr) bool {
	return len(loc) <= 1
}
