package sealant

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
)

// randomSource, when non-nil, overrides the pooled generator. Guarded
// by randomMu.
var (
	randomSource io.Reader
	randomMu     sync.Mutex
)

// readerPool hands each worker its own buffered reader over the system
// generator so concurrent IV draws do not contend on a shared reader.
var readerPool = sync.Pool{
	New: func() any { return bufio.NewReader(rand.Reader) },
}

// SetRandSource sets the source of random bytes. Intended primarily for
// testing; passing nil restores the default generator.
func SetRandSource(rd io.Reader) {
	randomMu.Lock()
	defer randomMu.Unlock()
	randomSource = rd
}

// randomBytes returns n cryptographically strong random bytes.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	randomMu.Lock()
	if src := randomSource; src != nil {
		_, err := io.ReadFull(src, b)
		randomMu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("reading %d random bytes: %w", n, err)
		}
		return b, nil
	}
	randomMu.Unlock()

	rd := readerPool.Get().(*bufio.Reader)
	defer readerPool.Put(rd)
	if _, err := io.ReadFull(rd, b); err != nil {
		return nil, fmt.Errorf("reading %d random bytes: %w", n, err)
	}
	return b, nil
}
