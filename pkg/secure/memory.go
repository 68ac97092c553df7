// Package secure holds key material helpers: zeroing, random bytes and
// constant-time comparison.
package secure

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"runtime"
	"sync"
)

// Buffer owns a copy of sensitive bytes and wipes them on Destroy.
type Buffer struct {
	data []byte
	mu   sync.RWMutex
}

// NewBuffer copies data into a new Buffer. The caller may wipe data afterwards.
func NewBuffer(data []byte) *Buffer {
	b := &Buffer{
		data: make([]byte, len(data)),
	}
	copy(b.data, data)
	return b
}

// Bytes returns a copy of the contents.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]byte, len(b.data))
	copy(result, b.data)
	return result
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Destroy zeroes and releases the contents. The Buffer is empty afterwards.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	Zero(b.data)
	b.data = nil
}

func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

func ConstantTimeCompare(x, y []byte) bool {
	if len(x) != len(y) {
		return false
	}
	return subtle.ConstantTimeCompare(x, y) == 1
}

func SecureRandom(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid random length: %d", size)
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		Zero(b)
		return nil, fmt.Errorf("failed to generate secure random bytes: %w", err)
	}
	return b, nil
}
