package drill2exc

import (
	"fmt"
	"slices"
)

// NotFound is returned by Find when the pattern does not occur.
const NotFound = -1

// Buffer is a mutable byte buffer used for in-place line rewriting.
// A zero capacity means the buffer grows without limit. A positive capacity
// is a hard limit: any operation that would grow past it fails with
// ErrCapacityExceeded and leaves the buffer unchanged.
//
// The zero value is an empty, unbounded buffer.
type Buffer struct {
	data     []byte
	capacity int
}

// NewBuffer creates an empty buffer limited to capacity bytes.
// Panics if capacity < 0 (programmer error, similar to make).
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		panic("drill2exc: NewBuffer capacity must not be negative")
	}
	b := &Buffer{capacity: capacity}
	if capacity > 0 {
		b.data = make([]byte, 0, capacity)
	}
	return b
}

// Len returns the number of bytes in use.
func (b *Buffer) Len() int { return len(b.data) }

// Cap returns the capacity limit, 0 when unbounded.
func (b *Buffer) Cap() int { return b.capacity }

// Bytes returns the buffer content. The slice aliases the buffer and is only
// valid until the next mutation.
func (b *Buffer) Bytes() []byte { return b.data }

// String returns a copy of the buffer content.
func (b *Buffer) String() string { return string(b.data) }

// Reset replaces the content with s.
func (b *Buffer) Reset(s string) error {
	if err := b.checkGrowth(len(s)); err != nil {
		return err
	}
	b.data = append(b.data[:0], s...)
	return nil
}

// Insert writes s at index, shifting the bytes at and after index to the right.
func (b *Buffer) Insert(s string, index int) error {
	if index < 0 || index > len(b.data) {
		return fmt.Errorf("%w: insert at %d (length %d)", ErrIndexOutOfRange, index, len(b.data))
	}
	if err := b.checkGrowth(len(b.data) + len(s)); err != nil {
		return err
	}
	b.data = slices.Insert(b.data, index, []byte(s)...)
	return nil
}

// Delete removes length bytes starting at index, shifting the tail left.
func (b *Buffer) Delete(index, length int) error {
	if index < 0 || length < 0 || index+length > len(b.data) {
		return fmt.Errorf("%w: delete [%d, %d) (length %d)", ErrIndexOutOfRange, index, index+length, len(b.data))
	}
	b.data = slices.Delete(b.data, index, index+length)
	return nil
}

// Find returns the lowest offset at which pattern occurs, or NotFound.
// An empty pattern, or one longer than the buffer, is never found.
func (b *Buffer) Find(pattern string) int {
	n := len(pattern)
	if n == 0 || n > len(b.data) {
		return NotFound
	}
	for i := 0; i <= len(b.data)-n; i++ {
		j := 0
		for j < n && b.data[i+j] == pattern[j] {
			j++
		}
		if j == n {
			return i
		}
	}
	return NotFound
}

// ReplaceFirst replaces the leftmost occurrence of from with to.
// Returns ErrNotFound (buffer untouched) when from does not occur.
// Other occurrences of from are left as they are.
func (b *Buffer) ReplaceFirst(from, to string) error {
	pos := b.Find(from)
	if pos == NotFound {
		return fmt.Errorf("%w: %q", ErrNotFound, from)
	}

	if len(from) == len(to) {
		copy(b.data[pos:], to)
		return nil
	}

	// Check before deleting so a failed replace leaves the buffer intact.
	if err := b.checkGrowth(len(b.data) - len(from) + len(to)); err != nil {
		return err
	}
	if err := b.Delete(pos, len(from)); err != nil {
		return err
	}
	return b.Insert(to, pos)
}

// checkGrowth reports whether the buffer may hold size bytes.
func (b *Buffer) checkGrowth(size int) error {
	if b.capacity > 0 && size > b.capacity {
		return fmt.Errorf("%w: need %d bytes (capacity %d)", ErrCapacityExceeded, size, b.capacity)
	}
	return nil
}
