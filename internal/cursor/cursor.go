// Package cursor provides a bounds-checked, position-tracking view over a
// byte buffer. All multi-octet reads are big-endian, matching the network
// octet order required by RFC 8536.
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var order = binary.BigEndian

// ErrUnexpectedEOF is returned when a read would run past the end of the
// buffer. Errors returned by Cursor wrap it together with the offset and
// the number of bytes that were requested.
var ErrUnexpectedEOF = errors.New("unexpected end of data")

// Cursor wraps a byte slice and a read position. The position only moves
// forward and never exceeds the slice length. The zero value is an empty
// cursor; use New to read from a buffer.
type Cursor struct {
	buf []byte
	pos int
}

func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read position as a byte offset into the buffer.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

func (c *Cursor) need(n int) error {
	if c.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrUnexpectedEOF, n, c.pos, c.Remaining())
	}
	return nil
}

// Bytes consumes and returns exactly n bytes. The returned slice aliases the
// underlying buffer; callers that retain the data must copy it.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Skip advances the position by n bytes without reading them.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

func (c *Cursor) Uint8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *Cursor) Int8() (int8, error) {
	v, err := c.Uint8()
	return int8(v), err
}

func (c *Cursor) Uint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := order.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

func (c *Cursor) Int64() (int64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := order.Uint64(c.buf[c.pos:])
	c.pos += 8
	return int64(v), nil
}
