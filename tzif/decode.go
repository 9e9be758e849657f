package tzif

import (
	"bytes"
	"fmt"

	"github.com/tzkit/zoneinfo/internal/cursor"
)

// Time value and record sizes in octets.
const (
	legacyTimeSize   = 4
	extendedTimeSize = 8
	typeRecordSize   = 6
	corrSize         = 4
)

// DecodeFile decodes a complete TZif file from buf without decode limits.
// For version 2+ files both data blocks and the footer are decoded. The
// returned File owns all of its data; buf may be reused once DecodeFile
// returns.
func DecodeFile(buf []byte) (File, error) {
	return DecodeFileLimits(buf, Limits{})
}

// DecodeFileLimits is like DecodeFile but rejects files whose header
// counts exceed the given limits before any section is read.
func DecodeFileLimits(buf []byte, lim Limits) (File, error) {
	var (
		f   File
		err error
		c   = cursor.New(buf)
	)
	f.Legacy, err = decodeBlock(c, legacyTimeSize, lim)
	if err != nil {
		return File{}, fmt.Errorf("legacy block: %w", err)
	}
	f.Version = f.Legacy.Header.Version
	if f.Version == V1 {
		return f, nil
	}

	ext, err := decodeBlock(c, extendedTimeSize, lim)
	if err != nil {
		return File{}, fmt.Errorf("extended block: %w", err)
	}
	f.Extended = &ext

	f.TZString, err = decodeFooter(c)
	if err != nil {
		return File{}, fmt.Errorf("footer: %w", err)
	}
	return f, nil
}

// decodeBlock decodes one header and data block with the given time value
// size. It is used for both the legacy 32-bit block and the extended
// 64-bit block so the two passes cannot drift apart.
func decodeBlock(c *cursor.Cursor, timeSize int, lim Limits) (Block, error) {
	var b Block

	magic, err := c.Bytes(len(Magic))
	if err != nil {
		return b, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return b, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}

	ver, err := c.Uint8()
	if err != nil {
		return b, fmt.Errorf("reading version: %w", err)
	}
	switch Version(ver) {
	case V1, V2, V3, V4:
		b.Header.Version = Version(ver)
	default:
		return b, fmt.Errorf("%w: %#x", ErrUnsupportedVersion, ver)
	}

	if err := c.Skip(15); err != nil {
		return b, fmt.Errorf("skipping reserved octets: %w", err)
	}

	if err := readCounts(c, &b.Header); err != nil {
		return b, err
	}
	if err := lim.verify(b.Header); err != nil {
		return b, err
	}
	if err := checkBounds(c, b.Header, timeSize); err != nil {
		return b, err
	}

	h := b.Header
	if err := readTransitions(c, &b, timeSize); err != nil {
		return b, err
	}
	if err := readLocalTimeTypes(c, &b); err != nil {
		return b, err
	}
	// Type indices can only be validated once the type table length is
	// settled, which is now.
	for i, idx := range b.TransitionTypes {
		if uint32(idx) >= h.Typecnt {
			return b, fmt.Errorf("%w: transition %d references type %d of %d", ErrTypeIndexOutOfRange, i, idx, h.Typecnt)
		}
	}

	desig, err := c.Bytes(int(h.Charcnt))
	if err != nil {
		return b, fmt.Errorf("reading designations: %w", err)
	}
	b.Designations = append([]byte(nil), desig...)

	if err := readLeapSeconds(c, &b, timeSize); err != nil {
		return b, err
	}

	b.StandardWallIndicators, err = readIndicators(c, h.Isstdcnt, h.Typecnt)
	if err != nil {
		return b, fmt.Errorf("reading standard/wall indicators: %w", err)
	}
	b.UTLocalIndicators, err = readIndicators(c, h.Isutcnt, h.Typecnt)
	if err != nil {
		return b, fmt.Errorf("reading UT/local indicators: %w", err)
	}
	return b, nil
}

// readCounts reads the six four-octet unsigned counts in file order.
func readCounts(c *cursor.Cursor, h *Header) error {
	for _, cnt := range []struct {
		name string
		dst  *uint32
	}{
		{"isutcnt", &h.Isutcnt},
		{"isstdcnt", &h.Isstdcnt},
		{"leapcnt", &h.Leapcnt},
		{"timecnt", &h.Timecnt},
		{"typecnt", &h.Typecnt},
		{"charcnt", &h.Charcnt},
	} {
		v, err := c.Uint32()
		if err != nil {
			return fmt.Errorf("reading %s: %w", cnt.name, err)
		}
		*cnt.dst = v
	}
	return nil
}

// checkBounds verifies that every section declared by the header fits in
// the remaining buffer. Checking all counts up front turns truncated or
// hostile input into one clean rejection before anything is allocated.
func checkBounds(c *cursor.Cursor, h Header, timeSize int) error {
	var (
		remaining = uint64(c.Remaining())
		need      uint64
	)
	for _, sec := range []struct {
		name  string
		count uint32
		size  uint64
	}{
		{"transition times", h.Timecnt, uint64(timeSize)},
		{"transition types", h.Timecnt, 1},
		{"local time types", h.Typecnt, typeRecordSize},
		{"designations", h.Charcnt, 1},
		{"leap seconds", h.Leapcnt, uint64(timeSize) + corrSize},
		{"standard/wall indicators", h.Isstdcnt, 1},
		{"UT/local indicators", h.Isutcnt, 1},
	} {
		need += uint64(sec.count) * sec.size
		if need > remaining {
			return fmt.Errorf("%w: %s section ends at octet %d but only %d remain", ErrCorruptHeader, sec.name, need, remaining)
		}
	}
	return nil
}

func readTransitions(c *cursor.Cursor, b *Block, timeSize int) error {
	n := int(b.Header.Timecnt)
	if n == 0 {
		return nil
	}
	b.TransitionTimes = make([]int64, n)
	for i := range b.TransitionTimes {
		t, err := readTime(c, timeSize)
		if err != nil {
			return fmt.Errorf("reading transition times: %w", err)
		}
		b.TransitionTimes[i] = t
	}
	b.TransitionTypes = make([]uint8, n)
	for i := range b.TransitionTypes {
		idx, err := c.Uint8()
		if err != nil {
			return fmt.Errorf("reading transition types: %w", err)
		}
		b.TransitionTypes[i] = idx
	}
	return nil
}

func readLocalTimeTypes(c *cursor.Cursor, b *Block) error {
	h := b.Header
	if h.Typecnt == 0 {
		return nil
	}
	b.LocalTimeTypes = make([]LocalTimeTypeRecord, h.Typecnt)
	for i := range b.LocalTimeTypes {
		utoff, err := c.Int32()
		if err != nil {
			return fmt.Errorf("reading local time type record: %w", err)
		}
		dst, err := c.Uint8()
		if err != nil {
			return fmt.Errorf("reading local time type record: %w", err)
		}
		idx, err := c.Uint8()
		if err != nil {
			return fmt.Errorf("reading local time type record: %w", err)
		}
		if uint32(idx) >= h.Charcnt {
			return fmt.Errorf("%w: type %d references designation octet %d of %d", ErrAbbrevIndexOutOfRange, i, idx, h.Charcnt)
		}
		b.LocalTimeTypes[i] = LocalTimeTypeRecord{Utoff: utoff, Dst: dst != 0, Idx: idx}
	}
	return nil
}

func readLeapSeconds(c *cursor.Cursor, b *Block, timeSize int) error {
	n := int(b.Header.Leapcnt)
	if n == 0 {
		return nil
	}
	b.LeapSeconds = make([]LeapSecondRecord, n)
	for i := range b.LeapSeconds {
		occur, err := readTime(c, timeSize)
		if err != nil {
			return fmt.Errorf("reading leap second record: %w", err)
		}
		corr, err := c.Int32()
		if err != nil {
			return fmt.Errorf("reading leap second record: %w", err)
		}
		if i > 0 && occur <= b.LeapSeconds[i-1].Occur {
			return fmt.Errorf("%w: record %d occurs at %d, previous at %d", ErrNonMonotonicLeapSeconds, i, occur, b.LeapSeconds[i-1].Occur)
		}
		b.LeapSeconds[i] = LeapSecondRecord{Occur: occur, Corr: corr}
	}
	return nil
}

// readIndicators reads count one-octet indicator values and pads the result
// to typecnt entries. Files commonly declare zero indicators, which means
// all entries default to false.
func readIndicators(c *cursor.Cursor, count, typecnt uint32) ([]bool, error) {
	if count == 0 && typecnt == 0 {
		return nil, nil
	}
	out := make([]bool, typecnt)
	for i := 0; i < int(count); i++ {
		v, err := c.Uint8()
		if err != nil {
			return nil, err
		}
		if i < len(out) {
			out[i] = v != 0
		}
	}
	return out, nil
}

func readTime(c *cursor.Cursor, timeSize int) (int64, error) {
	if timeSize == extendedTimeSize {
		return c.Int64()
	}
	v, err := c.Int32()
	return int64(v), err
}

// decodeFooter reads the TZ string between the two newline delimiters that
// follow the extended block. The returned slice is an owned copy.
func decodeFooter(c *cursor.Cursor) ([]byte, error) {
	nl, err := c.Uint8()
	if err != nil {
		return nil, fmt.Errorf("reading opening newline: %w", err)
	}
	if nl != '\n' {
		return nil, fmt.Errorf("%w: expected newline before TZ string, got %#x", ErrCorruptHeader, nl)
	}
	var tz []byte
	for {
		ch, err := c.Uint8()
		if err != nil {
			return nil, fmt.Errorf("reading TZ string: %w", err)
		}
		if ch == '\n' {
			return tz, nil
		}
		tz = append(tz, ch)
	}
}
