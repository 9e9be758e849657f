// Package tzif decodes the TZif binary format defined by RFC 8536.
// https://datatracker.ietf.org/doc/html/rfc8536
//
// A TZif file consists of a version 1 data block with 32-bit transition
// times and, for version 2 and later, an additional data block with 64-bit
// transition times followed by a footer carrying a POSIX TZ string. This
// package decodes both blocks into the same Block representation; it does
// not interpret the data beyond resolving the binary layout. See the tz
// package for the assembled zone model.
package tzif

import (
	"errors"
	"fmt"

	"github.com/tzkit/zoneinfo/internal/cursor"
)

// Version is the octet identifying the version of a TZif file's format.
// In version 1, time values are 32 bits (four octets). From version 2
// upwards time values in the second data block are 64 bits (eight octets).
type Version byte

const (
	// V1 identifies a version 1 file, which contains only the version 1
	// header and data block.
	V1 Version = 0x00
	// V2 identifies a version 2 file: a version 1 header and data block
	// followed by a version 2+ header, data block, and footer. The TZ
	// string in the footer, if nonempty, must adhere to the POSIX TZ
	// environment variable grammar.
	V2 Version = '2'
	// V3 identifies a version 3 file. Same layout as V2; the footer may
	// use the TZ string extensions of RFC 8536 Section 3.3.1.
	V3 Version = '3'
	// V4 identifies a version 4 file as specified in the tzfile(5) man
	// page. The layout and the footer grammar are the same as V3; only
	// the interpretation of some leap-second records differs.
	V4 Version = '4'
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 ('2')"
	case V3:
		return "V3 ('3')"
	case V4:
		return "V4 ('4')"
	default:
		return fmt.Sprintf("<undefined version (%d)>", byte(v))
	}
}

// Magic is the four-octet ASCII sequence "TZif" that identifies a file as
// utilizing the Time Zone Information Format.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// Decode errors. Every error returned by this package wraps one of these
// and can be tested with errors.Is. Decoding never panics on malformed
// input; the first error encountered is returned and no partial result is
// produced.
var (
	// ErrUnexpectedEOF means the buffer ended inside a section whose
	// length was declared by the header or the format.
	ErrUnexpectedEOF = cursor.ErrUnexpectedEOF
	// ErrBadMagic means the first four octets are not "TZif".
	ErrBadMagic = errors.New("tzif: bad magic")
	// ErrUnsupportedVersion means the version octet is outside the
	// recognized set (0x00, '2', '3', '4').
	ErrUnsupportedVersion = errors.New("tzif: unsupported version")
	// ErrCorruptHeader means a header count would make a section exceed
	// the remaining buffer, or exceeds a configured limit.
	ErrCorruptHeader = errors.New("tzif: corrupt header")
	// ErrTypeIndexOutOfRange means a transition references a local time
	// type index at or beyond typecnt.
	ErrTypeIndexOutOfRange = errors.New("tzif: transition type index out of range")
	// ErrAbbrevIndexOutOfRange means a local time type references a
	// designation index at or beyond charcnt.
	ErrAbbrevIndexOutOfRange = errors.New("tzif: designation index out of range")
	// ErrNonMonotonicLeapSeconds means leap-second occurrence times are
	// not strictly increasing.
	ErrNonMonotonicLeapSeconds = errors.New("tzif: leap second records not strictly increasing")
)

// Header holds the version octet and the six four-octet counts of a TZif
// header, in file order.
//
//	+---------------+---+
//	|  magic    (4) |ver|
//	+---------------+---+---------------------------------------+
//	|           [unused - reserved for future use] (15)         |
//	+---------------+---------------+---------------+-----------+
//	|  isutcnt  (4) |  isstdcnt (4) |  leapcnt  (4) |
//	+---------------+---------------+---------------+
//	|  timecnt  (4) |  typecnt  (4) |  charcnt  (4) |
//	+---------------+---------------+---------------+
type Header struct {
	// Version is the version octet of the block's header.
	Version Version

	// Isutcnt is the number of UT/local indicators in the data block.
	// Must either be zero or equal to Typecnt.
	Isutcnt uint32
	// Isstdcnt is the number of standard/wall indicators in the data
	// block. Must either be zero or equal to Typecnt.
	Isstdcnt uint32
	// Leapcnt is the number of leap-second records in the data block.
	Leapcnt uint32
	// Timecnt is the number of transition times in the data block.
	Timecnt uint32
	// Typecnt is the number of local time type records in the data block.
	Typecnt uint32
	// Charcnt is the total number of octets used by the set of time zone
	// designations in the data block, including each trailing NUL.
	Charcnt uint32
}

// LocalTimeTypeRecord is a six-octet record specifying a local time type.
//
//	+---------------+---+---+
//	|  utoff (4)    |dst|idx|
//	+---------------+---+---+
type LocalTimeTypeRecord struct {
	// Utoff is the number of seconds to be added to UT in order to
	// determine local time.
	Utoff int32
	// Dst indicates whether local time of this type is Daylight Saving
	// Time.
	Dst bool
	// Idx is a zero-based index into the designation octets, selecting
	// the NUL-terminated designation string starting at that position.
	Idx uint8
}

// LeapSecondRecord specifies a correction to be applied to UTC on or after
// an occurrence time. Occurrence times are 32 bits wide in the version 1
// block and 64 bits wide in the version 2+ block; both decode into the
// same record.
type LeapSecondRecord struct {
	// Occur is the UNIX leap time value at which the correction occurs.
	Occur int64
	// Corr is the cumulative correction in effect on or after Occur.
	Corr int32
}

// Block is the decoded contents of one TZif data block, preceded by its
// header. Transition times are widened to 64 bits regardless of the block's
// time value size. The designation buffer and all slices are owned by the
// Block; nothing aliases the input buffer.
type Block struct {
	Header Header

	// TransitionTimes is a series of UNIX leap-time values sorted in
	// strictly ascending order, one per transition.
	TransitionTimes []int64
	// TransitionTypes holds one type index per transition. Every index
	// is in the range [0, Typecnt-1]; this is checked during decoding.
	TransitionTypes []uint8
	// LocalTimeTypes is the local time type table.
	LocalTimeTypes []LocalTimeTypeRecord
	// Designations is the raw array of NUL-terminated designation
	// strings. Two designations may overlap if one is a suffix of the
	// other; slicing at NUL boundaries is left to the caller.
	Designations []byte
	// LeapSeconds is the leap-second table, strictly ascending in Occur.
	LeapSeconds []LeapSecondRecord
	// StandardWallIndicators has one entry per local time type; true
	// means the associated transition times were specified as standard
	// time, false as wall-clock time. Entries absent from the file
	// default to false.
	StandardWallIndicators []bool
	// UTLocalIndicators has one entry per local time type; true means
	// the associated transition times were specified as UT, false as
	// local time. Entries absent from the file default to false.
	UTLocalIndicators []bool
}

// File is the decoded representation of a whole TZif file.
type File struct {
	// Version is the version of the file, taken from the first header.
	Version Version
	// Legacy is the version 1 data block with 32-bit transition times.
	// For version 2+ files its content is superseded by Extended.
	Legacy Block
	// Extended is the version 2+ data block with 64-bit transition
	// times. It is nil for version 1 files.
	Extended *Block
	// TZString is the footer's TZ string without the enclosing newline
	// delimiters. It is nil for version 1 files and empty when the file
	// declares no rule for times after the last transition.
	TZString []byte
}
