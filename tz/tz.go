// Package tz assembles decoded TZif data into a queryable time zone model.
// Where the tzif package mirrors the binary layout of RFC 8536, this
// package resolves its indirections: transitions carry their resolved local
// time type, designations become strings, and the footer TZ string is
// parsed into a rule for times after the last transition.
package tz

import (
	"errors"
	"fmt"

	"github.com/tzkit/zoneinfo/tzif"
	"github.com/tzkit/zoneinfo/tzstring"
)

// ErrNoLocalTimeTypes is returned when a file declares no local time types
// at all, leaving nothing to resolve transitions or queries against.
var ErrNoLocalTimeTypes = errors.New("tz: no local time types")

// Indicator records how the transition times associated with a local time
// type were specified in the source file. It only matters when converting
// the zone back to a textual source format; queries through Lookup always
// deal in UT.
type Indicator uint8

const (
	// Wall means transition times were specified as local wall clock time.
	Wall Indicator = iota
	// Standard means transition times were specified as local standard
	// time.
	Standard
	// Universal means transition times were specified as UT.
	Universal
)

func (i Indicator) String() string {
	switch i {
	case Wall:
		return "wall"
	case Standard:
		return "standard"
	case Universal:
		return "universal"
	default:
		return fmt.Sprintf("<undefined indicator (%d)>", uint8(i))
	}
}

// LocalTimeType is one local time type with its designation resolved.
type LocalTimeType struct {
	// Offset is the number of seconds to add to UT to determine local
	// time.
	Offset int
	// DST indicates whether local time of this type is Daylight Saving
	// Time.
	DST bool
	// Name is the time zone designation, for example "EST".
	Name string
	// Indicator records how transition times into this type were
	// specified.
	Indicator Indicator
}

// Transition is one moment at which the rules for computing local time
// change, together with the local time type in effect from that moment on.
type Transition struct {
	// At is the Unix time at which the transition occurs.
	At int64
	// Type is the local time type in effect at and after At.
	Type LocalTimeType
}

// LeapSecond is one leap second correction.
type LeapSecond struct {
	// Occur is the Unix leap time value at which the correction occurs.
	Occur int64
	// Corr is the cumulative correction in effect on or after Occur.
	Corr int32
}

// Zone is the assembled model of one time zone. It owns all of its data
// and shares nothing with the buffers it was decoded from.
type Zone struct {
	// Types is the local time type table of the authoritative data block.
	Types []LocalTimeType
	// Transitions is sorted in strictly ascending order of At.
	Transitions []Transition
	// LeapSeconds is sorted in strictly ascending order of Occur. It is
	// empty for the common case of zones distributed without leap second
	// information.
	LeapSeconds []LeapSecond
	// Rule describes local time at and after the last transition. It is
	// nil when the file carries no TZ string or an empty one, in which
	// case the last transition's type remains in effect indefinitely.
	Rule *tzstring.Rule
}

// Decode decodes a TZif file into a Zone.
func Decode(buf []byte) (*Zone, error) {
	return DecodeLimits(buf, tzif.Limits{})
}

// DecodeLimits is like Decode but rejects files whose header counts exceed
// the given limits.
func DecodeLimits(buf []byte, lim tzif.Limits) (*Zone, error) {
	f, err := tzif.DecodeFileLimits(buf, lim)
	if err != nil {
		return nil, err
	}
	return FromFile(f)
}

// FromFile assembles a Zone from a decoded file. For version 2+ files the
// extended block is authoritative and the legacy block is ignored entirely,
// even where the two disagree.
func FromFile(f tzif.File) (*Zone, error) {
	b := &f.Legacy
	if f.Extended != nil {
		b = f.Extended
	}

	if len(b.LocalTimeTypes) == 0 {
		return nil, ErrNoLocalTimeTypes
	}

	z := &Zone{
		Types:       make([]LocalTimeType, len(b.LocalTimeTypes)),
		LeapSeconds: make([]LeapSecond, 0, len(b.LeapSeconds)),
	}
	for i, rec := range b.LocalTimeTypes {
		z.Types[i] = LocalTimeType{
			Offset:    int(rec.Utoff),
			DST:       rec.Dst,
			Name:      designation(b.Designations, rec.Idx),
			Indicator: indicator(b, i),
		}
	}

	// Transition times are required to be strictly ascending, but files
	// in the wild occasionally repeat or reorder entries. Rather than
	// rejecting those files the later record wins: a new record discards
	// every earlier transition at or after its instant, so the result
	// stays strictly ascending, which Lookup's binary search relies on.
	z.Transitions = make([]Transition, 0, len(b.TransitionTimes))
	for i, at := range b.TransitionTimes {
		for n := len(z.Transitions); n > 0 && z.Transitions[n-1].At >= at; n-- {
			z.Transitions = z.Transitions[:n-1]
		}
		z.Transitions = append(z.Transitions, Transition{At: at, Type: z.Types[b.TransitionTypes[i]]})
	}

	for _, l := range b.LeapSeconds {
		z.LeapSeconds = append(z.LeapSeconds, LeapSecond{Occur: l.Occur, Corr: l.Corr})
	}

	rule, err := tzstring.Parse(string(f.TZString))
	if err != nil {
		return nil, err
	}
	z.Rule = rule

	return z, nil
}

// designation slices the NUL-terminated string starting at idx out of the
// designation octets. Decoding already guarantees idx is in range; a
// missing terminating NUL yields the remainder of the buffer.
func designation(desig []byte, idx uint8) string {
	s := desig[idx:]
	for i, c := range s {
		if c == 0 {
			return string(s[:i])
		}
	}
	return string(s)
}

// indicator classifies a local time type from the standard/wall and
// UT/local flags. A set UT/local flag implies UT regardless of the
// standard/wall flag, which RFC 8536 requires to be set alongside it.
func indicator(b *tzif.Block, i int) Indicator {
	ut := i < len(b.UTLocalIndicators) && b.UTLocalIndicators[i]
	std := i < len(b.StandardWallIndicators) && b.StandardWallIndicators[i]
	switch {
	case ut:
		return Universal
	case std:
		return Standard
	default:
		return Wall
	}
}
