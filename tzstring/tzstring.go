// Package tzstring parses POSIX TZ rule strings as found in the footer of
// version 2+ TZif files. The grammar is the expanded format of the TZ
// environment variable defined in Section 8.3 of the POSIX "Base
// Definitions" volume, including the RFC 8536 Section 3.3.1 extensions
// (quoted designations and transition hours from -167 through 167).
//
// A parsed Rule describes the perpetual transition pattern that applies
// after the last explicit transition of a zone. Offsets are normalized to
// seconds east of UT: the TZ grammar stores hours west of UT ("EST5" means
// five hours behind), so the sign is inverted exactly once here and the
// results compare directly with the UT offsets of the binary blocks.
package tzstring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned for any deviation from the TZ string grammar.
// Errors wrap it together with the offending field.
var ErrMalformed = errors.New("tzstring: malformed rule")

// DateForm distinguishes the three date specifications of a transition
// rule.
type DateForm int

func (f DateForm) String() string {
	switch f {
	case DateJulian:
		return "Julian"
	case DateZeroBased:
		return "ZeroBased"
	case DateMonthWeekDay:
		return "MonthWeekDay"
	default:
		return "<UNDEFINED>"
	}
}

const (
	// DateJulian is the "Jn" form: day n (1-365) of the year, where
	// February 29 is never counted even in leap years.
	DateJulian DateForm = iota
	// DateZeroBased is the bare "n" form: day n (0-365) of the year,
	// where February 29 is counted in leap years.
	DateZeroBased
	// DateMonthWeekDay is the "Mm.n.d" form: weekday d (0 is Sunday) of
	// week n (1-5) of month m (1-12). Week 5 means the last such weekday
	// of the month.
	DateMonthWeekDay
)

// DefaultTransitionTime is the time of day at which a transition occurs
// when the rule does not give one explicitly: 02:00:00 local time.
const DefaultTransitionTime = 2 * 60 * 60

// DateRule is one transition date specification plus the local time of day
// at which the transition happens.
type DateRule struct {
	// Form selects which of the date fields below are meaningful.
	Form DateForm
	// Day is the day number for the Julian and zero-based forms.
	Day int
	// Month (1-12), Week (1-5, 5 meaning last) and Weekday (0 is Sunday)
	// describe the month/week/weekday form.
	Month   int
	Week    int
	Weekday int
	// Time is the transition time of day in seconds relative to 00:00
	// local time. It defaults to DefaultTransitionTime and may be
	// negative or exceed 24 hours in version 3 files.
	Time int
}

// Rule is a parsed TZ string. If DST is false the zone observes StdName
// and StdOffset forever; otherwise the zone alternates between standard
// and daylight saving time at the instants described by Start and End.
type Rule struct {
	// StdName is the standard time designation, for example "EST".
	StdName string
	// StdOffset is the standard time offset in seconds east of UT.
	StdOffset int

	// DST reports whether the rule defines daylight saving time. The
	// remaining fields are meaningful only if it is true.
	DST bool
	// DSTName is the daylight saving time designation, for example "EDT".
	DSTName string
	// DSTOffset is the daylight saving time offset in seconds east of
	// UT. When the rule does not give it explicitly, it is one hour
	// ahead of StdOffset.
	DSTOffset int
	// Start and End give the instants at which daylight saving time
	// begins and ends each year. Start's time of day is expressed in
	// local standard time, End's in local daylight saving time.
	Start DateRule
	End   DateRule
}

// Parse parses a TZ string. An empty string yields a nil Rule and no
// error: the zone has no defined behavior beyond its last transition and
// callers must treat the last known offset as persisting.
func Parse(s string) (*Rule, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, ":") {
		return nil, fmt.Errorf("%w: implementation-defined form %q", ErrMalformed, s)
	}

	p := &parser{s: s}
	r, err := p.rule()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("%w: trailing characters %q", ErrMalformed, p.rest())
	}
	return r, nil
}

type parser struct {
	s string
	i int
}

func (p *parser) done() bool   { return p.i >= len(p.s) }
func (p *parser) rest() string { return p.s[p.i:] }
func (p *parser) peek() byte   { return p.s[p.i] }

func (p *parser) accept(c byte) bool {
	if !p.done() && p.s[p.i] == c {
		p.i++
		return true
	}
	return false
}

func (p *parser) rule() (*Rule, error) {
	var r Rule

	name, err := p.name()
	if err != nil {
		return nil, fmt.Errorf("standard designation: %w", err)
	}
	r.StdName = name

	// The standard offset is mandatory. The grammar stores it as hours
	// west of UT; negate for seconds east.
	off, err := p.offset(24, "standard offset")
	if err != nil {
		return nil, err
	}
	r.StdOffset = -off

	if p.done() {
		return &r, nil
	}
	if p.peek() != ',' {
		// A second designation introduces the daylight saving half.
		name, err := p.name()
		if err != nil {
			return nil, fmt.Errorf("daylight designation: %w", err)
		}
		r.DST = true
		r.DSTName = name

		if !p.done() && p.peek() != ',' {
			off, err := p.offset(24, "daylight offset")
			if err != nil {
				return nil, err
			}
			r.DSTOffset = -off
		} else {
			// Defaults to one hour ahead of standard time.
			r.DSTOffset = r.StdOffset + 60*60
		}
	}

	if !r.DST {
		if p.done() {
			return &r, nil
		}
		return nil, fmt.Errorf("%w: transition dates without a daylight designation", ErrMalformed)
	}

	if p.done() {
		// No explicit dates. Fall back to the current US practice,
		// which is what tzcode applies in this case: second Sunday in
		// March through first Sunday in November.
		r.Start = DateRule{Form: DateMonthWeekDay, Month: 3, Week: 2, Weekday: 0, Time: DefaultTransitionTime}
		r.End = DateRule{Form: DateMonthWeekDay, Month: 11, Week: 1, Weekday: 0, Time: DefaultTransitionTime}
		return &r, nil
	}

	if !p.accept(',') {
		return nil, fmt.Errorf("%w: expected ',' before start date, got %q", ErrMalformed, p.rest())
	}
	r.Start, err = p.dateRule()
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	if !p.accept(',') {
		return nil, fmt.Errorf("%w: expected ',' before end date, got %q", ErrMalformed, p.rest())
	}
	r.End, err = p.dateRule()
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	return &r, nil
}

// name parses a time zone designation: either a run of at least three
// alphabetic characters, or a quoted form "<...>" that additionally
// permits digits, '+' and '-'.
func (p *parser) name() (string, error) {
	if p.accept('<') {
		start := p.i
		for !p.done() && p.peek() != '>' {
			c := p.peek()
			if !isAlpha(c) && !isDigit(c) && c != '+' && c != '-' {
				return "", fmt.Errorf("%w: invalid character %q in quoted designation", ErrMalformed, c)
			}
			p.i++
		}
		if !p.accept('>') {
			return "", fmt.Errorf("%w: unterminated quoted designation", ErrMalformed)
		}
		name := p.s[start : p.i-1]
		if len(name) < 3 {
			return "", fmt.Errorf("%w: designation %q shorter than three characters", ErrMalformed, name)
		}
		return name, nil
	}

	start := p.i
	for !p.done() && isAlpha(p.peek()) {
		p.i++
	}
	name := p.s[start:p.i]
	if len(name) < 3 {
		return "", fmt.Errorf("%w: designation %q shorter than three characters", ErrMalformed, name)
	}
	return name, nil
}

// offset parses a mandatory "[+|-]hh[:mm[:ss]]" value and returns seconds.
// maxHours bounds the hours field; minutes and seconds are in 0-59.
func (p *parser) offset(maxHours int, what string) (int, error) {
	neg := false
	switch {
	case p.accept('-'):
		neg = true
	case p.accept('+'):
	}

	h, err := p.number(what + " hours")
	if err != nil {
		return 0, err
	}
	if h > maxHours {
		return 0, fmt.Errorf("%w: %s hours %d out of range", ErrMalformed, what, h)
	}
	secs := h * 60 * 60

	if p.accept(':') {
		m, err := p.number(what + " minutes")
		if err != nil {
			return 0, err
		}
		if m > 59 {
			return 0, fmt.Errorf("%w: %s minutes %d out of range", ErrMalformed, what, m)
		}
		secs += m * 60
		if p.accept(':') {
			s, err := p.number(what + " seconds")
			if err != nil {
				return 0, err
			}
			if s > 59 {
				return 0, fmt.Errorf("%w: %s seconds %d out of range", ErrMalformed, what, s)
			}
			secs += s
		}
	}

	if neg {
		secs = -secs
	}
	return secs, nil
}

// dateRule parses one transition date, distinguished by its leading
// marker character, with an optional "/time" suffix.
func (p *parser) dateRule() (DateRule, error) {
	var d DateRule
	if p.done() {
		return d, fmt.Errorf("%w: missing date", ErrMalformed)
	}

	switch {
	case p.accept('J'):
		n, err := p.number("Julian day")
		if err != nil {
			return d, err
		}
		if n < 1 || n > 365 {
			return d, fmt.Errorf("%w: Julian day %d out of range 1-365", ErrMalformed, n)
		}
		d = DateRule{Form: DateJulian, Day: n}
	case p.accept('M'):
		m, err := p.number("month")
		if err != nil {
			return d, err
		}
		if m < 1 || m > 12 {
			return d, fmt.Errorf("%w: month %d out of range 1-12", ErrMalformed, m)
		}
		if !p.accept('.') {
			return d, fmt.Errorf("%w: expected '.' after month", ErrMalformed)
		}
		n, err := p.number("week")
		if err != nil {
			return d, err
		}
		if n < 1 || n > 5 {
			return d, fmt.Errorf("%w: week %d out of range 1-5", ErrMalformed, n)
		}
		if !p.accept('.') {
			return d, fmt.Errorf("%w: expected '.' after week", ErrMalformed)
		}
		wd, err := p.number("weekday")
		if err != nil {
			return d, err
		}
		if wd < 0 || wd > 6 {
			return d, fmt.Errorf("%w: weekday %d out of range 0-6", ErrMalformed, wd)
		}
		d = DateRule{Form: DateMonthWeekDay, Month: m, Week: n, Weekday: wd}
	case isDigit(p.peek()):
		n, err := p.number("day")
		if err != nil {
			return d, err
		}
		if n > 365 {
			return d, fmt.Errorf("%w: day %d out of range 0-365", ErrMalformed, n)
		}
		d = DateRule{Form: DateZeroBased, Day: n}
	default:
		return d, fmt.Errorf("%w: unexpected date %q", ErrMalformed, p.rest())
	}

	d.Time = DefaultTransitionTime
	if p.accept('/') {
		// Version 3 files permit signed transition hours from -167
		// through 167.
		t, err := p.offset(167, "transition time")
		if err != nil {
			return d, err
		}
		d.Time = t
	}
	return d, nil
}

// number parses a run of decimal digits.
func (p *parser) number(what string) (int, error) {
	start := p.i
	for !p.done() && isDigit(p.peek()) {
		p.i++
	}
	if p.i == start {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformed, what)
	}
	n, err := strconv.Atoi(p.s[start:p.i])
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformed, what, err)
	}
	return n, nil
}

func isAlpha(c byte) bool { return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
