package tz

import (
	"sort"

	"github.com/tzkit/zoneinfo/internal/datemath"
	"github.com/tzkit/zoneinfo/internal/unixtime"
	"github.com/tzkit/zoneinfo/tzstring"
)

// Lookup returns the local time type in effect at the Unix time t.
//
// Before the first transition the first non-DST type applies, falling back
// to the first type if every type observes daylight saving time. At and
// after the last transition the zone's rule applies if it has one;
// otherwise the last transition's type persists. A zone without
// transitions answers from its rule or its first type.
func (z *Zone) Lookup(t int64) LocalTimeType {
	if len(z.Transitions) == 0 {
		if z.Rule != nil {
			return z.ruleType(t)
		}
		return z.Types[0]
	}

	if t < z.Transitions[0].At {
		return z.firstStandardType()
	}
	if t >= z.Transitions[len(z.Transitions)-1].At && z.Rule != nil {
		return z.ruleType(t)
	}

	// Find the first transition after t; the one before it is in effect.
	i := sort.Search(len(z.Transitions), func(i int) bool {
		return z.Transitions[i].At > t
	})
	return z.Transitions[i-1].Type
}

// firstStandardType returns the first type not marked as daylight saving
// time, the conventional choice for times before the first transition.
func (z *Zone) firstStandardType() LocalTimeType {
	for _, lt := range z.Types {
		if !lt.DST {
			return lt
		}
	}
	return z.Types[0]
}

// ruleType evaluates the zone's rule at the Unix time t.
func (z *Zone) ruleType(t int64) LocalTimeType {
	r := z.Rule
	if !r.DST {
		return LocalTimeType{Offset: r.StdOffset, Name: r.StdName}
	}
	if ruleDSTActive(r, t) {
		return LocalTimeType{Offset: r.DSTOffset, DST: true, Name: r.DSTName}
	}
	return LocalTimeType{Offset: r.StdOffset, Name: r.StdName}
}

// ruleDSTActive reports whether daylight saving time is in effect at the
// Unix time t under the given rule. Candidate intervals from the year
// before and after the local year are considered as well so that instants
// near the year boundary resolve correctly.
func ruleDSTActive(r *tzstring.Rule, t int64) bool {
	year, _, _ := unixtime.Date(t + int64(r.StdOffset))
	for _, y := range []int{year - 1, year, year + 1} {
		start := ruleTransition(r.Start, y, r.StdOffset)
		end := ruleTransition(r.End, y, r.DSTOffset)
		if start <= end {
			if start <= t && t < end {
				return true
			}
			continue
		}
		// Daylight saving time spans the year boundary, as in the
		// southern hemisphere: the interval runs from this year's start
		// to next year's end.
		end = ruleTransition(r.End, y+1, r.DSTOffset)
		if start <= t && t < end {
			return true
		}
	}
	return false
}

// ruleTransition resolves a transition date in the given year to the Unix
// time at which it occurs. The rule gives the transition as a local time of
// day; offset is the local offset in effect just before the transition and
// converts it to UT.
func ruleTransition(d tzstring.DateRule, year, offset int) int64 {
	var month, day int
	switch d.Form {
	case tzstring.DateJulian:
		month, day = datemath.JulianDate(year, d.Day)
	case tzstring.DateZeroBased:
		var yearAdd int
		yearAdd, month, day = datemath.YearDate(year, d.Day)
		year += yearAdd
	case tzstring.DateMonthWeekDay:
		month = d.Month
		if d.Week == 5 {
			day = datemath.LastWeekdayOfMonth(year, d.Month, d.Weekday)
		} else {
			day = datemath.NthWeekdayOfMonth(year, d.Month, d.Week, d.Weekday)
		}
	}
	midnight := unixtime.FromDateTime(year, month, day, 0, 0, 0)
	return midnight + int64(d.Time) - int64(offset)
}
