package tzif

import "fmt"

// Limits caps the numbers of structures that will be decoded from a TZif
// file. Header counts are four-octet unsigned integers, so an invalid or
// maliciously crafted file can declare sections of several gigabytes;
// limits reject such files right after the header, before anything is
// allocated. A zero field means no limit for that count.
type Limits struct {
	// MaxTransitions caps timecnt.
	MaxTransitions uint32
	// MaxLocalTimeTypes caps typecnt.
	MaxLocalTimeTypes uint32
	// MaxDesignationBytes caps charcnt.
	MaxDesignationBytes uint32
	// MaxLeapSeconds caps leapcnt.
	MaxLeapSeconds uint32
}

// SensibleLimits returns limits that accommodate every file shipped with
// the IANA distribution while posing no danger of using lots of memory.
// The values derive from the historic constants in tzfile.h.
func SensibleLimits() Limits {
	return Limits{
		MaxTransitions:      2000,
		MaxLocalTimeTypes:   256,
		MaxDesignationBytes: 50,
		MaxLeapSeconds:      50,
	}
}

// verify checks the header counts against the limits. Indicator counts are
// implicitly capped by MaxLocalTimeTypes since they must not exceed
// typecnt to be meaningful.
func (l Limits) verify(h Header) error {
	for _, c := range []struct {
		name  string
		count uint32
		limit uint32
	}{
		{"timecnt", h.Timecnt, l.MaxTransitions},
		{"typecnt", h.Typecnt, l.MaxLocalTimeTypes},
		{"charcnt", h.Charcnt, l.MaxDesignationBytes},
		{"leapcnt", h.Leapcnt, l.MaxLeapSeconds},
		{"isstdcnt", h.Isstdcnt, l.MaxLocalTimeTypes},
		{"isutcnt", h.Isutcnt, l.MaxLocalTimeTypes},
	} {
		if c.limit != 0 && c.count > c.limit {
			return fmt.Errorf("%w: %s is %d, limit is %d", ErrCorruptHeader, c.name, c.count, c.limit)
		}
	}
	return nil
}
