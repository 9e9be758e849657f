package tzstring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		want *Rule
	}{
		{
			name: "empty string means no rule",
			in:   "",
			want: nil,
		},
		{
			name: "fixed offset",
			in:   "UTC0",
			want: &Rule{StdName: "UTC", StdOffset: 0},
		},
		{
			name: "fixed offset west of UT",
			in:   "EST5",
			want: &Rule{StdName: "EST", StdOffset: -5 * 60 * 60},
		},
		{
			name: "fixed offset east of UT",
			in:   "JST-9",
			want: &Rule{StdName: "JST", StdOffset: 9 * 60 * 60},
		},
		{
			name: "offset with minutes and seconds",
			in:   "IST-5:30:00",
			want: &Rule{StdName: "IST", StdOffset: 5*60*60 + 30*60},
		},
		{
			name: "explicit plus sign",
			in:   "EST+5",
			want: &Rule{StdName: "EST", StdOffset: -5 * 60 * 60},
		},
		{
			name: "us eastern with explicit rules",
			in:   "EST5EDT,M3.2.0,M11.1.0",
			want: &Rule{
				StdName:   "EST",
				StdOffset: -5 * 60 * 60,
				DST:       true,
				DSTName:   "EDT",
				DSTOffset: -4 * 60 * 60,
				Start:     DateRule{Form: DateMonthWeekDay, Month: 3, Week: 2, Weekday: 0, Time: 2 * 60 * 60},
				End:       DateRule{Form: DateMonthWeekDay, Month: 11, Week: 1, Weekday: 0, Time: 2 * 60 * 60},
			},
		},
		{
			name: "daylight offset defaults to one hour ahead",
			in:   "CET-1CEST,M3.5.0,M10.5.0/3",
			want: &Rule{
				StdName:   "CET",
				StdOffset: 60 * 60,
				DST:       true,
				DSTName:   "CEST",
				DSTOffset: 2 * 60 * 60,
				Start:     DateRule{Form: DateMonthWeekDay, Month: 3, Week: 5, Weekday: 0, Time: 2 * 60 * 60},
				End:       DateRule{Form: DateMonthWeekDay, Month: 10, Week: 5, Weekday: 0, Time: 3 * 60 * 60},
			},
		},
		{
			name: "missing rules default to current us practice",
			in:   "EST5EDT",
			want: &Rule{
				StdName:   "EST",
				StdOffset: -5 * 60 * 60,
				DST:       true,
				DSTName:   "EDT",
				DSTOffset: -4 * 60 * 60,
				Start:     DateRule{Form: DateMonthWeekDay, Month: 3, Week: 2, Weekday: 0, Time: 2 * 60 * 60},
				End:       DateRule{Form: DateMonthWeekDay, Month: 11, Week: 1, Weekday: 0, Time: 2 * 60 * 60},
			},
		},
		{
			name: "quoted designations",
			in:   "<-03>3<-02>,M3.5.0/-2,M10.5.0/-1",
			want: &Rule{
				StdName:   "-03",
				StdOffset: -3 * 60 * 60,
				DST:       true,
				DSTName:   "-02",
				DSTOffset: -2 * 60 * 60,
				Start:     DateRule{Form: DateMonthWeekDay, Month: 3, Week: 5, Weekday: 0, Time: -2 * 60 * 60},
				End:       DateRule{Form: DateMonthWeekDay, Month: 10, Week: 5, Weekday: 0, Time: -60 * 60},
			},
		},
		{
			name: "julian days",
			in:   "NST3:30NDT,J60/1:30,J300",
			want: &Rule{
				StdName:   "NST",
				StdOffset: -(3*60*60 + 30*60),
				DST:       true,
				DSTName:   "NDT",
				DSTOffset: -(2*60*60 + 30*60),
				Start:     DateRule{Form: DateJulian, Day: 60, Time: 60*60 + 30*60},
				End:       DateRule{Form: DateJulian, Day: 300, Time: 2 * 60 * 60},
			},
		},
		{
			name: "zero based days",
			in:   "AAA4BBB,0/0,365/23",
			want: &Rule{
				StdName:   "AAA",
				StdOffset: -4 * 60 * 60,
				DST:       true,
				DSTName:   "BBB",
				DSTOffset: -3 * 60 * 60,
				Start:     DateRule{Form: DateZeroBased, Day: 0, Time: 0},
				End:       DateRule{Form: DateZeroBased, Day: 365, Time: 23 * 60 * 60},
			},
		},
		{
			name: "all year daylight saving via extended hours",
			in:   "EST5EDT,0/0,J365/25",
			want: &Rule{
				StdName:   "EST",
				StdOffset: -5 * 60 * 60,
				DST:       true,
				DSTName:   "EDT",
				DSTOffset: -4 * 60 * 60,
				Start:     DateRule{Form: DateZeroBased, Day: 0, Time: 0},
				End:       DateRule{Form: DateJulian, Day: 365, Time: 25 * 60 * 60},
			},
		},
		{
			name: "southern hemisphere",
			in:   "AEST-10AEDT,M10.1.0,M4.1.0/3",
			want: &Rule{
				StdName:   "AEST",
				StdOffset: 10 * 60 * 60,
				DST:       true,
				DSTName:   "AEDT",
				DSTOffset: 11 * 60 * 60,
				Start:     DateRule{Form: DateMonthWeekDay, Month: 10, Week: 1, Weekday: 0, Time: 2 * 60 * 60},
				End:       DateRule{Form: DateMonthWeekDay, Month: 4, Week: 1, Weekday: 0, Time: 3 * 60 * 60},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.in, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
	}{
		{"implementation defined form", ":America/New_York"},
		{"name too short", "ET5"},
		{"quoted name too short", "<5>5"},
		{"unterminated quoted name", "<EST5"},
		{"bad character in quoted name", "<E.T>5"},
		{"missing offset", "EST"},
		{"offset hours out of range", "EST25"},
		{"offset minutes out of range", "EST5:60"},
		{"dates without daylight name", "EST5,M3.2.0,M11.1.0"},
		{"missing end date", "EST5EDT,M3.2.0"},
		{"julian day zero", "EST5EDT,J0,J300"},
		{"julian day too large", "EST5EDT,J366,J300"},
		{"zero based day too large", "EST5EDT,366,J300"},
		{"month out of range", "EST5EDT,M13.2.0,M11.1.0"},
		{"week out of range", "EST5EDT,M3.0.0,M11.1.0"},
		{"weekday out of range", "EST5EDT,M3.2.7,M11.1.0"},
		{"transition hours out of range", "EST5EDT,M3.2.0/168,M11.1.0"},
		{"unexpected date marker", "EST5EDT,X3,M11.1.0"},
		{"trailing characters", "EST5EDT,M3.2.0,M11.1.0,extra"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.in)
			require.ErrorIs(t, err, ErrMalformed, "Parse(%q)", tc.in)
		})
	}
}
