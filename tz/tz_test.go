package tz

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/tzkit/zoneinfo/tzif"
)

// Fixture helpers. Tests lay out files section by section so a failing
// diff points at the byte responsible.

func u32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func i32(v int32) []byte { return u32(uint32(v)) }

func i64(v int64) []byte {
	return append(u32(uint32(v>>32)), u32(uint32(v))...)
}

// hdr builds a 44-octet TZif header with the counts in file order.
func hdr(ver byte, isutcnt, isstdcnt, leapcnt, timecnt, typecnt, charcnt uint32) []byte {
	b := []byte{'T', 'Z', 'i', 'f', ver}
	b = append(b, make([]byte, 15)...)
	for _, c := range []uint32{isutcnt, isstdcnt, leapcnt, timecnt, typecnt, charcnt} {
		b = append(b, u32(c)...)
	}
	return b
}

// ltt builds a six-octet local time type record.
func ltt(utoff int32, dst byte, idx byte) []byte {
	return append(i32(utoff), dst, idx)
}

func cat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

// utcV1 is the smallest meaningful version 1 file: one type, no
// transitions.
func utcV1() []byte {
	return cat(
		hdr(0, 0, 0, 0, 0, 1, 4),
		ltt(0, 0, 0),
		[]byte("UTC\x00"),
	)
}

// easternV2 is a version 2 file for a US Eastern style zone. The legacy
// block carries a deliberately bogus transition and offset; the extended
// block carries two transitions into and out of daylight saving time in
// 2006 and a footer rule.
func easternV2() []byte {
	legacy := cat(
		hdr('2', 0, 0, 0, 1, 1, 4),
		i32(12345),        // nonsense transition time
		[]byte{0},         // trans type[0]
		ltt(-11111, 0, 0), // nonsense offset
		[]byte("XXX\x00"),
	)
	extended := cat(
		hdr('2', 2, 2, 0, 2, 2, 8),
		i64(1143961200), // 2006-04-02 07:00 UT, to EDT
		i64(1162101600), // 2006-10-29 06:00 UT, to EST
		[]byte{1, 0},
		ltt(-18000, 0, 0), // EST
		ltt(-14400, 1, 4), // EDT
		[]byte("EST\x00EDT\x00"),
		[]byte{1, 1}, // standard/wall
		[]byte{1, 1}, // UT/local
	)
	footer := []byte("\nEST5EDT,M3.2.0,M11.1.0\n")
	return cat(legacy, extended, footer)
}

func TestDecodeMinimalV1(t *testing.T) {
	z, err := Decode(utcV1())
	require.NoError(t, err)

	want := &Zone{
		Types:       []LocalTimeType{{Offset: 0, Name: "UTC"}},
		Transitions: []Transition{},
		LeapSeconds: []LeapSecond{},
	}
	if diff := cmp.Diff(want, z); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
	if got := z.Lookup(0); got.Name != "UTC" || got.Offset != 0 {
		t.Errorf("Lookup(0) = %+v, want UTC", got)
	}
}

func TestDecodeEastern(t *testing.T) {
	z, err := Decode(easternV2())
	require.NoError(t, err)

	est := LocalTimeType{Offset: -18000, Name: "EST", Indicator: Universal}
	edt := LocalTimeType{Offset: -14400, DST: true, Name: "EDT", Indicator: Universal}
	want := &Zone{
		Types: []LocalTimeType{est, edt},
		Transitions: []Transition{
			{At: 1143961200, Type: edt},
			{At: 1162101600, Type: est},
		},
		LeapSeconds: []LeapSecond{},
	}
	if diff := cmp.Diff(want, z, cmpopts.IgnoreFields(Zone{}, "Rule")); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, z.Rule)
	require.Equal(t, "EST", z.Rule.StdName)
	require.Equal(t, -18000, z.Rule.StdOffset)
	require.True(t, z.Rule.DST)
	require.Equal(t, "EDT", z.Rule.DSTName)
	require.Equal(t, -14400, z.Rule.DSTOffset)
}

func TestExtendedBlockSupersedesLegacy(t *testing.T) {
	// Nothing of the legacy block's bogus content may leak into the
	// assembled zone.
	z, err := Decode(easternV2())
	require.NoError(t, err)

	require.Len(t, z.Transitions, 2)
	require.Equal(t, int64(1143961200), z.Transitions[0].At)
	for _, lt := range z.Types {
		require.NotEqual(t, "XXX", lt.Name)
		require.NotEqual(t, -11111, lt.Offset)
	}
}

func TestEquivalentV1AndV2Decode(t *testing.T) {
	// A version 1 file and a version 2 file carrying the same data in
	// the extended block assemble into the same zone, apart from the
	// footer rule only version 2 can carry.
	v1 := cat(
		hdr(0, 0, 0, 0, 1, 2, 8),
		i32(1143961200),
		[]byte{1},
		ltt(-18000, 0, 0),
		ltt(-14400, 1, 4),
		[]byte("EST\x00EDT\x00"),
	)
	v2 := cat(
		hdr('2', 0, 0, 0, 0, 1, 4),
		ltt(0, 0, 0),
		[]byte("UTC\x00"),
		hdr('2', 0, 0, 0, 1, 2, 8),
		i64(1143961200),
		[]byte{1},
		ltt(-18000, 0, 0),
		ltt(-14400, 1, 4),
		[]byte("EST\x00EDT\x00"),
		[]byte("\n\n"),
	)

	z1, err := Decode(v1)
	require.NoError(t, err)
	z2, err := Decode(v2)
	require.NoError(t, err)

	if diff := cmp.Diff(z1, z2); diff != "" {
		t.Errorf("v1 and v2 zones differ (-v1 +v2):\n%s", diff)
	}
	require.Nil(t, z2.Rule, "empty footer must not produce a rule")
}

func TestDuplicateTransitionLaterRecordWins(t *testing.T) {
	buf := cat(
		hdr(0, 0, 0, 0, 3, 2, 8),
		i32(100), i32(100), i32(200),
		[]byte{0, 1, 0},
		ltt(-18000, 0, 0),
		ltt(-14400, 1, 4),
		[]byte("EST\x00EDT\x00"),
	)
	z, err := Decode(buf)
	require.NoError(t, err)

	require.Len(t, z.Transitions, 2)
	require.Equal(t, int64(100), z.Transitions[0].At)
	require.Equal(t, "EDT", z.Transitions[0].Type.Name, "later duplicate must win")
	require.Equal(t, int64(200), z.Transitions[1].At)
}

func TestOutOfOrderTransitionSupersedesEarlierRecords(t *testing.T) {
	// A record whose time falls at or before earlier entries discards
	// them, so the table stays strictly ascending for Lookup.
	buf := cat(
		hdr(0, 0, 0, 0, 3, 2, 8),
		i32(100), i32(200), i32(50),
		[]byte{0, 0, 1},
		ltt(-18000, 0, 0),
		ltt(-14400, 1, 4),
		[]byte("EST\x00EDT\x00"),
	)
	z, err := Decode(buf)
	require.NoError(t, err)

	require.Len(t, z.Transitions, 1)
	require.Equal(t, int64(50), z.Transitions[0].At)
	require.Equal(t, "EDT", z.Transitions[0].Type.Name)
	require.Equal(t, "EDT", z.Lookup(120).Name)

	// A time reaching back past only some entries discards just those.
	buf = cat(
		hdr(0, 0, 0, 0, 3, 2, 8),
		i32(100), i32(200), i32(150),
		[]byte{0, 1, 0},
		ltt(-18000, 0, 0),
		ltt(-14400, 1, 4),
		[]byte("EST\x00EDT\x00"),
	)
	z, err = Decode(buf)
	require.NoError(t, err)

	require.Len(t, z.Transitions, 2)
	require.Equal(t, int64(100), z.Transitions[0].At)
	require.Equal(t, int64(150), z.Transitions[1].At)
	require.Equal(t, "EST", z.Transitions[1].Type.Name)
	require.Equal(t, "EST", z.Lookup(120).Name)
}

func TestIndicatorClassification(t *testing.T) {
	buf := cat(
		hdr(0, 3, 3, 0, 0, 3, 12),
		ltt(0, 0, 0),
		ltt(3600, 0, 4),
		ltt(7200, 0, 8),
		[]byte("AAA\x00BBB\x00CCC\x00"),
		[]byte{0, 1, 1}, // standard/wall
		[]byte{0, 0, 1}, // UT/local
	)
	z, err := Decode(buf)
	require.NoError(t, err)

	require.Equal(t, Wall, z.Types[0].Indicator)
	require.Equal(t, Standard, z.Types[1].Indicator)
	require.Equal(t, Universal, z.Types[2].Indicator)
}

func TestLeapSeconds(t *testing.T) {
	buf := cat(
		hdr(0, 0, 0, 2, 0, 1, 4),
		ltt(0, 0, 0),
		[]byte("UTC\x00"),
		i32(78796800), i32(1), // 1972-07-01, +1
		i32(94694401), i32(2), // 1973-01-01, +2
	)
	z, err := Decode(buf)
	require.NoError(t, err)

	want := []LeapSecond{
		{Occur: 78796800, Corr: 1},
		{Occur: 94694401, Corr: 2},
	}
	if diff := cmp.Diff(want, z.LeapSeconds); diff != "" {
		t.Errorf("leap seconds mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeNoLocalTimeTypes(t *testing.T) {
	buf := hdr(0, 0, 0, 0, 0, 0, 0)
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrNoLocalTimeTypes)
}

func TestDecodeMalformedRule(t *testing.T) {
	buf := cat(
		hdr('2', 0, 0, 0, 0, 1, 4),
		ltt(0, 0, 0),
		[]byte("UTC\x00"),
		hdr('2', 0, 0, 0, 0, 1, 4),
		ltt(0, 0, 0),
		[]byte("UTC\x00"),
		[]byte("\nXY\n"), // designation too short
	)
	_, err := Decode(buf)
	require.Error(t, err)
}

func TestDecodeLimits(t *testing.T) {
	_, err := DecodeLimits(easternV2(), tzif.SensibleLimits())
	require.NoError(t, err)

	_, err = DecodeLimits(easternV2(), tzif.Limits{MaxTransitions: 1})
	require.ErrorIs(t, err, tzif.ErrCorruptHeader)
}

func TestDecodeOwnsItsData(t *testing.T) {
	buf := easternV2()
	z, err := Decode(buf)
	require.NoError(t, err)

	for i := range buf {
		buf[i] = 0xff
	}
	require.Equal(t, "EST", z.Types[0].Name)
	require.Equal(t, int64(1143961200), z.Transitions[0].At)
}
