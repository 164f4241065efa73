package attrs

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttrs_Unmarshal(t *testing.T) {
	buf := []byte{
		0x40, 0x01, 0x01, 0x02, // ORIGIN INCOMPLETE
		0x40, 0x02, 0x06, 0x02, 0x02, 0xFD, 0xE9, 0xFD, 0xEA, // AS_PATH 65001 65002
		0x40, 0x03, 0x04, 10, 0, 0, 1, // NEXT_HOP
		0x80, 0x04, 0x04, 0, 0, 0, 10, // MED
		0x40, 0x05, 0x04, 0, 0, 0, 100, // LOCAL_PREF
		0x40, 0x06, 0x00, // ATOMIC_AGGREGATE
		0xC0, 0x08, 0x04, 0xFD, 0xE9, 0x00, 0x01, // COMMUNITY
		0xC0, 0x08, 0x04, 0xFD, 0xE9, 0x00, 0x02, // duplicate COMMUNITY
	}

	var ats Attrs
	require.NoError(t, ats.Unmarshal(buf, ctx2))
	require.Len(t, ats, 8)

	// order and duplicates preserved
	codes := make([]Code, len(ats))
	for i := range ats {
		codes[i] = ats[i].Code()
	}
	require.Equal(t, []Code{
		ATTR_ORIGIN, ATTR_ASPATH, ATTR_NEXTHOP, ATTR_MED,
		ATTR_LOCALPREF, ATTR_AGGREGATE, ATTR_COMMUNITY, ATTR_COMMUNITY,
	}, codes)

	require.Equal(t, ORIGIN_INCOMPLETE, ats.Origin())
	require.Equal(t, uint32(65002), ats.Aspath().Origin())
	require.Equal(t, netip.MustParseAddr("10.0.0.1"), ats.NextHop())
	med, ok := ats.U32(ATTR_MED)
	require.True(t, ok)
	require.Equal(t, uint32(10), med)
	require.True(t, ats.Community().Has(65001, 1))
	require.True(t, ats.Has(ATTR_AGGREGATE))
	require.False(t, ats.Has(ATTR_MP_REACH))

	// byte-exact
	require.Equal(t, buf, ats.Marshal(nil, ctx2))
}

func TestAttrs_Errors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		err  error
	}{
		{"flags only", []byte{0x40}, ErrTruncated},
		{"no length", []byte{0x40, 0x01}, ErrTruncated},
		{"no ext length", []byte{0x50, 0x01, 0x00}, ErrTruncated},
		{"value overrun", []byte{0x40, 0x01, 0x02, 0x00}, ErrTruncated},
		{"bad origin", []byte{0x40, 0x01, 0x02, 0x00, 0x00}, ErrLength},
		{"bad nexthop", []byte{0x40, 0x03, 0x03, 1, 2, 3}, ErrLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ats Attrs
			require.ErrorIs(t, ats.Unmarshal(tt.buf, ctx2), tt.err)
		})
	}
}

func TestAttrs_ExtendedLength(t *testing.T) {
	// ORIGIN with a needlessly extended length must re-marshal identically
	buf := []byte{0x50, 0x01, 0x00, 0x01, 0x00}

	var ats Attrs
	require.NoError(t, ats.Unmarshal(buf, ctx2))
	require.Equal(t, buf, ats.Marshal(nil, ctx2))

	// long values get the extended flag
	com := &Community{CodeFlags: CodeFlags(ATTR_OPTIONAL|ATTR_TRANSITIVE)<<8 | CodeFlags(ATTR_COMMUNITY)}
	for i := range 100 {
		com.Add(65000, uint16(i))
	}
	out := com.Marshal(nil, ctx2)
	require.Equal(t, []byte{0xD0, 0x08, 0x01, 0x90}, out[:4])
}

func TestAttrs_ToJSON(t *testing.T) {
	buf := []byte{
		0x40, 0x01, 0x01, 0x00,
		0x40, 0x02, 0x04, 0x02, 0x01, 0xFD, 0xE9,
	}
	var ats Attrs
	require.NoError(t, ats.Unmarshal(buf, ctx2))
	require.Equal(t,
		`[{"code":"ORIGIN","flags":"T","value":"IGP"},{"code":"ASPATH","flags":"T","value":[65001]}]`,
		ats.String())
}
