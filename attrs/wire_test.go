package attrs

import (
	"net/netip"
	"testing"

	"github.com/bgpfix/ribdump/afi"
	"github.com/stretchr/testify/require"
)

var (
	ctx2 = Ctx{}
	ctx4 = Ctx{AS4: true}
	ctxR = Ctx{AS4: true, RIB: true}
)

func TestOrigin_Wire(t *testing.T) {
	at := NewAttr(ATTR_ORIGIN, ATTR_TRANSITIVE).(*Origin)

	err := at.Unmarshal([]byte{0x00}, ctx2)
	require.NoError(t, err)
	require.Equal(t, byte(0), at.Origin)
	require.Equal(t, `"IGP"`, string(at.ToJSON(nil)))

	buf := at.Marshal(nil, ctx2)
	require.Equal(t, []byte{0x40, 0x01, 0x01, 0x00}, buf)

	require.ErrorIs(t, at.Unmarshal([]byte{0, 0}, ctx2), ErrLength)
}

func TestU32_Wire(t *testing.T) {
	at := NewAttr(ATTR_MED, ATTR_OPTIONAL).(*U32)

	err := at.Unmarshal([]byte{0x00, 0x00, 0x03, 0xE8}, ctx2)
	require.NoError(t, err)
	require.Equal(t, uint32(1000), at.Val)

	buf := at.Marshal(nil, ctx2)
	require.Equal(t, []byte{0x80, 0x04, 0x04, 0x00, 0x00, 0x03, 0xE8}, buf)

	require.ErrorIs(t, at.Unmarshal([]byte{0, 0, 3}, ctx2), ErrLength)
}

func TestNextHop_Wire(t *testing.T) {
	at := NewAttr(ATTR_NEXTHOP, ATTR_TRANSITIVE).(*IP)

	err := at.Unmarshal([]byte{192, 0, 2, 1}, ctx2)
	require.NoError(t, err)
	require.Equal(t, netip.AddrFrom4([4]byte{192, 0, 2, 1}), at.Addr)

	buf := at.Marshal(nil, ctx2)
	require.Equal(t, []byte{0x40, 0x03, 0x04, 192, 0, 2, 1}, buf)

	require.ErrorIs(t, at.Unmarshal(make([]byte, 16), ctx2), ErrLength)
}

func TestAtomic_Wire(t *testing.T) {
	at := NewAttr(ATTR_AGGREGATE, ATTR_TRANSITIVE).(*Atomic)
	require.NoError(t, at.Unmarshal(nil, ctx2))
	require.Equal(t, []byte{0x40, 0x06, 0x00}, at.Marshal(nil, ctx2))
	require.ErrorIs(t, at.Unmarshal([]byte{1}, ctx2), ErrLength)
}

func TestAspath_Wire(t *testing.T) {
	at := NewAttr(ATTR_ASPATH, ATTR_TRANSITIVE).(*Aspath)

	err := at.Unmarshal([]byte{0x02, 0x02, 0xFD, 0xE9, 0xFD, 0xEA}, ctx2)
	require.NoError(t, err)
	require.Equal(t, []AspathSegment{
		{Type: AS_SEQUENCE, List: []uint32{65001, 65002}},
	}, at.Segments)
	require.Equal(t, 2, at.Len())

	buf := at.Marshal(nil, ctx2)
	require.Equal(t, []byte{0x40, 0x02, 0x06, 0x02, 0x02, 0xFD, 0xE9, 0xFD, 0xEA}, buf)
}

func TestAspath_AS4_Wire(t *testing.T) {
	at := NewAttr(ATTR_ASPATH, ATTR_TRANSITIVE).(*Aspath)

	err := at.Unmarshal([]byte{0x02, 0x01, 0x00, 0x00, 0xFD, 0xE9}, ctx4)
	require.NoError(t, err)
	require.Equal(t, uint32(65001), at.Segments[0].List[0])

	buf := at.Marshal(nil, ctx4)
	require.Equal(t, []byte{0x40, 0x02, 0x06, 0x02, 0x01, 0x00, 0x00, 0xFD, 0xE9}, buf)

	// same bytes, 2-byte context: two ASNs
	err = at.Unmarshal([]byte{0x02, 0x02, 0x00, 0x00, 0xFD, 0xE9}, ctx2)
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 65001}, at.Segments[0].List)
}

func TestAspath_Segments(t *testing.T) {
	at := NewAttr(ATTR_ASPATH, ATTR_TRANSITIVE).(*Aspath)
	buf := []byte{
		0x02, 0x02, 0x00, 0x00, 0xFD, 0xE9, 0x00, 0x00, 0x00, 0x64, // seq 65001 100
		0x03, 0x01, 0x00, 0x00, 0xFF, 0x00, // confed seq 65280
		0x02, 0x00, // empty seq
		0x01, 0x02, 0x00, 0x00, 0x00, 0xC8, 0x00, 0x00, 0x01, 0x2C, // set 200 300
	}
	require.NoError(t, at.Unmarshal(buf, ctx4))
	require.Len(t, at.Segments, 4)
	require.Equal(t, AS_CONFED_SEQUENCE, at.Segments[1].Type)
	require.Empty(t, at.Segments[2].List)
	require.True(t, at.Segments[3].IsSet())
	require.Equal(t, `[65001,100,{"confed_seq":[65280]},[200,300]]`, at.String())
	require.Equal(t, 3, at.Len())
	require.True(t, at.HasOrigin(300))
	require.False(t, at.HasOrigin(100))
	require.True(t, at.HasAsn(65280))
	require.Equal(t, uint32(0), at.Origin())
	require.Equal(t, uint32(65001), at.First())

	// byte-exact
	require.Equal(t, buf, at.Marshal(nil, ctx4)[3:])
}

func TestAspath_Truncated(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"no count", []byte{0x02}},
		{"count too big", []byte{0x02, 0x03, 0xFD, 0xE9, 0xFD, 0xEA}},
		{"half asn", []byte{0x02, 0x01, 0xFD}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := NewAttr(ATTR_ASPATH, ATTR_TRANSITIVE).(*Aspath)
			require.ErrorIs(t, at.Unmarshal(tt.buf, ctx2), ErrTruncated)
		})
	}
}

func TestAggregator_Wire(t *testing.T) {
	at := NewAttr(ATTR_AGGREGATOR, ATTR_OPTIONAL|ATTR_TRANSITIVE).(*Aggregator)

	err := at.Unmarshal([]byte{0xFD, 0xE9, 10, 0, 0, 1}, ctx2)
	require.NoError(t, err)
	require.Equal(t, uint32(65001), at.ASN)
	require.False(t, at.AS4)
	require.Equal(t, netip.MustParseAddr("10.0.0.1"), at.Addr)
	require.Equal(t, []byte{0xC0, 0x07, 0x06, 0xFD, 0xE9, 10, 0, 0, 1}, at.Marshal(nil, ctx2))
	require.Equal(t, `{"asn":65001,"addr":"10.0.0.1"}`, string(at.ToJSON(nil)))

	err = at.Unmarshal([]byte{0x00, 0x03, 0x0D, 0x40, 10, 0, 0, 2}, ctx4)
	require.NoError(t, err)
	require.True(t, at.AS4)
	require.Equal(t, uint32(200000), at.ASN)
	require.Equal(t, []byte{0xC0, 0x07, 0x08, 0x00, 0x03, 0x0D, 0x40, 10, 0, 0, 2}, at.Marshal(nil, ctx4))

	require.ErrorIs(t, at.Unmarshal([]byte{1, 2, 3}, ctx4), ErrLength)
}

func TestCommunity_Wire(t *testing.T) {
	at := NewAttr(ATTR_COMMUNITY, ATTR_OPTIONAL|ATTR_TRANSITIVE).(*Community)

	err := at.Unmarshal([]byte{0xFD, 0xE9, 0x00, 0x64, 0xFF, 0xFF, 0xFF, 0x01}, ctx2)
	require.NoError(t, err)
	require.Equal(t, 2, at.Len())
	require.True(t, at.Has(65001, 100))
	require.Equal(t, `["65001:100","65535:65281"]`, string(at.ToJSON(nil)))
	require.Equal(t, []byte{0xC0, 0x08, 0x08, 0xFD, 0xE9, 0x00, 0x64, 0xFF, 0xFF, 0xFF, 0x01}, at.Marshal(nil, ctx2))

	err = at.Unmarshal([]byte{0xFD, 0xE9, 0x00, 0x64, 0xFF}, ctx2)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestExtCom_Wire(t *testing.T) {
	at := NewAttr(ATTR_EXT_COMMUNITY, ATTR_OPTIONAL|ATTR_TRANSITIVE).(*ExtCom)
	raw := []byte{0x00, 0x02, 0xFD, 0xE9, 0x00, 0x00, 0x00, 0x64}

	require.NoError(t, at.Unmarshal(raw, ctx2))
	require.Equal(t, []uint64{0x0002FDE900000064}, at.Values())
	require.Equal(t, `["0x0002fde900000064"]`, string(at.ToJSON(nil)))
	require.Equal(t, append([]byte{0xC0, 0x10, 0x08}, raw...), at.Marshal(nil, ctx2))

	// not owned by the input
	raw[0] = 0xff
	require.Equal(t, byte(0x00), at.Raw[0])
}

func TestRaw_Wire(t *testing.T) {
	// unknown code 99, odd flags, extended length
	buf := []byte{0xF0, 99, 0x00, 0x03, 1, 2, 3}

	var ats Attrs
	require.NoError(t, ats.Unmarshal(buf, ctx4))
	require.Len(t, ats, 1)

	raw, ok := ats[0].(*Raw)
	require.True(t, ok)
	require.Equal(t, Code(99), raw.Code())
	require.Equal(t, Flags(0xF0), raw.Flags())
	require.Equal(t, []byte{1, 2, 3}, raw.Raw)
	require.Equal(t, buf, ats.Marshal(nil, ctx4))
	require.Equal(t, `[{"code":"ATTR_99","flags":"OTPX","value":"0x010203"}]`, ats.String())
}

func TestMP_Wire(t *testing.T) {
	buf := []byte{
		0x00, 0x02, 0x01, // IPv6 unicast
		0x10, // NH len
		0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
		0x00,                         // reserved
		0x20, 0x20, 0x01, 0x0d, 0xb8, // 2001:db8::/32
		0x30, 0x20, 0x01, 0x0d, 0xb8, 0x00, 0x01, // 2001:db8:1::/48
	}
	at := NewAttr(ATTR_MP_REACH, ATTR_OPTIONAL).(*MP)
	require.NoError(t, at.Unmarshal(buf, ctx4))
	require.False(t, at.Short)
	require.Equal(t, afi.AS_IPV6_UNICAST, at.AS)
	require.Equal(t, netip.MustParseAddr("2001:db8::1"), at.NextHop)
	require.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("2001:db8::/32"),
		netip.MustParsePrefix("2001:db8:1::/48"),
	}, at.Prefixes)
	require.Equal(t, append([]byte{0x80, 0x0E, byte(len(buf))}, buf...), at.Marshal(nil, ctx4))
	require.Equal(t,
		`{"af":"IPV6/UNICAST","nexthop":"2001:db8::1","prefixes":["2001:db8::/32","2001:db8:1::/48"]}`,
		string(at.ToJSON(nil)))

	// truncated prefix inside the attribute
	require.ErrorIs(t, at.Unmarshal(buf[:len(buf)-1], ctx4), ErrTruncated)
}

func TestMP_HostBits(t *testing.T) {
	buf := []byte{
		0x00, 0x01, 0x01, // IPv4 unicast
		0x04, 192, 0, 2, 1, // NH
		0x00,                   // reserved
		0x17, 0x0a, 0x00, 0x01, // 10.0.1.0/23: host bit set
	}
	at := NewAttr(ATTR_MP_REACH, ATTR_OPTIONAL).(*MP)
	require.NoError(t, at.Unmarshal(buf, ctx4))
	require.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/23")}, at.Prefixes)

	// prefixes are masked, so host bits do not survive Marshal
	exp := append([]byte{0x80, 0x0E, byte(len(buf))}, buf...)
	exp[len(exp)-1] = 0x00
	require.Equal(t, exp, at.Marshal(nil, ctx4))
}

func TestMP_Abbreviated(t *testing.T) {
	buf := []byte{
		0x20, // NH len 32: global + link-local
		0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
		0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
	}
	at := NewAttr(ATTR_MP_REACH, ATTR_OPTIONAL).(*MP)
	require.NoError(t, at.Unmarshal(buf, ctxR))
	require.True(t, at.Short)
	require.Equal(t, netip.MustParseAddr("2001:db8::1"), at.NextHop)
	require.Equal(t, netip.MustParseAddr("fe80::1"), at.LinkLocal)
	require.Equal(t, append([]byte{0x80, 0x0E, byte(len(buf))}, buf...), at.Marshal(nil, ctxR))
}

func TestMP_OtherFamily(t *testing.T) {
	buf := []byte{
		0x00, 0x01, 0x85, // IPv4 flowspec
		0x00,                   // no NH
		0x00,                   // reserved
		0x03, 0x01, 0x18, 0x0a, // opaque NLRI
	}
	at := NewAttr(ATTR_MP_REACH, ATTR_OPTIONAL).(*MP)
	require.NoError(t, at.Unmarshal(buf, ctx4))
	require.Nil(t, at.Prefixes)
	require.Equal(t, []byte{0x03, 0x01, 0x18, 0x0a}, at.Data)
	require.Equal(t, append([]byte{0x80, 0x0E, byte(len(buf))}, buf...), at.Marshal(nil, ctx4))
}
