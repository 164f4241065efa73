package filter

import (
	"net/netip"
	"testing"

	"github.com/bgpfix/ribdump/attrs"
	"github.com/bgpfix/ribdump/mrt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpressions(t *testing.T) {
	tests := []string{
		`af == ipv4/unicast`,
		"prefix == 192.168.0.0/24",
		"as_path[-1] == 65001",
		"community == 100:200",
		`!(ipv4 && (as_origin == 39282 || !aspath[0] < 1000) && com ~ "11:22 \"22:34")`,
		`peer_as == 65000 || peer_ip ~ 10.0.0.0/8`,
		`origin >= 64512 && med < 100`,
	}

	for ti, test := range tests {
		f, err := NewFilter(test)
		assert.NoError(t, err, "Test %d: %s", ti, test)
		t.Logf("#%d: %#v", ti, f)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		filter string
		err    error
	}{
		{"", ErrEmpty},
		{"   ", ErrEmpty},
		{"bogus == 1", ErrAttr},
		{"(ipv4", ErrUnmatched},
		{"ipv4)", ErrUnmatched},
		{"ipv4 ipv6", ErrLogic},
		{"ipv4 &&", ErrExpr},
		{"prefix ?? 1.0.0.0/8", ErrOp},
		{"med ~ 10", ErrOp},
		{"aspath[", ErrIndex},
	}
	for _, tt := range tests {
		_, err := NewFilter(tt.filter)
		require.ErrorIs(t, err, tt.err, tt.filter)
	}

	// semantic errors
	for _, s := range []string{
		"prefix == not-a-prefix",
		"nexthop < 10.0.0.0/8",
		"af == martian",
		"com == 1:2:3",
		"com_ext == 1",
		`aspath ~ "(("`,
	} {
		_, err := NewFilter(s)
		require.Error(t, err, s)
	}
}

func makeRoute(t *testing.T) *mrt.Route {
	// AS_PATH 3356 174 {13335 64512}, ORIGIN IGP, NEXT_HOP 192.0.2.1, MED 50, COMMUNITY 65000:100
	ats := []byte{
		0x40, 0x01, 0x01, 0x00,
		0x40, 0x02, 0x14,
		0x02, 0x02, 0x00, 0x00, 0x0d, 0x1c, 0x00, 0x00, 0x00, 0xae,
		0x01, 0x02, 0x00, 0x00, 0x34, 0x17, 0x00, 0x00, 0xfc, 0x00,
		0x40, 0x03, 0x04, 192, 0, 2, 1,
		0x80, 0x04, 0x04, 0x00, 0x00, 0x00, 0x32,
		0xc0, 0x08, 0x04, 0xfd, 0xe8, 0x00, 0x64,
	}
	var aa attrs.Attrs
	require.NoError(t, aa.Unmarshal(ats, attrs.Ctx{AS4: true, RIB: true}))

	return &mrt.Route{
		Prefix:    netip.MustParsePrefix("10.1.0.0/16"),
		PeerIndex: 0,
		Peer:      &mrt.Peer{Addr: netip.MustParseAddr("10.0.0.1"), AS: 65000},
		Attrs:     aa,
	}
}

func TestEval(t *testing.T) {
	rt := makeRoute(t)

	tests := []struct {
		filter string
		want   bool
	}{
		{"ipv4", true},
		{"ipv6", false},
		{"af == IPV4/UNICAST", true},
		{"!ipv6", true},

		{"prefix == 10.1.0.0/16", true},
		{"prefix == 10.1.0.0/17", false},
		{"prefix < 10.0.0.0/8", true},
		{"prefix <= 10.1.0.0/16", true},
		{"prefix < 10.1.0.0/16", false},
		{"prefix > 10.1.2.0/24", true},
		{"prefix ~ 10.1.2.3", true},
		{"prefix ~ 2001:db8::/32", false},

		{"aspath", true},
		{"aspath == 174", true},
		{"aspath[0] == 3356", true},
		{"as_peer == 174", false},
		{"as_upstream == 174", true},
		{"as_origin == 13335", true},
		{"as_origin == 64512", true},
		{"aspath[1] > 1000", false},
		{`aspath ~ "^3356,174"`, true},
		{"as_peer == 3356", true},
		{"aspath == 64512", true},
		{"aspath == 1", false},
		{"as_origin == 174", false},

		{"origin == 13335", true},
		{"origin == 64512", false}, // bogon
		{"origin > 13335", false},

		{"nexthop", true},
		{"nexthop == 192.0.2.1", true},
		{"nexthop ~ 192.0.2.0/24", true},
		{"nexthop > 192.0.2.0", true},
		{"nh == 2001:db8::1", false},

		{"com", true},
		{"com == 65000:100", true},
		{"com == 65000:101", false},
		{`com ~ "^65000:"`, true},
		{"com_ext", false},

		{"med == 50", true},
		{"med < 50", false},
		{"localpref", false},

		{"peer_as == 65000", true},
		{"peer_ip == 10.0.0.1", true},
		{"peer_ip ~ 192.168.0.0/16", false},

		{"ipv4 && as_origin == 13335 && med <= 50", true},
		{"ipv6 || peer_as == 65000", true},
		{"ipv6 || (peer_as == 1 || med > 10)", true},
		{"!(ipv4 && com == 65000:100)", false},
		{"ipv4 && (ipv6 || com != 65000:100)", false},
	}

	for _, cache := range []bool{false, true} {
		ev := NewEval(cache)
		ev.SetRoute(rt)
		for _, tt := range tests {
			f, err := NewFilter(tt.filter)
			require.NoError(t, err, tt.filter)
			require.Equal(t, tt.want, ev.Run(f), "%s (cache=%v)", tt.filter, cache)
		}
	}
}

func TestEval_NoPeer(t *testing.T) {
	rt := makeRoute(t)
	rt.Peer = nil

	ev := NewEval(false)
	ev.SetRoute(rt)
	for _, s := range []string{"peer_as == 65000", "peer_ip", "peer_as"} {
		f, err := NewFilter(s)
		require.NoError(t, err)
		require.False(t, ev.Run(f), s)
	}

	require.False(t, NewEval(false).Run(nil))
}

func TestEval_Communities(t *testing.T) {
	// COMMUNITY 65000:100 65001:200, EXT_COMMUNITY route-target 65000:100
	ats := []byte{
		0xc0, 0x08, 0x08, 0xfd, 0xe8, 0x00, 0x64, 0xfd, 0xe9, 0x00, 0xc8,
		0xc0, 0x10, 0x08, 0x00, 0x02, 0xfd, 0xe8, 0x00, 0x00, 0x00, 0x64,
	}
	var aa attrs.Attrs
	require.NoError(t, aa.Unmarshal(ats, attrs.Ctx{AS4: true, RIB: true}))
	rt := &mrt.Route{Prefix: netip.MustParsePrefix("192.0.2.0/24"), Attrs: aa}

	ev := NewEval(false)
	ev.SetRoute(rt)
	for _, tt := range []struct {
		filter string
		want   bool
	}{
		{`com ~ "^65000:"`, true},
		{`com ~ "^65001:200$"`, true},
		{`com ~ "^65000:200$"`, false},
		{`com ~ "^100"`, false},
		{`com ~ ":100$"`, true},
		{"com_ext", true},
		{`com_ext ~ "^0x0002fde8"`, true},
		{`com_ext ~ "^0x0003"`, false},
		{`com_ext ~ "00000064$"`, true},
	} {
		f, err := NewFilter(tt.filter)
		require.NoError(t, err, tt.filter)
		require.Equal(t, tt.want, ev.Run(f), tt.filter)
	}
}
