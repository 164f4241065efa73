package afi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAS(t *testing.T) {
	as := NewASBytes([]byte{0x00, 0x02, 0x01})
	require.Equal(t, AS_IPV6_UNICAST, as)
	require.Equal(t, AFI_IPV6, as.Afi())
	require.Equal(t, SAFI_UNICAST, as.Safi())
	require.True(t, as.IsUnicastIP())
	require.Equal(t, []byte{0x00, 0x02, 0x01}, as.Marshal3(nil))
	require.Equal(t, `"IPV6/UNICAST"`, string(as.ToJSON(nil)))

	var as2 AS
	require.NoError(t, as2.FromJSON([]byte(`"ipv4/unicast"`)))
	require.Equal(t, AS_IPV4_UNICAST, as2)
	require.Error(t, as2.FromJSON([]byte(`"ipv4"`)))

	require.Equal(t, AS(0), NewASBytes([]byte{0, 1}))
}

func TestNames(t *testing.T) {
	require.Equal(t, "IPV4", AFI_IPV4.String())
	require.Equal(t, "AFI(99)", AFI(99).String())
	require.Equal(t, "SAFI(99)", SAFI(99).String())
	require.Equal(t, 32, AFI_IPV4.Bits())
	require.Equal(t, 128, AFI_IPV6.Bits())
	require.Equal(t, 0, AFI_L2VPN.Bits())

	v, err := SAFIString("flowspec")
	require.NoError(t, err)
	require.Equal(t, SAFI_FLOWSPEC, v)
	_, err = AFIString("nope")
	require.Error(t, err)
}
