package namedgroups

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// S5 - supported-groups codec.
func TestS5_ExtensionCodec(t *testing.T) {
	ext := SupportedGroupsExtension{IDs: []uint16{23, 24, 25}}
	wire := ext.Marshal()
	require.Equal(t, []byte{0x00, 0x06, 0x00, 0x06, 0x00, 0x17, 0x00, 0x18, 0x00, 0x19}, wire)

	parsed, err := Parse(wire)
	require.NoError(t, err)
	require.Equal(t, []uint16{23, 24, 25}, parsed.IDs)
}

func TestExtension_UnknownIDRoundTrips(t *testing.T) {
	ext := SupportedGroupsExtension{IDs: []uint16{23, 0xFFFF, 24}}
	wire := ext.Marshal()
	parsed, err := Parse(wire)
	require.NoError(t, err)
	require.Equal(t, []uint16{23, 0xFFFF, 24}, parsed.IDs)
}

func TestExtension_RoundTripManyLengths(t *testing.T) {
	for n := 0; n < 40; n++ {
		ids := make([]uint16, n)
		for i := range ids {
			ids[i] = uint16(100 + i)
		}
		wire := SupportedGroupsExtension{IDs: ids}.Marshal()
		parsed, err := Parse(wire)
		require.NoError(t, err)
		require.Equal(t, ids, parsed.IDs)
	}
}

func TestParse_RejectsMismatchedLengths(t *testing.T) {
	_, err := Parse([]byte{0x00, 0x04, 0x00, 0x06, 0x00, 0x17, 0x00, 0x18, 0x00, 0x19})
	require.Error(t, err)
}

func TestParse_RejectsTrailingBytes(t *testing.T) {
	wire := SupportedGroupsExtension{IDs: []uint16{23}}.Marshal()
	_, err := Parse(append(wire, 0xAA))
	require.Error(t, err)
}

func TestNewRegistry_DefaultOrderIsNISTFirst(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	order := r.PreferenceOrder()
	require.Equal(t, GroupSECP256R1, order[0])
	require.Equal(t, GroupSECP384R1, order[1])
	require.Equal(t, GroupSECP521R1, order[2])
}

func TestNewRegistry_FIPSModeRestrictsToNIST(t *testing.T) {
	r, err := NewRegistry(WithFIPSMode(true))
	require.NoError(t, err)
	for _, g := range r.FIPSApproved() {
		require.True(t, g.IsFIPSApproved)
	}
	_, ok := r.Describe(GroupX25519)
	require.False(t, ok)
}

func TestNewRegistry_UnknownPreferredNameFails(t *testing.T) {
	_, err := NewRegistry(WithPreferredOrder([]string{"not-a-real-curve"}))
	require.Error(t, err)
}

// Invariant 7 - preference ordering.
func TestGetPreferredCurve_FollowsLocalOrderNotPeerOrder(t *testing.T) {
	r, err := NewRegistry(WithPreferredOrder([]string{"secp384r1", "secp256r1", "secp521r1"}))
	require.NoError(t, err)

	// Peer prefers 256 first, but local preference puts 384 first.
	peer := []uint16{GroupSECP256R1, GroupSECP384R1}
	got := r.GetPreferredCurve(peer, NoConstraints{})
	require.Equal(t, GroupSECP384R1, got)
}

func TestGetPreferredCurve_NoIntersectionReturnsNoGroup(t *testing.T) {
	r, err := NewRegistry(WithPreferredOrder([]string{"secp256r1"}))
	require.NoError(t, err)
	got := r.GetPreferredCurve([]uint16{0xFFFF}, NoConstraints{})
	require.Equal(t, NoGroup, got)
}

type denyGroup struct{ denied uint16 }

func (d denyGroup) PermitKeyAgreement(g NamedGroup) bool { return g.ID != d.denied }

func TestGetPreferredCurve_RespectsConstraints(t *testing.T) {
	r, err := NewRegistry(WithPreferredOrder([]string{"secp256r1", "secp384r1"}))
	require.NoError(t, err)
	peer := []uint16{GroupSECP256R1, GroupSECP384R1}
	got := r.GetPreferredCurve(peer, denyGroup{denied: GroupSECP256R1})
	require.Equal(t, GroupSECP384R1, got)
}
