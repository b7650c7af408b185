package namedgroups

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
)

// SupportedGroupsExtension is the ordered sequence of group ids carried
// by the supported_groups extension, most preferred first. Unknown ids
// are preserved on parse and simply ignored during selection.
//
// Wire form (spec §3/§6, pinned by the worked example in spec §8 S5):
//
//	uint16 total_len   (= 2 * N, the list's byte length)
//	uint16 list_len    (= 2 * N, repeated - the inner list framing)
//	uint16 ids[N]
//
// For ids [23,24,25] this is 00 06 00 06 00 17 00 18 00 19: both length
// fields carry the list's byte length (6), not list_len+2. This repeats
// the length rather than nesting a +2 outer total, matching the spec's
// own worked example exactly; see DESIGN.md for the call on this.
type SupportedGroupsExtension struct {
	IDs []uint16
}

// Marshal encodes the wire form described above.
func (e SupportedGroupsExtension) Marshal() []byte {
	var b cryptobyte.Builder
	listLen := uint16(2 * len(e.IDs))
	b.AddUint16(listLen)
	b.AddUint16(listLen)
	for _, id := range e.IDs {
		b.AddUint16(id)
	}
	return b.BytesOrPanic()
}

// Parse decodes the wire form described above, validating that both
// length fields match, that the list length is even, and that no
// trailing bytes remain. Unknown/unassigned ids are kept as-is.
func Parse(wire []byte) (SupportedGroupsExtension, error) {
	s := cryptobyte.String(wire)

	var totalLen, listLen uint16
	if !s.ReadUint16(&totalLen) {
		return SupportedGroupsExtension{}, errors.New("namedgroups: truncated total_len")
	}
	if !s.ReadUint16(&listLen) {
		return SupportedGroupsExtension{}, errors.New("namedgroups: truncated list_len")
	}
	if totalLen != listLen {
		return SupportedGroupsExtension{}, errors.Errorf("namedgroups: total_len %d != list_len %d", totalLen, listLen)
	}
	if listLen%2 != 0 {
		return SupportedGroupsExtension{}, errors.New("namedgroups: odd list_len")
	}

	var ids []uint16
	for i := 0; i < int(listLen)/2; i++ {
		var id uint16
		if !s.ReadUint16(&id) {
			return SupportedGroupsExtension{}, errors.New("namedgroups: truncated id list")
		}
		ids = append(ids, id)
	}
	if !s.Empty() {
		return SupportedGroupsExtension{}, errors.New("namedgroups: trailing bytes after extension")
	}
	return SupportedGroupsExtension{IDs: ids}, nil
}
