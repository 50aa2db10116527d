package msgstore

import (
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
	"golang.org/x/text/encoding/unicode"
)

var namedPropStringDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// namedPropertyKey identifies a named property independent of which
// message store assigned it a numeric id: either a (GUID, numeric LID)
// pair or a (GUID, string name) pair.
type namedPropertyKey struct {
	guid uuid.UUID
	lid  uint32 // valid when isString is false
	name string // valid when isString is true
	isString bool
}

// namedPropertyMap resolves the assigned property ids (0x8000 and up) a
// store's NID_NAME_TO_ID_MAP session hands out back to the (GUID, id-or-
// name) pair the named property actually represents.
type namedPropertyMap struct {
	byAssignedID map[uint16]namedPropertyKey
}

const nameidEntryWidth = 8

// psMAPI and psPublicStrings are the two well-known property sets that
// the entry stream's wGuid field can reference directly (0 and 1) without
// an index into the GUID stream.
var (
	psMAPI          = uuid.MustParse("00020328-0000-0000-C000-000000000046")
	psPublicStrings = uuid.MustParse("00020329-0000-0000-C000-000000000046")
)

// loadNamedProperties decodes the three named-property-map streams
// (GUID, Entry, String) held in NID_NAME_TO_ID_MAP's own PropertyContext.
func loadNamedProperties(f *File) (*namedPropertyMap, error) {
	props, err := f.props(format.NID(format.NIDNameToIDMap))
	if err != nil {
		return nil, err
	}

	guidStream := props.Binary(format.PropTagNameidStreamGuid)
	entryStream := props.Binary(format.PropTagNameidStreamEntry)
	stringStream := props.Binary(format.PropTagNameidStreamString)

	if len(guidStream)%16 != 0 {
		return nil, pkgerr.New(pkgerr.Corrupt, "named property guid stream misaligned")
	}
	guids := make([]uuid.UUID, len(guidStream)/16)
	for i := range guids {
		g, err := uuid.FromBytes(reorderGUID(guidStream[i*16 : i*16+16]))
		if err != nil {
			return nil, pkgerr.Wrap(pkgerr.Corrupt, "named property guid", err)
		}
		guids[i] = g
	}

	if len(entryStream)%nameidEntryWidth != 0 {
		return nil, pkgerr.New(pkgerr.Corrupt, "named property entry stream misaligned")
	}
	m := &namedPropertyMap{byAssignedID: map[uint16]namedPropertyKey{}}
	for off := 0; off+nameidEntryWidth <= len(entryStream); off += nameidEntryWidth {
		entry := entryStream[off : off+nameidEntryWidth]
		kindAndOffset := binary.LittleEndian.Uint32(entry[0:4])
		wGuid := binary.LittleEndian.Uint16(entry[4:6])
		wPropIdx := binary.LittleEndian.Uint16(entry[6:8])

		g, err := resolveNamedPropGUID(wGuid, guids)
		if err != nil {
			return nil, err
		}
		assignedID := uint16(0x8000) + (wPropIdx >> 1)

		key := namedPropertyKey{guid: g}
		if wPropIdx&1 != 0 {
			name, err := readNamedPropString(stringStream, kindAndOffset)
			if err != nil {
				return nil, err
			}
			key.isString = true
			key.name = name
		} else {
			key.lid = kindAndOffset
		}
		m.byAssignedID[assignedID] = key
	}
	return m, nil
}

func resolveNamedPropGUID(wGuid uint16, guids []uuid.UUID) (uuid.UUID, error) {
	switch wGuid {
	case 0:
		return psMAPI, nil
	case 1:
		return psPublicStrings, nil
	default:
		idx := int(wGuid) - 2
		if idx < 0 || idx >= len(guids) {
			return uuid.UUID{}, pkgerr.New(pkgerr.Corrupt, "named property guid index out of range")
		}
		return guids[idx], nil
	}
}

// readNamedPropString reads the length-prefixed UTF-16LE string at byte
// offset off within the string stream: a 4-byte length in bytes followed
// by that many bytes of UTF-16LE text.
func readNamedPropString(stream []byte, off uint32) (string, error) {
	if uint64(off)+4 > uint64(len(stream)) {
		return "", pkgerr.New(pkgerr.Truncated, "named property string length")
	}
	n := binary.LittleEndian.Uint32(stream[off : off+4])
	start := off + 4
	if uint64(start)+uint64(n) > uint64(len(stream)) {
		return "", pkgerr.New(pkgerr.Truncated, "named property string body")
	}
	decoded, err := namedPropStringDecoder.Bytes(stream[start : start+n])
	if err != nil {
		return "", pkgerr.Wrap(pkgerr.Corrupt, "named property string decode", err)
	}
	return string(decoded), nil
}

// reorderGUID converts a little-endian-encoded GUID (as MS-PST stores it:
// Data1/Data2/Data3 little-endian, Data4 as-is) into the big-endian byte
// order uuid.FromBytes expects.
func reorderGUID(b []byte) []byte {
	out := make([]byte, 16)
	out[0], out[1], out[2], out[3] = b[3], b[2], b[1], b[0]
	out[4], out[5] = b[5], b[4]
	out[6], out[7] = b[7], b[6]
	copy(out[8:], b[8:16])
	return out
}

// Lookup resolves an assigned property id (as stored in a PC/TC, high 16
// bits of an extended PidTag) back to its named-property identity. Returns
// ok=false for ids below 0x8000, which are well-known tags rather than
// named properties, or for assigned ids this store never registered.
func (m *namedPropertyMap) Lookup(assignedID uint16) (namedPropertyKey, bool) {
	if m == nil || assignedID < 0x8000 {
		return namedPropertyKey{}, false
	}
	key, ok := m.byAssignedID[assignedID]
	return key, ok
}
