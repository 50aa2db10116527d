package ltp

// PropType is the wPropType half of a MAPI property tag, per MS-OXCDATA
// Ptyp* values. Widths below mirror the table used across the pack's
// other MAPI-property reader (fixedPropSize in the TNEF/MAPI decoder):
// every fixed type up to 8 bytes wide is stored inline in a PC/TC slot,
// everything else (PtypGUID and all variable-length types) is stored via an
// HNID reference resolved through the heap or the owning node's sub-node
// tree.
type PropType uint16

const (
	PtypInteger16   PropType = 0x0002
	PtypInteger32   PropType = 0x0003
	PtypFloating32  PropType = 0x0004
	PtypFloating64  PropType = 0x0005
	PtypCurrency    PropType = 0x0006
	PtypFloatingTime PropType = 0x0007
	PtypErrorCode   PropType = 0x000A
	PtypBoolean     PropType = 0x000B
	PtypInteger64   PropType = 0x0014
	PtypString8     PropType = 0x001E
	PtypString      PropType = 0x001F
	PtypTime        PropType = 0x0040
	PtypGUID        PropType = 0x0048
	PtypServerID    PropType = 0x00FB
	PtypObject      PropType = 0x000D
	PtypBinary      PropType = 0x0102
	PtypMultiInt32  PropType = 0x1003
	PtypMultiString PropType = 0x101F
	PtypMultiBinary PropType = 0x1102
)

// fixedWidth returns the on-disk width of a fixed-size property value and
// whether it fits entirely inside a PC/TC value slot (<=8 bytes) rather
// than behind an HNID reference. A PC value slot is 8 bytes wide; a TC
// column's slot is exactly its own cbData, which for a fixed type always
// equals width. Only types wider than a slot (currently just PtypGUID's
// 16 bytes) are stored behind a reference.
func fixedWidth(pt PropType) (width int, inline bool, isFixed bool) {
	switch pt {
	case PtypInteger16, PtypBoolean:
		return 2, true, true
	case PtypInteger32, PtypFloating32, PtypErrorCode:
		return 4, true, true
	case PtypFloating64, PtypCurrency, PtypFloatingTime, PtypInteger64, PtypTime:
		return 8, true, true
	case PtypGUID:
		return 16, false, true
	default:
		return 0, false, false
	}
}
