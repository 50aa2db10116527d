package ltp

import "encoding/binary"

// heapBuilder assembles a single-page Heap-on-Node stream by hand, the way
// production PC/TC streams are laid out: a fixed header, a run of
// variable-length allocations, and a trailing page map of their offsets.
type heapBuilder struct {
	clientSig byte
	userRoot  int // 1-based allocation index, filled in after adding it
	allocs    [][]byte
}

func newHeapBuilder(clientSig byte) *heapBuilder {
	return &heapBuilder{clientSig: clientSig}
}

// add appends an allocation and returns its HID.
func (b *heapBuilder) add(data []byte) HID {
	b.allocs = append(b.allocs, data)
	return HID(uint32(len(b.allocs)) << 5)
}

func (b *heapBuilder) setUserRoot(hid HID) { b.userRoot = int(hid) }

func (b *heapBuilder) build() []byte {
	const headerSize = 10
	offsets := make([]uint16, len(b.allocs)+1)
	cur := uint16(headerSize)
	offsets[0] = cur
	body := make([]byte, 0, 256)
	for i, a := range b.allocs {
		body = append(body, a...)
		cur += uint16(len(a))
		offsets[i+1] = cur
	}
	pageMapOff := headerSize + len(body)

	out := make([]byte, pageMapOff+4+len(offsets)*2)
	out[0] = heapSignature
	out[1] = b.clientSig
	binary.LittleEndian.PutUint32(out[2:6], uint32(b.userRoot))
	binary.LittleEndian.PutUint16(out[8:10], uint16(pageMapOff))
	copy(out[headerSize:], body)
	binary.LittleEndian.PutUint16(out[pageMapOff:], uint16(len(b.allocs)))
	binary.LittleEndian.PutUint16(out[pageMapOff+2:], 0)
	for i, o := range offsets {
		binary.LittleEndian.PutUint16(out[pageMapOff+4+i*2:], o)
	}
	return out
}

// bthHeader builds an 8-byte BTH root allocation.
func bthHeader(cbKey, cbEnt int, root HID) []byte {
	out := make([]byte, bthHeaderSize)
	out[0] = 0xB5
	out[1] = byte(cbKey)
	out[2] = byte(cbEnt)
	out[3] = 0 // leaf-only trees in these fixtures
	binary.LittleEndian.PutUint32(out[4:8], uint32(root))
	return out
}

// pcEntry builds one PC leaf entry: PropID(2) + PropType(2) + an 8-byte
// value slot holding value in its low 4 bytes (for <=4-byte inline types
// and HNID references, zero-extended above).
func pcEntry(propID uint16, pt PropType, value uint32) []byte {
	return pcEntryWide(propID, pt, uint64(value))
}

// pcEntryWide builds one PC leaf entry whose 8-byte value slot holds the
// full 64-bit value, for the 8-byte-wide fixed types stored inline.
func pcEntryWide(propID uint16, pt PropType, value uint64) []byte {
	out := make([]byte, 12)
	binary.LittleEndian.PutUint16(out[0:2], propID)
	binary.LittleEndian.PutUint16(out[2:4], uint16(pt))
	binary.LittleEndian.PutUint64(out[4:12], value)
	return out
}

// tcInfoHeader builds a TCINFO allocation.
func tcInfoHeader(cCols int, cbRow uint16, hidRowIndex HID, hnidRows uint32) []byte {
	out := make([]byte, tcInfoHeaderSize)
	out[0] = 0x7C
	out[1] = byte(cCols)
	binary.LittleEndian.PutUint16(out[2:4], cbRow)
	binary.LittleEndian.PutUint32(out[4:8], uint32(hidRowIndex))
	binary.LittleEndian.PutUint32(out[8:12], hnidRows)
	return out
}

// tcColumnDesc builds one 8-byte column descriptor. existBit is the index
// into the row's trailing cell-existence bitmap that gates this column.
func tcColumnDesc(tag uint32, ibData uint16, cbData uint8, existBit uint8) []byte {
	out := make([]byte, tcColumnWidth)
	binary.LittleEndian.PutUint32(out[0:4], tag)
	binary.LittleEndian.PutUint16(out[4:6], ibData)
	out[6] = cbData
	out[7] = existBit
	return out
}

// rowIndexEntry builds one row-index BTH leaf entry: RowID(4) + RowIndex(4).
func rowIndexEntry(rowID, rowIndex uint32) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:4], rowID)
	binary.LittleEndian.PutUint32(out[4:8], rowIndex)
	return out
}
