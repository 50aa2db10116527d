package msgstore

import (
	"encoding/binary"
	"sort"

	"github.com/outlookvault/pstkit/internal/cipher"
	"github.com/outlookvault/pstkit/internal/crc32pst"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/ltp"
	"github.com/outlookvault/pstkit/ndb"
)

// storeFixture assembles a synthetic Unicode-variant PST byte image in
// memory, the way ndb's own fixture_test.go builds one at the NDB layer —
// this copy drives the assembly one layer higher, through the public
// msgstore API, so it needs its own copies of the page/block layout rules
// (ndb's builder is unexported to that package). It claims no byte-for-byte
// fidelity with a real PST, only internal consistency with this repo's own
// encode/decode rules.
const (
	storePageSize       = format.PageOrBlockSizeUnit
	storePageHeaderSize = 4
	storeSubNodeHdrSize = 4
	storeNBTEntryWidth  = 32 // NID(8) + DataBID(8) + SubBID(8) + ParentID(8)
	storeBBTEntryWidth  = 24 // BID(8) + Offset(8) + Size(4) + RefCount(4)
	storeSubNodeEntSize = 24 // NID(8) + DataBID(8) + SubBID(8)
)

type storeFixture struct {
	data   []byte
	cursor int
}

func newStoreFixture() *storeFixture {
	return &storeFixture{data: make([]byte, format.HeaderTotalSizeUnicode), cursor: format.HeaderTotalSizeUnicode}
}

func (f *storeFixture) place(off int, b []byte) {
	end := off + len(b)
	if end > len(f.data) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[off:end], b)
}

func (f *storeFixture) alloc(n int) int {
	off := f.cursor
	f.cursor += n
	return off
}

// writeHeader fills in the header bytes reserved at offset 0 by
// newStoreFixture, once the NBT/BBT roots are known.
func (f *storeFixture) writeHeader(nbtRoot, bbtRoot uint64) {
	b := make([]byte, format.HeaderTotalSizeUnicode)
	copy(b[format.HeaderMagicOffset:], format.HeaderMagic)
	binary.LittleEndian.PutUint16(b[format.HeaderVersionOffset:], format.VerUnicode2003)
	binary.LittleEndian.PutUint16(b[format.HeaderVersionClientOff:], format.VerUnicode2003)
	b[format.HeaderCryptMethodOffset] = format.CryptMethodNone

	base := format.HeaderSize64UniRootOff
	binary.LittleEndian.PutUint64(b[base+format.RootFileEOFOffsetUnicode:], uint64(len(f.data)))
	binary.LittleEndian.PutUint64(b[base+format.RootNBTRootOffsetUnicode:], nbtRoot)
	binary.LittleEndian.PutUint64(b[base+format.RootBBTRootOffsetUnicode:], bbtRoot)

	region := b[format.HeaderMagicClientOffset:format.HeaderCRCPartialRegionEnd]
	crc := crc32pst.Checksum(region)
	binary.LittleEndian.PutUint32(b[format.HeaderCRCPartialOffset:], crc)

	f.place(0, b)
}

type storeBBTEntry struct {
	BID    format.BID
	Offset uint64
	Size   uint32
}

// writeDataBlock allocates and writes a leaf data block holding payload,
// returning the Block BTree entry a BBT page needs to reference it. bid
// must be even: an odd low bit marks an internal (XBLOCK) block, which
// none of these fixtures use.
func (f *storeFixture) writeDataBlock(bid format.BID, payload []byte) storeBBTEntry {
	aligned := format.AlignBlock(len(payload))
	off := f.alloc(aligned + format.TrailerSizeUnicode)

	region := make([]byte, aligned)
	copy(region, payload)
	cipher.Encode(region[:len(payload)], bid, cipher.MethodNone)
	crc := crc32pst.Checksum(region[:len(payload)])

	block := make([]byte, aligned+format.TrailerSizeUnicode)
	copy(block, region)
	trailer := block[aligned:]
	binary.LittleEndian.PutUint16(trailer[0:], uint16(len(payload)))
	binary.LittleEndian.PutUint16(trailer[2:], ndb.SigDataLeaf)
	binary.LittleEndian.PutUint32(trailer[4:], crc)
	binary.LittleEndian.PutUint64(trailer[8:], uint64(bid))

	f.place(off, block)
	return storeBBTEntry{BID: bid, Offset: uint64(off), Size: uint32(len(payload))}
}

type storeSubNodeEntry struct {
	NID     format.NID
	DataBID format.BID
}

// writeSubNodeLeaf allocates and writes a leaf sub-node block listing
// (nid, dataBID) pairs, the private per-owner index attachments and
// recipients are threaded through.
func (f *storeFixture) writeSubNodeLeaf(bid format.BID, entries []storeSubNodeEntry) storeBBTEntry {
	payload := make([]byte, storeSubNodeHdrSize+len(entries)*storeSubNodeEntSize)
	binary.LittleEndian.PutUint16(payload[2:], uint16(len(entries)))
	for i, e := range entries {
		base := storeSubNodeHdrSize + i*storeSubNodeEntSize
		binary.LittleEndian.PutUint64(payload[base:], uint64(e.NID))
		binary.LittleEndian.PutUint64(payload[base+8:], uint64(e.DataBID))
		binary.LittleEndian.PutUint64(payload[base+16:], 0) // no nested sub-node in these fixtures
	}
	return f.writeDataBlock(bid, payload)
}

type storeNBTEntry struct {
	NID     format.NID
	DataBID format.BID
	SubBID  format.BID
}

// writeNBTPage allocates a single-page (leaf) Node BTree and returns its
// file offset, for the header's NBT root field.
func (f *storeFixture) writeNBTPage(entries []storeNBTEntry) uint64 {
	sort.Slice(entries, func(i, j int) bool { return entries[i].NID < entries[j].NID })
	body := make([]byte, len(entries)*storeNBTEntryWidth)
	for i, e := range entries {
		base := i * storeNBTEntryWidth
		binary.LittleEndian.PutUint64(body[base:], uint64(e.NID))
		binary.LittleEndian.PutUint64(body[base+8:], uint64(e.DataBID))
		binary.LittleEndian.PutUint64(body[base+16:], uint64(e.SubBID))
		binary.LittleEndian.PutUint64(body[base+24:], 0)
	}
	return uint64(f.writePage(ndb.SigNBTPage, len(entries), body))
}

// writeBBTPage allocates a single-page (leaf) Block BTree and returns its
// file offset, for the header's BBT root field.
func (f *storeFixture) writeBBTPage(entries []storeBBTEntry) uint64 {
	sort.Slice(entries, func(i, j int) bool { return entries[i].BID < entries[j].BID })
	body := make([]byte, len(entries)*storeBBTEntryWidth)
	for i, e := range entries {
		base := i * storeBBTEntryWidth
		binary.LittleEndian.PutUint64(body[base:], uint64(e.BID))
		binary.LittleEndian.PutUint64(body[base+8:], e.Offset)
		binary.LittleEndian.PutUint32(body[base+16:], e.Size)
		binary.LittleEndian.PutUint32(body[base+20:], 1)
	}
	return uint64(f.writePage(ndb.SigBBTPage, len(entries), body))
}

func (f *storeFixture) writePage(sig uint16, cEnt int, body []byte) int {
	off := f.alloc(storePageSize)
	page := make([]byte, storePageSize)
	binary.LittleEndian.PutUint16(page[0:], uint16(cEnt))
	copy(page[storePageHeaderSize:], body)

	trailerOff := storePageSize - format.TrailerSizeUnicode
	crc := crc32pst.Checksum(page[:trailerOff])
	trailer := page[trailerOff:]
	binary.LittleEndian.PutUint16(trailer[0:], uint16(trailerOff))
	binary.LittleEndian.PutUint16(trailer[2:], sig)
	binary.LittleEndian.PutUint32(trailer[4:], crc)

	f.place(off, page)
	return off
}

// hpBuilder assembles a single-page Heap-on-Node stream by hand, mirroring
// the shape ltp's own (package-private) fixture builder produces.
type hpBuilder struct {
	clientSig byte
	userRoot  int
	allocs    [][]byte
}

func newHPBuilder(clientSig byte) *hpBuilder { return &hpBuilder{clientSig: clientSig} }

// add stores data as a new heap allocation and returns its HID. Heap
// allocation indices are 1-based, packed into the HID's bits 5-15.
func (b *hpBuilder) add(data []byte) ltp.HID {
	b.allocs = append(b.allocs, data)
	return ltp.HID(uint32(len(b.allocs)) << 5)
}

func (b *hpBuilder) setUserRoot(hid ltp.HID) { b.userRoot = int(hid) }

func (b *hpBuilder) build() []byte {
	const headerSize = 10
	offsets := make([]uint16, len(b.allocs)+1)
	cur := uint16(headerSize)
	offsets[0] = cur
	var body []byte
	for i, a := range b.allocs {
		body = append(body, a...)
		cur += uint16(len(a))
		offsets[i+1] = cur
	}
	pageMapOff := headerSize + len(body)

	out := make([]byte, pageMapOff+4+len(offsets)*2)
	out[0] = 0xEC // heap-on-node signature
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

// bthHdr builds a BTH header allocation whose root points directly at a
// leaf page (bIdxLevels = 0): every BTH these fixtures build is small
// enough to fit in one leaf.
func bthHdr(cbKey, cbEnt int, root ltp.HID) []byte {
	out := make([]byte, 8)
	out[0] = 0xB5
	out[1] = byte(cbKey)
	out[2] = byte(cbEnt)
	out[3] = 0
	binary.LittleEndian.PutUint32(out[4:8], uint32(root))
	return out
}

// pcEnt builds one PropertyContext leaf entry: PropID(2) + PropType(2) +
// an 8-byte value slot holding value (a literal for an inline type, an
// HNID for a referenced one, zero-extended when it needs fewer bytes).
func pcEnt(propID uint16, pt ltp.PropType, value uint64) []byte {
	out := make([]byte, 12)
	binary.LittleEndian.PutUint16(out[0:2], propID)
	binary.LittleEndian.PutUint16(out[2:4], uint16(pt))
	binary.LittleEndian.PutUint64(out[4:12], value)
	return out
}

func tcInfoHdr(cCols int, cbRow uint16, hidRowIndex ltp.HID, hnidRows uint32) []byte {
	out := make([]byte, 16)
	out[0] = 0x7C
	out[1] = byte(cCols)
	binary.LittleEndian.PutUint16(out[2:4], cbRow)
	binary.LittleEndian.PutUint32(out[4:8], uint32(hidRowIndex))
	binary.LittleEndian.PutUint32(out[8:12], hnidRows)
	return out
}

func tcColDesc(tag uint32, ibData uint16, existBit uint8) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:4], tag)
	binary.LittleEndian.PutUint16(out[4:6], ibData)
	out[6] = 4
	out[7] = existBit
	return out
}

func rowIdxEnt(rowID, rowIndex uint32) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:4], rowID)
	binary.LittleEndian.PutUint32(out[4:8], rowIndex)
	return out
}

// utf16le encodes an ASCII-only string the way PtypString values are
// stored on disk (UTF-16LE, no BOM) — sufficient for these fixtures' fixed
// test strings.
func utf16le(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), 0)
	}
	return out
}

// pcField describes one PropertyContext entry: a value that fits literally
// in the 8-byte slot (lit for a <=4-byte-inline type or a raw HNID a
// caller wants to place directly rather than through the heap, lit8 for an
// 8-byte-inline type such as PtypTime), or a variable payload that gets
// its own heap allocation, referenced by HID.
type pcField struct {
	id   uint16
	pt   ltp.PropType
	lit  uint32
	lit8 uint64
	data []byte
}

// buildPCStream assembles a whole Heap-on-Node + BTH + leaf holding fields
// as one PropertyContext's property set. The leaf is written in ascending
// property-id order, whatever order fields lists them in.
func buildPCStream(fields []pcField) []byte {
	sort.Slice(fields, func(i, j int) bool { return fields[i].id < fields[j].id })
	hb := newHPBuilder(0xBC)
	var leaf []byte
	for _, fld := range fields {
		val := uint64(fld.lit)
		switch {
		case fld.data != nil:
			hid := hb.add(fld.data)
			val = uint64(uint32(hid))
		case fld.lit8 != 0:
			val = fld.lit8
		}
		leaf = append(leaf, pcEnt(fld.id, fld.pt, val)...)
	}
	leafHID := hb.add(leaf)
	rootHID := hb.add(bthHdr(2, 12, leafHID))
	hb.setUserRoot(rootHID)
	return hb.build()
}

// tcCell is one row's value for one column, in the same literal-or-heap
// form as pcField.
type tcCell struct {
	lit  uint32
	data []byte
}

func lit(v uint32) tcCell  { return tcCell{lit: v} }
func vary(b []byte) tcCell { return tcCell{data: b} }

// tcRow is one TableContext row: the RowID (a child NID for hierarchy/
// contents/associated-contents/attach tables) plus its column cells (only
// populated for tables domain code actually reads via Column, i.e. the
// recipient table — every other table here needs zero columns since
// Folder/Message only ever call TableContext.RowIDs on them).
type tcRow struct {
	rowID uint32
	cells []tcCell
}

// buildTCStream assembles a whole Heap-on-Node + TCINFO + row-index BTH +
// row matrix as one TableContext, with cbRow set to 4 bytes per column
// (every column value in these fixtures, fixed or HNID-referenced, fits in
// one 4-byte slot) plus a trailing cell-existence bitmap sized to the
// column count. Every row's cells (when present) populate every column, so
// every existence bit is set.
func buildTCStream(colTags []uint32, rows []tcRow) []byte {
	hb := newHPBuilder(0x7C)

	cebSize := (len(colTags) + 7) / 8
	rowWidth := len(colTags)*4 + cebSize

	var rowMatrix []byte
	var riLeaf []byte
	for idx, row := range rows {
		rowBytes := make([]byte, rowWidth)
		for i, c := range row.cells {
			val := c.lit
			if c.data != nil {
				hid := hb.add(c.data)
				val = uint32(hid)
			}
			binary.LittleEndian.PutUint32(rowBytes[i*4:], val)
			rowBytes[len(colTags)*4+i/8] |= 1 << uint(i%8)
		}
		rowMatrix = append(rowMatrix, rowBytes...)
		riLeaf = append(riLeaf, rowIdxEnt(row.rowID, uint32(idx))...)
	}
	rowsHID := hb.add(rowMatrix)
	riLeafHID := hb.add(riLeaf)
	riRootHID := hb.add(bthHdr(4, 8, riLeafHID))

	var colDescs []byte
	for i, tag := range colTags {
		colDescs = append(colDescs, tcColDesc(tag, uint16(i*4), uint8(i))...)
	}
	cbRow := uint16(rowWidth)
	info := append(tcInfoHdr(len(colTags), cbRow, riRootHID, uint32(rowsHID)), colDescs...)
	infoHID := hb.add(info)
	hb.setUserRoot(infoHID)
	return hb.build()
}
