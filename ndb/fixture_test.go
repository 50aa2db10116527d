package ndb

import (
	"encoding/binary"

	"github.com/outlookvault/pstkit/internal/cipher"
	"github.com/outlookvault/pstkit/internal/crc32pst"
	"github.com/outlookvault/pstkit/internal/format"
)

// fixture assembles a synthetic Unicode-variant PST byte image in memory,
// used to exercise NDB descent without a real Outlook file. Structures are
// placed at caller-chosen offsets and the builder pads with zero bytes as
// needed; nothing here claims byte-for-byte fidelity with a real PST, only
// internal consistency with the package's own encode/decode rules.
type fixture struct {
	h    format.Header
	data []byte
}

func newFixture() *fixture {
	return &fixture{h: format.Header{Variant: format.VariantUnicode}, data: make([]byte, 0)}
}

func (f *fixture) place(off int, b []byte) {
	end := off + len(b)
	if end > len(f.data) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[off:end], b)
}

func putWidth(h format.Header, b []byte, off int, v uint64) {
	if h.Variant == format.VariantUnicode {
		binary.LittleEndian.PutUint64(b[off:off+8], v)
	} else {
		binary.LittleEndian.PutUint32(b[off:off+4], uint32(v))
	}
}

// writeHeader lays out the fixed header at offset 0 with the given NBT/BBT
// root page offsets, computing the partial CRC over the same region
// ndb.ParseHeader validates.
func (f *fixture) writeHeader(nbtRoot, bbtRoot uint64, method byte) {
	b := make([]byte, format.HeaderTotalSizeUnicode)
	copy(b[format.HeaderMagicOffset:], format.HeaderMagic)
	binary.LittleEndian.PutUint16(b[format.HeaderVersionOffset:], format.VerUnicode2003)
	binary.LittleEndian.PutUint16(b[format.HeaderVersionClientOff:], format.VerUnicode2003)
	b[format.HeaderCryptMethodOffset] = method

	base := format.HeaderSize64UniRootOff
	binary.LittleEndian.PutUint64(b[base+format.RootFileEOFOffsetUnicode:], uint64(len(f.data)))
	binary.LittleEndian.PutUint64(b[base+format.RootNBTRootOffsetUnicode:], nbtRoot)
	binary.LittleEndian.PutUint64(b[base+format.RootBBTRootOffsetUnicode:], bbtRoot)

	region := b[format.HeaderMagicClientOffset:format.HeaderCRCPartialRegionEnd]
	crc := crc32pst.Checksum(region)
	binary.LittleEndian.PutUint32(b[format.HeaderCRCPartialOffset:], crc)

	f.place(0, b)
}

// writeDataBlock builds a leaf data block (payload, optionally obfuscated,
// trailer with a matching CRC) and places it at off, returning its BBT
// entry.
func (f *fixture) writeDataBlock(off int, bid format.BID, payload []byte, method cipher.Method) bbtEntry {
	aligned := format.AlignBlock(len(payload))
	region := make([]byte, aligned)
	copy(region, payload)
	cipher.Encode(region[:len(payload)], bid, method)
	crc := crc32pst.Checksum(region[:len(payload)])

	sig := SigDataLeaf
	if bid.IsInternal() {
		sig = SigDataXBlock
	}
	block := make([]byte, aligned+format.TrailerSizeUnicode)
	copy(block, region)
	trailer := block[aligned:]
	binary.LittleEndian.PutUint16(trailer[0:], uint16(len(payload)))
	binary.LittleEndian.PutUint16(trailer[2:], sig)
	binary.LittleEndian.PutUint32(trailer[4:], crc)
	binary.LittleEndian.PutUint64(trailer[8:], uint64(bid))

	f.place(off, block)
	return bbtEntry{BID: bid, Offset: uint64(off), Size: uint32(len(payload))}
}

// writeXBlock builds an internal (XBLOCK) data-tree block referencing the
// given child BIDs, and places it at off, returning its BBT entry.
func (f *fixture) writeXBlock(off int, bid format.BID, children []format.BID, totalBytes uint32) bbtEntry {
	w := f.h.BIDWidth()
	payload := make([]byte, dataTreeHeaderSize+len(children)*w)
	payload[0] = 1 // level
	binary.LittleEndian.PutUint16(payload[2:], uint16(len(children)))
	binary.LittleEndian.PutUint32(payload[4:], totalBytes)
	for i, c := range children {
		putWidth(f.h, payload, dataTreeHeaderSize+i*w, uint64(c))
	}
	return f.writeDataBlock(off, bid, payload, cipher.MethodNone)
}

// writeSubNodeLeaf builds a leaf sub-node block listing (nid, dataBID,
// subBID) triples and places it at off, returning its BBT entry.
func (f *fixture) writeSubNodeLeaf(off int, bid format.BID, entries []subNodeEntry) bbtEntry {
	w := f.h.BIDWidth()
	payload := make([]byte, subNodeHeaderSize+len(entries)*3*w)
	binary.LittleEndian.PutUint16(payload[2:], uint16(len(entries)))
	for i, e := range entries {
		base := subNodeHeaderSize + i*3*w
		putWidth(f.h, payload, base, uint64(e.NID))
		putWidth(f.h, payload, base+w, uint64(e.DataBID))
		putWidth(f.h, payload, base+2*w, uint64(e.SubBID))
	}
	return f.writeDataBlock(off, bid, payload, cipher.MethodNone)
}

// writeNBTPage builds a leaf NBT page listing the given entries and places
// it at off.
func (f *fixture) writeNBTPage(off int, entries []nbtEntry) {
	w := f.h.BIDWidth()
	entryWidth := 4 * w
	body := make([]byte, len(entries)*entryWidth)
	for i, e := range entries {
		base := i * entryWidth
		putWidth(f.h, body, base, uint64(e.NID))
		putWidth(f.h, body, base+w, uint64(e.DataBID))
		putWidth(f.h, body, base+2*w, uint64(e.SubBID))
		putWidth(f.h, body, base+3*w, uint64(e.ParentID))
	}
	f.writePage(off, SigNBTPage, 0, len(entries), body)
}

// writeBBTPage builds a leaf BBT page listing the given entries and places
// it at off.
func (f *fixture) writeBBTPage(off int, entries []bbtEntry) {
	w := f.h.BIDWidth()
	entryWidth := 2*w + 8
	body := make([]byte, len(entries)*entryWidth)
	for i, e := range entries {
		base := i * entryWidth
		putWidth(f.h, body, base, uint64(e.BID))
		putWidth(f.h, body, base+w, e.Offset)
		binary.LittleEndian.PutUint32(body[base+2*w:], e.Size)
		binary.LittleEndian.PutUint32(body[base+2*w+4:], e.RefCount)
	}
	f.writePage(off, SigBBTPage, 0, len(entries), body)
}

// writePage assembles a fixed pageSize-byte page: header + body + zero pad
// + trailer, and places it at off.
func (f *fixture) writePage(off int, sig uint16, level uint8, cEnt int, body []byte) {
	page := make([]byte, pageSize)
	binary.LittleEndian.PutUint16(page[0:], uint16(cEnt))
	page[2] = level
	copy(page[pageHeaderSize:], body)

	trailerOff := pageSize - format.TrailerSizeUnicode
	data := page[:trailerOff]
	crc := crc32pst.Checksum(data)
	trailer := page[trailerOff:]
	binary.LittleEndian.PutUint16(trailer[0:], uint16(trailerOff))
	binary.LittleEndian.PutUint16(trailer[2:], sig)
	binary.LittleEndian.PutUint32(trailer[4:], crc)

	f.place(off, page)
}
