package ndb

import (
	"fmt"

	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/crc32pst"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// Page trailer signatures identifying what a page holds. Every BTree page
// (NBT, BBT, or a sub-node block's own internal index) and every data-tree
// block carries one of these in its trailer so a stray offset is caught
// before it is interpreted as the wrong shape.
const (
	SigNBTPage    uint16 = 0x0081
	SigBBTPage    uint16 = 0x0080
	SigDataLeaf   uint16 = 0x0000
	SigDataXBlock uint16 = 0x0101
	SigSubNode    uint16 = 0x00A0
)

// pageHeaderSize is the fixed prologue preceding a page's entry array:
// cEnt (2-byte entry count), cLevel (1 byte; 0 = leaf, >0 = internal), and
// one reserved byte kept for alignment.
const pageHeaderSize = 4

// page is a decoded BTree page: either a leaf holding full entries or an
// internal page holding (key, child offset) pairs.
type page struct {
	level   uint8
	entries [][]byte // each entryWidth bytes long
}

// entryWidth returns the byte width of one page entry for the given kind
// and level, sized from the header's variant.
func entryWidth(h format.Header, level uint8, leafEntry int) int {
	if level > 0 {
		// internal entry: key (BID width) + child page offset (BID width)
		return 2 * h.BIDWidth()
	}
	return leafEntry
}

// readPage loads and validates the page at off, sized pageSize bytes
// (including its trailer), expecting the given trailer signature.
func readPage(src Source, h format.Header, off uint64, pageSize int, wantSig uint16, leafEntry int) (page, error) {
	raw, err := readRange(src, int64(off), pageSize)
	if err != nil {
		return page{}, err
	}
	tr, err := format.ParseTrailer(h, raw)
	if err != nil {
		return page{}, err
	}
	if tr.Signature != wantSig {
		return page{}, pkgerr.New(pkgerr.Corrupt,
			fmt.Sprintf("page at 0x%x: signature 0x%04x, want 0x%04x", off, tr.Signature, wantSig))
	}
	data := format.DataRegion(h, raw)
	if crc32pst.Checksum(data) != tr.CRC {
		return page{}, pkgerr.New(pkgerr.Corrupt, fmt.Sprintf("page at 0x%x: crc mismatch", off))
	}
	if len(data) < pageHeaderSize {
		return page{}, pkgerr.New(pkgerr.Truncated, "page header")
	}
	cEnt := int(buf.U16LE(data[0:]))
	level := data[2]
	if cEnt > format.MaxTreeEntries {
		return page{}, pkgerr.New(pkgerr.Corrupt, "page entry count exceeds sanity ceiling")
	}
	width := entryWidth(h, level, leafEntry)
	body := data[pageHeaderSize:]
	if _, err := buf.CheckListBounds(len(body), 0, cEnt, width); err != nil {
		return page{}, pkgerr.Wrap(pkgerr.Truncated, "page entry array", err)
	}
	entries := make([][]byte, cEnt)
	for i := 0; i < cEnt; i++ {
		entries[i] = body[i*width : (i+1)*width]
	}
	for i := 1; i < len(entries); i++ {
		if pageKey(h, entries[i-1]) >= pageKey(h, entries[i]) {
			return page{}, pkgerr.New(pkgerr.Corrupt, fmt.Sprintf("page at 0x%x: keys not strictly ascending", off))
		}
	}
	return page{level: level, entries: entries}, nil
}

// pageKey extracts the sort key (leading BID-width field, zero-extended to
// uint64) from an entry, valid for both internal entries and any leaf entry
// whose own key is its first field (true of every leaf shape ndb defines).
func pageKey(h format.Header, entry []byte) uint64 {
	if h.Variant == format.VariantUnicode {
		return buf.U64LE(entry)
	}
	return uint64(buf.U32LE(entry))
}

// childOffset reads the child page offset out of an internal entry, which
// follows the key field.
func childOffset(h format.Header, entry []byte) uint64 {
	w := h.BIDWidth()
	if h.Variant == format.VariantUnicode {
		return buf.U64LE(entry[w:])
	}
	return uint64(buf.U32LE(entry[w:]))
}
