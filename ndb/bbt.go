package ndb

import (
	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/format"
)

// bbtEntry is one leaf record of the Block BTree: a block's id, its
// absolute file offset, its exact (unaligned) byte length, and a reference
// count callers can use to detect shared blocks (a sub-node's data block
// referenced from more than one owner, for instance).
type bbtEntry struct {
	BID      format.BID
	Offset   uint64
	Size     uint32
	RefCount uint32
}

func bbtLeafWidth(h format.Header) int { return 2*h.BIDWidth() + 8 }

func decodeBBTEntry(h format.Header, e []byte) bbtEntry {
	w := h.BIDWidth()
	read := readWidth(h, w)
	return bbtEntry{
		BID:      format.BID(read(e[0:])),
		Offset:   read(e[w:]),
		Size:     buf.U32LE(e[2*w:]),
		RefCount: buf.U32LE(e[2*w+4:]),
	}
}

// bbt is the Block BTree lookup surface: BID -> bbtEntry. A BID's low bit
// (internal/leaf marker) is part of its identity, so the exact value is
// the lookup key.
type bbt struct{ t *tree }

func newBBT(src Source, h format.Header, root uint64) *bbt {
	return &bbt{t: &tree{src: src, h: h, rootOffset: root, pageSize: pageSize, sig: SigBBTPage, leafEntry: bbtLeafWidth(h)}}
}

func (b *bbt) lookup(bid format.BID) (bbtEntry, error) {
	e, err := b.t.lookup(uint64(bid))
	if err != nil {
		return bbtEntry{}, err
	}
	return decodeBBTEntry(b.t.h, e), nil
}
