package ndb

import (
	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/format"
)

// nbtEntry is one leaf record of the Node BTree: the node's own id, the
// BID of its data block, the BID of its sub-node block (zero if none), and
// the NID of its parent (used for folder hierarchy reconstruction).
type nbtEntry struct {
	NID      format.NID
	DataBID  format.BID
	SubBID   format.BID
	ParentID format.NID
}

func nbtLeafWidth(h format.Header) int { return 4 * h.BIDWidth() }

func decodeNBTEntry(h format.Header, e []byte) nbtEntry {
	w := h.BIDWidth()
	read := readWidth(h, w)
	return nbtEntry{
		NID:      format.NID(read(e[0*w:])),
		DataBID:  format.BID(read(e[1*w:])),
		SubBID:   format.BID(read(e[2*w:])),
		ParentID: format.NID(read(e[3*w:])),
	}
}

func readWidth(h format.Header, w int) func([]byte) uint64 {
	if h.Variant == format.VariantUnicode {
		return func(b []byte) uint64 { return buf.U64LE(b) }
	}
	return func(b []byte) uint64 { return uint64(buf.U32LE(b)) }
}

// nbt is the Node BTree lookup surface: NID -> nbtEntry.
type nbt struct{ t *tree }

func newNBT(src Source, h format.Header, root uint64) *nbt {
	return &nbt{t: &tree{src: src, h: h, rootOffset: root, pageSize: pageSize, sig: SigNBTPage, leafEntry: nbtLeafWidth(h)}}
}

func (n *nbt) lookup(nid format.NID) (nbtEntry, error) {
	e, err := n.t.lookup(uint64(nid))
	if err != nil {
		return nbtEntry{}, err
	}
	return decodeNBTEntry(n.t.h, e), nil
}

func (n *nbt) all() ([]nbtEntry, error) {
	raw, err := n.t.all()
	if err != nil {
		return nil, err
	}
	out := make([]nbtEntry, len(raw))
	for i, e := range raw {
		out[i] = decodeNBTEntry(n.t.h, e)
	}
	return out, nil
}
