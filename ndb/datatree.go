package ndb

import (
	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// dataTreeHeaderSize is the prologue on an internal (XBLOCK/XXBLOCK) data
// block: a one-byte level marker, a one-byte reserved field, a two-byte
// child count, and a four-byte total byte count of the reassembled stream.
const dataTreeHeaderSize = 8

// readLogicalStreamCached reassembles the full byte stream addressed by
// root, descending through internal (XBLOCK/XXBLOCK) blocks and
// concatenating leaf payloads in order. Every block fetch goes through the
// File's block cache.
func readLogicalStreamCached(f *File, root format.BID) ([]byte, error) {
	if root == 0 {
		return nil, nil
	}
	var out []byte
	var walk func(bid format.BID, depth int) error
	walk = func(bid format.BID, depth int) error {
		if depth > 3 {
			return pkgerr.New(pkgerr.Corrupt, "data tree depth exceeds format limit")
		}
		payload, err := f.readBlockCached(bid)
		if err != nil {
			return err
		}
		if !bid.IsInternal() {
			out = append(out, payload...)
			return nil
		}
		if len(payload) < dataTreeHeaderSize {
			return pkgerr.New(pkgerr.Truncated, "xblock header")
		}
		count := int(buf.U16LE(payload[2:]))
		w := f.Header.BIDWidth()
		refs := payload[dataTreeHeaderSize:]
		if _, err := buf.CheckListBounds(len(refs), 0, count, w); err != nil {
			return pkgerr.Wrap(pkgerr.Truncated, "xblock reference array", err)
		}
		for i := 0; i < count; i++ {
			child := readWidth(f.Header.Header, w)(refs[i*w:])
			if err := walk(format.BID(child), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}
	if len(out) > format.MaxLogicalStream {
		return nil, pkgerr.New(pkgerr.Corrupt, "logical stream exceeds sanity ceiling")
	}
	return out, nil
}
