package ndb

import (
	"fmt"

	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// subNodeHeaderSize is the prologue on a sub-node block: cLevel (0 for a
// leaf listing NID entries directly, >0 for an index of further sub-node
// blocks), a reserved byte, and cEnt.
const subNodeHeaderSize = 4

// subNodeEntry is one child of an owning node's private sub-node space,
// addressed by a NID meaningful only within that owner. The message-store
// layer reaches sub-nodes only through HNIDs in PC/TC values (an
// attachment's data, for instance); it opens recipient tables, attachment
// tables and attachment property contexts by NID in the Node BTree, not in
// a message's sub-node tree.
type subNodeEntry struct {
	NID     format.NID
	DataBID format.BID
	SubBID  format.BID
}

// resolveSubNodeCached looks up childNID within the sub-node tree rooted
// at the block addressed by rootBID (an owning node's nbtEntry.SubBID).
func resolveSubNodeCached(f *File, rootBID format.BID, childNID format.NID) (subNodeEntry, error) {
	var found *subNodeEntry
	var walk func(bid format.BID, depth int) error
	walk = func(bid format.BID, depth int) error {
		if depth > 3 {
			return pkgerr.New(pkgerr.Corrupt, "sub-node tree depth exceeds sanity ceiling")
		}
		payload, err := f.readBlockCached(bid)
		if err != nil {
			return err
		}
		if len(payload) < subNodeHeaderSize {
			return pkgerr.New(pkgerr.Truncated, "sub-node block header")
		}
		level := payload[0]
		cEnt := int(buf.U16LE(payload[2:]))
		w := f.Header.BIDWidth()
		body := payload[subNodeHeaderSize:]
		if level > 0 {
			if _, err := buf.CheckListBounds(len(body), 0, cEnt, 2*w); err != nil {
				return pkgerr.Wrap(pkgerr.Truncated, "sub-node index", err)
			}
			for i := 0; i < cEnt; i++ {
				e := body[i*2*w:]
				if err := walk(format.BID(readWidth(f.Header.Header, w)(e[w:])), depth+1); err != nil {
					return err
				}
				if found != nil {
					return nil
				}
			}
			return nil
		}
		if _, err := buf.CheckListBounds(len(body), 0, cEnt, 3*w); err != nil {
			return pkgerr.Wrap(pkgerr.Truncated, "sub-node leaf", err)
		}
		for i := 0; i < cEnt; i++ {
			e := body[i*3*w:]
			read := readWidth(f.Header.Header, w)
			nid := format.NID(read(e[0:]))
			if nid == childNID {
				se := subNodeEntry{
					NID:     nid,
					DataBID: format.BID(read(e[w:])),
					SubBID:  format.BID(read(e[2*w:])),
				}
				found = &se
				return nil
			}
		}
		return nil
	}
	if err := walk(rootBID, 0); err != nil {
		return subNodeEntry{}, err
	}
	if found == nil {
		return subNodeEntry{}, pkgerr.New(pkgerr.NotFound, fmt.Sprintf("sub-node nid 0x%x", childNID))
	}
	return *found, nil
}
