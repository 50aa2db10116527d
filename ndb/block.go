package ndb

import (
	"fmt"

	"github.com/outlookvault/pstkit/internal/cipher"
	"github.com/outlookvault/pstkit/internal/crc32pst"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// readBlock fetches, validates, and deobfuscates the data block identified
// by bid, using ent (already resolved from the Block BTree) to locate it.
// The returned slice is the block's plaintext payload, trailer stripped.
func readBlock(src Source, h Header, ent bbtEntry) ([]byte, error) {
	alloc := format.AlignBlock(int(ent.Size)) + h.TrailerSize()
	if alloc > format.MaxBlockSize {
		return nil, pkgerr.New(pkgerr.Corrupt, "block allocation exceeds sanity ceiling")
	}
	raw, err := readRange(src, int64(ent.Offset), alloc)
	if err != nil {
		return nil, err
	}
	tr, err := format.ParseTrailer(h.Header, raw)
	if err != nil {
		return nil, err
	}
	if tr.BID != ent.BID {
		return nil, pkgerr.New(pkgerr.Corrupt, fmt.Sprintf("block trailer bid 0x%x != bbt bid 0x%x", tr.BID, ent.BID))
	}
	wantSig := SigDataLeaf
	if ent.BID.IsInternal() {
		wantSig = SigDataXBlock
	}
	if tr.Signature != wantSig {
		return nil, pkgerr.New(pkgerr.Corrupt,
			fmt.Sprintf("block 0x%x: signature 0x%04x, want 0x%04x", ent.BID, tr.Signature, wantSig))
	}
	data := format.DataRegion(h.Header, raw)
	if uint32(len(data)) < ent.Size {
		return nil, pkgerr.New(pkgerr.Truncated, "block data region")
	}
	payload := append([]byte(nil), data[:ent.Size]...)
	if crc32pst.Checksum(payload) != tr.CRC {
		return nil, pkgerr.New(pkgerr.Corrupt, fmt.Sprintf("block 0x%x: crc mismatch", ent.BID))
	}
	if h.CipherMethod != cipher.MethodNone {
		cipher.Decode(payload, ent.BID, h.CipherMethod)
	}
	return payload, nil
}
