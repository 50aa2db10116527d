package format

import (
	"fmt"

	"github.com/outlookvault/pstkit/internal/buf"
)

// BlockAlignment is the on-disk padding unit for blocks; a block's declared
// size is rounded up to this boundary before the trailer.
const BlockAlignment = 64

// AlignBlock rounds n up to the next BlockAlignment boundary.
func AlignBlock(n int) int {
	return (n + BlockAlignment - 1) &^ (BlockAlignment - 1)
}

// Trailer is the fixed-format footer written at the end of every page and
// data block: declared size, a two-byte signature, a CRC over the block's
// data, and the block's own BID (echoed for cross-checking).
type Trailer struct {
	Size      uint16
	Signature uint16
	CRC       uint32
	BID       BID
}

// ParseTrailer decodes the trailer occupying the last h.TrailerSize() bytes
// of block.
func ParseTrailer(h Header, block []byte) (Trailer, error) {
	sz := h.TrailerSize()
	if len(block) < sz {
		return Trailer{}, fmt.Errorf("trailer: %w", ErrTruncated)
	}
	t := block[len(block)-sz:]
	tr := Trailer{
		Size:      buf.U16LE(t[0:]),
		Signature: buf.U16LE(t[2:]),
		CRC:       buf.U32LE(t[4:]),
	}
	if h.Variant == VariantUnicode {
		tr.BID = BID(buf.U64LE(t[8:]))
	} else {
		tr.BID = BID(buf.U32LE(t[8:]))
	}
	return tr, nil
}

// DataRegion returns the portion of block preceding the trailer, i.e. the
// bytes the trailer's CRC is computed over.
func DataRegion(h Header, block []byte) []byte {
	sz := h.TrailerSize()
	if len(block) < sz {
		return nil
	}
	return block[:len(block)-sz]
}
