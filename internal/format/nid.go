package format

// NID is a 32-bit node identifier: the low 5 bits carry the node type, the
// remaining 27 bits an index that is unique within that type (and, for
// sub-node NIDs, within the owning parent's private namespace).
type NID uint32

// Type returns the node type encoded in the low 5 bits.
func (n NID) Type() NodeType { return NodeType(uint32(n) & NIDTypeMask) }

// Index returns the high 27 bits.
func (n NID) Index() uint32 { return uint32(n) >> NIDIndexBits }

// MakeNID builds a NID from a type and index.
func MakeNID(t NodeType, index uint32) NID {
	return NID((index << NIDIndexBits) | (uint32(t) & NIDTypeMask))
}

// WithType returns the NID for the same index but a different node type —
// used to derive a folder's hierarchy/contents/associated-contents table
// NIDs from its own NID.
func (n NID) WithType(t NodeType) NID {
	return MakeNID(t, n.Index())
}

// BID is a block identifier. The low bit distinguishes internal
// (data-tree/XBLOCK) blocks from leaf blocks; it is part of the id's
// identity, so two BIDs differing only in that bit are different blocks
// as far as the Block BTree is concerned.
type BID uint64

// IsInternal reports whether this BID's low bit marks it as pointing to an
// internal (XBLOCK/XXBLOCK) data-tree node rather than a leaf.
func (b BID) IsInternal() bool { return b&1 != 0 }
