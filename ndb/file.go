package ndb

import (
	"sync/atomic"

	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
	"github.com/outlookvault/pstkit/internal/telemetry"
)

// File is the top-level NDB handle: a validated header plus lookup
// surfaces over the Node BTree and Block BTree, and the block cache both
// share.
type File struct {
	src    Source
	Header Header
	nbt    *nbt
	bbt    *bbt
	cache  *blockCache
	closed atomic.Bool
}

// OpenOptions tunes Open. The zero value picks the same defaults Open used
// before this existed: a shared 4096-entry block cache.
type OpenOptions struct {
	// CacheEntries overrides the block cache's total capacity across its
	// 16 shards. 0 uses defaultBlockCacheCapacity.
	CacheEntries int
}

// Open validates the header at the front of src and prepares the NBT/BBT
// roots for lookups. It does not read any data blocks.
func Open(src Source, opts ...OpenOptions) (*File, error) {
	var opt OpenOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	cacheCap := opt.CacheEntries
	if cacheCap <= 0 {
		cacheCap = defaultBlockCacheCapacity
	}

	raw, err := readRange(src, 0, format.HeaderTotalSizeUnicode)
	if err != nil {
		// The file may be the smaller ANSI header; retry with that size
		// before giving up.
		raw, err = readRange(src, 0, format.HeaderTotalSizeANSI)
		if err != nil {
			return nil, err
		}
	}
	h, err := ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	telemetry.Logger.Debug("ndb header parsed",
		"variant", h.Variant, "cryptMethod", h.CipherMethod, "nbtRoot", h.NBTRootOffset, "bbtRoot", h.BBTRootOffset)
	return &File{
		src:    src,
		Header: h,
		nbt:    newNBT(src, h.Header, h.NBTRootOffset),
		bbt:    newBBT(src, h.Header, h.BBTRootOffset),
		cache:  newBlockCache(cacheCap),
	}, nil
}

// Close releases the underlying source. Every subsequent call on f fails
// with pkgerr.Disposed.
func (f *File) Close() error {
	f.closed.Store(true)
	return f.src.Close()
}

// checkOpen returns pkgerr.Disposed once Close has run, guarding every
// entry point that would otherwise read through f.src (a memory-mapped
// file's backing pages are unmapped on Close, so a stray read after that
// point must fail cleanly rather than fault or return garbage).
func (f *File) checkOpen() error {
	if f.closed.Load() {
		return pkgerr.New(pkgerr.Disposed, "ndb file is closed")
	}
	return nil
}

// LookupNode returns the Node BTree entry for nid.
func (f *File) LookupNode(nid format.NID) (nbtEntry, error) {
	if err := f.checkOpen(); err != nil {
		return nbtEntry{}, err
	}
	return f.nbt.lookup(nid)
}

// AllNodes returns every Node BTree leaf entry, for hierarchy scans that
// need to find a folder's children by parent NID.
func (f *File) AllNodes() ([]nbtEntry, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}
	return f.nbt.all()
}

// readBlockCached fetches and deobfuscates the block bid points to,
// serving from the block cache when possible.
func (f *File) readBlockCached(bid format.BID) ([]byte, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}
	if payload, ok := f.cache.get(bid); ok {
		return payload, nil
	}
	ent, err := f.bbt.lookup(bid)
	if err != nil {
		return nil, err
	}
	payload, err := readBlock(f.src, f.Header, ent)
	if err != nil {
		return nil, err
	}
	f.cache.put(bid, payload)
	return payload, nil
}

// ReadDataStream reassembles the logical byte stream for a node's data
// block, given the BID recorded in its Node BTree entry (zero means the
// node carries no data stream, e.g. a folder with only child properties).
func (f *File) ReadDataStream(bid format.BID) ([]byte, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}
	return readLogicalStreamCached(f, bid)
}

// ReadSubNode resolves childNID within the sub-node tree rooted at rootBID
// (an owning node's nbtEntry.SubBID) and returns its data BID and (if it
// has one) its own nested sub-node root BID.
func (f *File) ReadSubNode(rootBID format.BID, childNID format.NID) (subNodeEntry, error) {
	if err := f.checkOpen(); err != nil {
		return subNodeEntry{}, err
	}
	if rootBID == 0 {
		return subNodeEntry{}, pkgerr.New(pkgerr.NotFound, "node has no sub-node tree")
	}
	return resolveSubNodeCached(f, rootBID, childNID)
}
