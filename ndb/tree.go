package ndb

import (
	"fmt"

	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// tree wraps a single BTree (NBT or BBT) rooted at rootOffset. Descent is
// iterative: at each internal level it binary-searches for the greatest
// key <= the search key (the standard BTree-on-page convention) and
// follows that entry's child offset, stopping at a leaf.
type tree struct {
	src        Source
	h          format.Header
	rootOffset uint64
	pageSize   int
	sig        uint16
	leafEntry  int
}

// lookup finds the leaf entry with an exact key match. Per invariant I2,
// there is no "nearest" fallback: an absent key is NotFound.
func (t *tree) lookup(key uint64) ([]byte, error) {
	off := t.rootOffset
	for depth := 0; ; depth++ {
		if depth > 32 {
			return nil, pkgerr.New(pkgerr.Corrupt, "btree depth exceeds sanity ceiling")
		}
		pg, err := readPage(t.src, t.h, off, t.pageSize, t.sig, t.leafEntry)
		if err != nil {
			return nil, err
		}
		if pg.level == 0 {
			return searchLeaf(t.h, pg.entries, key)
		}
		next, ok := searchInternal(t.h, pg.entries, key)
		if !ok {
			return nil, pkgerr.New(pkgerr.NotFound, fmt.Sprintf("key 0x%x", key))
		}
		off = next
	}
}

// all walks every leaf entry in key order, used for full enumeration of
// the NBT (File.AllNodes).
func (t *tree) all() ([][]byte, error) {
	var out [][]byte
	var walk func(off uint64, depth int) error
	walk = func(off uint64, depth int) error {
		if depth > 32 {
			return pkgerr.New(pkgerr.Corrupt, "btree depth exceeds sanity ceiling")
		}
		pg, err := readPage(t.src, t.h, off, t.pageSize, t.sig, t.leafEntry)
		if err != nil {
			return err
		}
		if pg.level == 0 {
			out = append(out, pg.entries...)
			return nil
		}
		for _, e := range pg.entries {
			if err := walk(childOffset(t.h, e), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t.rootOffset, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// searchLeaf finds the entry whose key equals key via binary search,
// requiring the P2 strictly-ascending-key invariant to hold.
func searchLeaf(h format.Header, entries [][]byte, key uint64) ([]byte, error) {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		k := pageKey(h, entries[mid])
		switch {
		case k == key:
			return entries[mid], nil
		case k < key:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return nil, pkgerr.New(pkgerr.NotFound, fmt.Sprintf("key 0x%x", key))
}

// searchInternal finds the greatest-key-<=-key entry and returns its child
// offset. Internal pages guarantee every key in the subtree reached through
// entry i is >= entries[i]'s key and < entries[i+1]'s key.
func searchInternal(h format.Header, entries [][]byte, key uint64) (uint64, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	best := -1
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if pageKey(h, entries[mid]) <= key {
			best = mid
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if best < 0 {
		return 0, false
	}
	return childOffset(h, entries[best]), true
}
