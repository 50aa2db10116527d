package ltp

import (
	"encoding/binary"
	"fmt"

	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// bthHeaderSize is bType(1) + cbKey(1) + cbEnt(1) + bIdxLevels(1) + hidRoot(4).
const bthHeaderSize = 8

// BTH is a B-Tree-on-Heap: a small index whose nodes are themselves heap
// allocations. Leaf entries are cbKey-byte keys immediately followed by
// cbEnt-cbKey bytes of data; internal entries are cbKey-byte keys followed
// by a 4-byte child HID.
type BTH struct {
	heap   *Heap
	root   HID
	cbKey  int
	cbEnt  int
	levels int // bIdxLevels: 0 means root is itself a leaf page
}

// OpenBTH reads the BTH header out of the heap allocation at rootHID.
func OpenBTH(h *Heap, rootHID HID) (*BTH, error) {
	hdr, err := h.Resolve(rootHID)
	if err != nil {
		return nil, err
	}
	if len(hdr) < bthHeaderSize {
		return nil, pkgerr.New(pkgerr.InvalidBthHeader, "bth header too short")
	}
	cbKey := int(hdr[1])
	cbEnt := int(hdr[2])
	if cbKey <= 0 || cbEnt < cbKey {
		return nil, pkgerr.New(pkgerr.InvalidBthHeader, fmt.Sprintf("cbKey=%d cbEnt=%d", cbKey, cbEnt))
	}
	levels := int(hdr[3])
	root := HID(binary.LittleEndian.Uint32(hdr[4:8]))
	return &BTH{heap: h, root: root, cbKey: cbKey, cbEnt: cbEnt, levels: levels}, nil
}

// Lookup returns the data portion of the leaf entry whose key exactly
// matches key (padded/truncated to cbKey bytes little-endian, the BTH key
// convention for PropId- and RowId-keyed trees).
func (b *BTH) Lookup(key uint32) ([]byte, error) {
	kb := make([]byte, b.cbKey)
	putKeyBytes(kb, key)
	return b.lookupBytes(kb)
}

func (b *BTH) lookupBytes(key []byte) ([]byte, error) {
	hid := b.root
	for level := b.levels; ; level-- {
		if b.levels-level > 16 {
			return nil, pkgerr.New(pkgerr.Corrupt, "bth depth exceeds sanity ceiling")
		}
		page, err := b.heap.Resolve(hid)
		if err != nil {
			return nil, err
		}
		entries, err := b.sliceEntriesForLevel(page, level)
		if err != nil {
			return nil, err
		}
		if level == 0 {
			for _, e := range entries {
				if bytesEqual(e[:b.cbKey], key) {
					return e[b.cbKey:], nil
				}
			}
			return nil, pkgerr.New(pkgerr.NotFound, "bth key")
		}
		next, ok := searchInternalBTH(entries, b.cbKey, key)
		if !ok {
			return nil, pkgerr.New(pkgerr.NotFound, "bth key")
		}
		hid = next
	}
}

// All enumerates every leaf (key, data) pair in the tree.
func (b *BTH) All() ([][2][]byte, error) {
	var out [][2][]byte
	var walk func(hid HID, level, depth int) error
	walk = func(hid HID, level, depth int) error {
		if depth > 16 {
			return pkgerr.New(pkgerr.Corrupt, "bth depth exceeds sanity ceiling")
		}
		page, err := b.heap.Resolve(hid)
		if err != nil {
			return err
		}
		entries, err := b.sliceEntriesForLevel(page, level)
		if err != nil {
			return err
		}
		if level == 0 {
			for _, e := range entries {
				out = append(out, [2][]byte{e[:b.cbKey], e[b.cbKey:]})
			}
			return nil
		}
		for _, e := range entries {
			child := HID(binary.LittleEndian.Uint32(e[b.cbKey:]))
			if err := walk(child, level-1, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(b.root, b.levels, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// sliceEntriesForLevel slices page into cbEnt-wide leaf entries at level 0
// or (cbKey+4)-wide internal entries above that. Levels come from the
// header's bIdxLevels, tracked by the caller as it descends, rather than
// guessed from page size — cbEnt and cbKey+4 can coincide (the row-index
// BTH TableContext builds has cbKey=4, cbEnt=8), so size alone can't tell
// the two shapes apart.
func (b *BTH) sliceEntriesForLevel(page []byte, level int) ([][]byte, error) {
	width := b.cbEnt
	if level > 0 {
		width = b.cbKey + 4
	}
	if width == 0 || len(page)%width != 0 {
		return nil, pkgerr.New(pkgerr.InvalidBthHeader, "bth page size does not match entry width for its level")
	}
	entries := sliceEntries(page, width)
	for i := 1; i < len(entries); i++ {
		if decodeKey(entries[i-1][:b.cbKey]) >= decodeKey(entries[i][:b.cbKey]) {
			return nil, pkgerr.New(pkgerr.Corrupt, "bth page keys not strictly ascending")
		}
	}
	return entries, nil
}

func sliceEntries(page []byte, width int) [][]byte {
	if width == 0 {
		return nil
	}
	n := len(page) / width
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = page[i*width : (i+1)*width]
	}
	return out
}

// searchInternalBTH finds the entry with the greatest key <= the search
// key. Keys are little-endian integers, so comparison decodes them rather
// than comparing byte strings lexicographically.
func searchInternalBTH(entries [][]byte, cbKey int, key []byte) (HID, bool) {
	target := decodeKey(key)
	best := -1
	for i, e := range entries {
		if decodeKey(e[:cbKey]) <= target {
			best = i
		} else {
			break
		}
	}
	if best < 0 {
		return 0, false
	}
	return HID(binary.LittleEndian.Uint32(entries[best][cbKey:])), true
}

func decodeKey(b []byte) uint64 {
	var v uint64
	for i, c := range b {
		v |= uint64(c) << (8 * uint(i))
	}
	return v
}

func putKeyBytes(dst []byte, v uint32) {
	tmp := make([]byte, 4)
	buf.PutU32LE(tmp, 0, v)
	n := len(dst)
	if n > 4 {
		n = 4
	}
	copy(dst, tmp[:n])
}

func bytesEqual(a, b []byte) bool { return bytesCompare(a, b) == 0 }

func bytesCompare(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
