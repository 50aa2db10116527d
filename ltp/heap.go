// Package ltp implements the List/Table/Property layer built on top of
// NDB logical data streams: the Heap-on-Node allocator, the generic
// B-Tree-on-Heap index, and the two structures built from it that the
// message-store layer actually reads — Property Context and Table
// Context.
package ltp

import (
	"encoding/binary"
	"fmt"

	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// HID identifies one allocation within a single-page heap: the low 5 bits
// are always zero (reserved for the NID type discriminant so an HNID can
// be told apart from a sub-node NID at a glance), the next 11 bits are a
// 1-based allocation index, and the high 16 bits are a heap page index
// (always 0 here — see the Non-goals note on multi-page heaps).
type HID uint32

func (h HID) index() int      { return int(h>>5) & 0x7FF }
func (h HID) pageIndex() int  { return int(h >> 16) }
func (h HID) isZero() bool    { return h == 0 }

// heapSignature marks the start of an HN allocation stream.
const heapSignature = 0xEC

// heapHeaderSize is bSignature(1) + bClientSig(1) + hidUserRoot(4) +
// rgbFillLevel placeholder(2) + pageMapOffset(2).
const heapHeaderSize = 10

// Heap wraps the single logical data stream backing a Heap-on-Node,
// giving HID-addressed access to its allocations via the trailing page
// map (count of allocations, count of free bytes, and an offset array one
// longer than the allocation count).
type Heap struct {
	data       []byte
	allocStart []uint16 // rgibAlloc, cAlloc+1 entries
	userRoot   HID
	clientSig  byte
}

// ClientSignature identifies what's built on top of this heap (a BTH for
// Property/Table Context, in every case ltp constructs one).
func (h *Heap) ClientSignature() byte { return h.clientSig }

// UserRoot returns the heap's designated root allocation, from which a BTH
// or TCINFO descends.
func (h *Heap) UserRoot() HID { return h.userRoot }

// OpenHeap parses a Heap-on-Node out of a node's full logical data stream.
func OpenHeap(stream []byte) (*Heap, error) {
	if len(stream) < heapHeaderSize {
		return nil, pkgerr.New(pkgerr.Truncated, "hn header")
	}
	if stream[0] != heapSignature {
		return nil, pkgerr.New(pkgerr.Corrupt, "hn signature mismatch")
	}
	clientSig := stream[1]
	userRoot := HID(binary.LittleEndian.Uint32(stream[2:6]))
	pageMapOff := int(binary.LittleEndian.Uint16(stream[8:10]))
	if pageMapOff < heapHeaderSize || pageMapOff+4 > len(stream) {
		return nil, pkgerr.New(pkgerr.Truncated, "hn page map offset")
	}
	cAlloc := int(binary.LittleEndian.Uint16(stream[pageMapOff:]))
	// cFree at pageMapOff+2 is informational only; not needed for reads.
	arrOff := pageMapOff + 4
	need, err := buf.CheckListBounds(len(stream), arrOff, cAlloc+1, 2)
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.Truncated, "hn allocation offset array", err)
	}
	_ = need
	starts := make([]uint16, cAlloc+1)
	for i := 0; i <= cAlloc; i++ {
		starts[i] = binary.LittleEndian.Uint16(stream[arrOff+i*2:])
	}
	return &Heap{data: stream, allocStart: starts, userRoot: userRoot, clientSig: clientSig}, nil
}

// Resolve returns the bytes of the allocation hid refers to.
func (h *Heap) Resolve(hid HID) ([]byte, error) {
	if hid.isZero() {
		return nil, pkgerr.New(pkgerr.InvalidHid, "zero hid")
	}
	if hid.pageIndex() != 0 {
		return nil, pkgerr.New(pkgerr.InvalidHid, fmt.Sprintf("hid 0x%x: multi-page heaps unsupported", hid))
	}
	idx := hid.index() - 1
	if idx < 0 || idx+1 >= len(h.allocStart) {
		return nil, pkgerr.New(pkgerr.InvalidHid, fmt.Sprintf("hid 0x%x: index out of range", hid))
	}
	start, end := int(h.allocStart[idx]), int(h.allocStart[idx+1])
	if start > end || end > len(h.data) {
		return nil, pkgerr.New(pkgerr.InvalidHid, fmt.Sprintf("hid 0x%x: bad allocation bounds", hid))
	}
	return h.data[start:end], nil
}
