package ltp

import (
	"encoding/binary"

	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
	"github.com/outlookvault/pstkit/ndb"
)

// PropertyContext is a decoded property set (PC): every non-table
// property of a folder, message, attachment, or recipient row lives here,
// keyed by property id.
type PropertyContext struct {
	bth *BTH
	r   *resolver
}

// OpenPropertyContext builds a PropertyContext from a node's data stream.
// subRoot is the owning node's sub-node tree root BID (0 if it has none),
// needed to dereference any property value too large for the heap.
func OpenPropertyContext(file *ndb.File, stream []byte, subRoot format.BID) (*PropertyContext, error) {
	heap, err := OpenHeap(stream)
	if err != nil {
		return nil, err
	}
	bth, err := OpenBTH(heap, heap.UserRoot())
	if err != nil {
		return nil, err
	}
	return &PropertyContext{bth: bth, r: &resolver{heap: heap, file: file, subRoot: subRoot}}, nil
}

// propTag splits a MAPI property tag into its id (high word) and type
// (low word), the packing used throughout this package's constants.
func propTag(tag uint32) (id uint16, pt PropType) {
	return uint16(tag >> 16), PropType(uint16(tag))
}

// Get returns the decoded value of the property named by tag (PidTag,
// packed as id<<16|type).
func (pc *PropertyContext) Get(tag uint32) (Value, bool, error) {
	id, pt := propTag(tag)
	entry, err := pc.bth.Lookup(uint32(id))
	if err != nil {
		if pe, ok := err.(*pkgerr.Error); ok && pe.Kind == pkgerr.NotFound {
			return Value{}, false, nil
		}
		return Value{}, false, err
	}
	if len(entry) < 10 {
		return Value{}, false, pkgerr.New(pkgerr.Corrupt, "pc entry too short")
	}
	storedType := PropType(binary.LittleEndian.Uint16(entry[0:2]))
	if storedType != pt {
		// Caller asked for the wrong type against this id; report absent
		// rather than misdecode.
		return Value{}, false, nil
	}
	v, err := decodeValue(pt, entry[2:10], pc.r)
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

// Contains reports whether propID is present, whatever its stored type.
func (pc *PropertyContext) Contains(propID uint16) bool {
	_, err := pc.bth.Lookup(uint32(propID))
	return err == nil
}

// PropertyID pairs a raw MAPI property id with its stored type, as
// returned by Enumerate.
type PropertyID struct {
	ID   uint16
	Type PropType
}

// Enumerate lists every property id/type pair present, without decoding
// values (callers use Get for that once they've picked the tags they want).
func (pc *PropertyContext) Enumerate() ([]PropertyID, error) {
	all, err := pc.bth.All()
	if err != nil {
		return nil, err
	}
	out := make([]PropertyID, 0, len(all))
	for _, kv := range all {
		if len(kv[0]) < 2 || len(kv[1]) < 2 {
			continue
		}
		id := binary.LittleEndian.Uint16(kv[0])
		pt := PropType(binary.LittleEndian.Uint16(kv[1][0:2]))
		out = append(out, PropertyID{ID: id, Type: pt})
	}
	return out, nil
}
