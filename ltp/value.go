package ltp

import (
	"encoding/binary"
	"math"

	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
	"github.com/outlookvault/pstkit/ndb"
)

// Value holds one decoded property value. Only the field matching Type is
// meaningful; callers that know the expected type read that field
// directly, callers that don't switch on Type first.
type Value struct {
	Type   PropType
	Int    int64
	Float  float64
	Bool   bool
	Bytes  []byte // Binary, GUID, String8 (Windows-1252 undecoded), Object
	String string // decoded String8/Unicode text
}

// hnidHeapMarker is the value of an HNID's low 5 bits (format.NIDTypeMask)
// when it addresses a heap allocation rather than a sub-node.
const hnidHeapMarker = 0

// resolver resolves an HNID (heap id or sub-node NID, indistinguishable by
// shape alone — only the low 5 bits tell them apart) to its bytes, for
// property values too large to fit inline in a PC/TC slot.
type resolver struct {
	heap    *Heap
	file    *ndb.File
	subRoot format.BID // owning node's sub-node tree root; 0 if none
}

func (r *resolver) resolve(hnid uint32) ([]byte, error) {
	if hnid&format.NIDTypeMask == hnidHeapMarker {
		return r.heap.Resolve(HID(hnid))
	}
	if r.file == nil || r.subRoot == 0 {
		return nil, pkgerr.New(pkgerr.InvalidHid, "hnid resolves to a sub-node but owner has no sub-node tree")
	}
	sn, err := r.file.ReadSubNode(r.subRoot, format.NID(hnid))
	if err != nil {
		return nil, err
	}
	return r.file.ReadDataStream(sn.DataBID)
}

// decodeValue interprets raw (the PC/TC value slot: 8 bytes wide for a PC
// entry, cbData bytes wide for a TC column) as a value of type pt,
// dereferencing through r when the type isn't stored inline.
func decodeValue(pt PropType, raw []byte, r *resolver) (Value, error) {
	width, inline, isFixed := fixedWidth(pt)
	if isFixed && inline {
		if len(raw) < width {
			return Value{}, pkgerr.New(pkgerr.Truncated, "inline property value")
		}
		return decodeFixedInline(pt, raw[:width])
	}
	if len(raw) < 4 {
		return Value{}, pkgerr.New(pkgerr.Truncated, "property reference")
	}
	data, err := r.resolve(binary.LittleEndian.Uint32(raw))
	if err != nil {
		return Value{}, err
	}
	if isFixed {
		return decodeFixedRef(pt, data)
	}
	return decodeVariable(pt, data)
}

func decodeFixedInline(pt PropType, raw []byte) (Value, error) {
	switch pt {
	case PtypInteger16:
		return Value{Type: pt, Int: int64(int16(binary.LittleEndian.Uint16(raw)))}, nil
	case PtypBoolean:
		return Value{Type: pt, Bool: binary.LittleEndian.Uint16(raw) != 0}, nil
	case PtypInteger32:
		return Value{Type: pt, Int: int64(buf.I32LE(raw))}, nil
	case PtypErrorCode:
		return Value{Type: pt, Int: int64(binary.LittleEndian.Uint32(raw))}, nil
	case PtypFloating32:
		return Value{Type: pt, Float: float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))}, nil
	case PtypFloating64:
		return Value{Type: pt, Float: math.Float64frombits(binary.LittleEndian.Uint64(raw))}, nil
	case PtypCurrency, PtypInteger64:
		return Value{Type: pt, Int: int64(binary.LittleEndian.Uint64(raw))}, nil
	case PtypFloatingTime:
		return Value{Type: pt, Float: math.Float64frombits(binary.LittleEndian.Uint64(raw))}, nil
	case PtypTime:
		return Value{Type: pt, Int: int64(binary.LittleEndian.Uint64(raw))}, nil
	default:
		return Value{}, pkgerr.New(pkgerr.Corrupt, "unexpected inline property type")
	}
}

// decodeFixedRef decodes a fixed-width value too large for a value slot,
// resolved through an HNID. Only PtypGUID (16 bytes) needs this path.
func decodeFixedRef(pt PropType, data []byte) (Value, error) {
	switch pt {
	case PtypGUID:
		if len(data) < 16 {
			return Value{}, pkgerr.New(pkgerr.Truncated, "guid property")
		}
		return Value{Type: pt, Bytes: append([]byte(nil), data[:16]...)}, nil
	default:
		return Value{}, pkgerr.New(pkgerr.Corrupt, "unexpected referenced fixed property type")
	}
}

func decodeVariable(pt PropType, data []byte) (Value, error) {
	switch pt {
	case PtypString:
		return Value{Type: pt, String: decodeUTF16LEBytes(data), Bytes: data}, nil
	case PtypString8:
		return Value{Type: pt, String: decodeWindows1252(data), Bytes: data}, nil
	case PtypBinary, PtypObject, PtypServerID:
		return Value{Type: pt, Bytes: data}, nil
	default:
		// Multi-value types are read by the caller as a flat entry-offset
		// array over this same blob; return the raw bytes uninterpreted.
		return Value{Type: pt, Bytes: data}, nil
	}
}
