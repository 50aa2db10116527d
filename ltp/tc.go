package ltp

import (
	"encoding/binary"
	"sort"

	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
	"github.com/outlookvault/pstkit/ndb"
)

// tcInfoHeaderSize is bType(1) + cCols(1) + cbRowWidth(2) + hidRowIndex(4)
// + hnidRows(4) + reserved(4), followed by cCols column descriptors.
const tcInfoHeaderSize = 16

// tcColumnWidth is tag(4) + ibData(2) + cbData(1) + iBit(1).
const tcColumnWidth = 8

// tcColumn describes one column's placement within a row, and which bit of
// the row's trailing cell-existence bitmap gates it.
type tcColumn struct {
	tag      uint32
	ibData   uint16
	cbData   uint8
	existBit uint8
}

// TableContext is a decoded table (TC): the contents/hierarchy/recipient/
// attachment tables all use this same shape, differing only in which
// columns (property tags) they carry.
type TableContext struct {
	cols      []tcColumn
	cbRow     uint16
	cebOffset int // byte offset of the cell-existence bitmap within a row
	rowIndex  *BTH // RowID(4) -> RowIndex(4)
	rowMatrix []byte
	r         *resolver
}

// OpenTableContext builds a TableContext from a node's data stream.
func OpenTableContext(file *ndb.File, stream []byte, subRoot format.BID) (*TableContext, error) {
	heap, err := OpenHeap(stream)
	if err != nil {
		return nil, err
	}
	info, err := heap.Resolve(heap.UserRoot())
	if err != nil {
		return nil, err
	}
	if len(info) < tcInfoHeaderSize {
		return nil, pkgerr.New(pkgerr.Truncated, "tcinfo header")
	}
	cCols := int(info[1])
	cbRow := binary.LittleEndian.Uint16(info[2:4])
	hidRowIndex := HID(binary.LittleEndian.Uint32(info[4:8]))
	hnidRows := binary.LittleEndian.Uint32(info[8:12])

	if _, err := buf.CheckListBounds(len(info), tcInfoHeaderSize, cCols, tcColumnWidth); err != nil {
		return nil, pkgerr.Wrap(pkgerr.Truncated, "tcinfo column descriptors", err)
	}
	cols := make([]tcColumn, cCols)
	for i := 0; i < cCols; i++ {
		base := tcInfoHeaderSize + i*tcColumnWidth
		cols[i] = tcColumn{
			tag:      binary.LittleEndian.Uint32(info[base:]),
			ibData:   binary.LittleEndian.Uint16(info[base+4:]),
			cbData:   info[base+6],
			existBit: info[base+7],
		}
	}

	cebSize := (cCols + 7) / 8
	cebOffset := int(cbRow) - cebSize
	if cebOffset < 0 {
		return nil, pkgerr.New(pkgerr.Truncated, "tcinfo row width smaller than cell-existence bitmap")
	}

	rowIndex, err := OpenBTH(heap, hidRowIndex)
	if err != nil {
		return nil, err
	}
	r := &resolver{heap: heap, file: file, subRoot: subRoot}
	rows, err := r.resolve(hnidRows)
	if err != nil {
		return nil, err
	}
	return &TableContext{cols: cols, cbRow: cbRow, cebOffset: cebOffset, rowIndex: rowIndex, rowMatrix: rows, r: r}, nil
}

// cellExists reports whether row's cell-existence bitmap has bit set,
// per spec's per-row cell-existence check (invariant I5).
func (tc *TableContext) cellExists(row []byte, bit uint8) bool {
	byteIdx := tc.cebOffset + int(bit)/8
	if byteIdx < 0 || byteIdx >= len(row) {
		return false
	}
	return row[byteIdx]&(1<<uint(bit%8)) != 0
}

// RowIDs returns every row's identifying id (typically a NID), ordered by
// its position in the underlying row matrix.
func (tc *TableContext) RowIDs() ([]uint32, error) {
	all, err := tc.rowIndex.All()
	if err != nil {
		return nil, err
	}
	type idxID struct {
		idx uint32
		id  uint32
	}
	pairs := make([]idxID, 0, len(all))
	for _, kv := range all {
		if len(kv[0]) < 4 || len(kv[1]) < 4 {
			continue
		}
		pairs = append(pairs, idxID{
			id:  binary.LittleEndian.Uint32(kv[0]),
			idx: binary.LittleEndian.Uint32(kv[1]),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].idx < pairs[j].idx })
	out := make([]uint32, len(pairs))
	for i, p := range pairs {
		out[i] = p.id
	}
	return out, nil
}

// Row returns the raw row bytes for rowID, for repeated Column lookups
// without re-walking the row index BTH per column.
func (tc *TableContext) Row(rowID uint32) ([]byte, error) {
	data, err := tc.rowIndex.Lookup(rowID)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, pkgerr.New(pkgerr.Corrupt, "row index entry too short")
	}
	idx := binary.LittleEndian.Uint32(data)
	start := uint64(idx) * uint64(tc.cbRow)
	end := start + uint64(tc.cbRow)
	if end > uint64(len(tc.rowMatrix)) {
		return nil, pkgerr.New(pkgerr.Truncated, "row matrix")
	}
	return tc.rowMatrix[start:end], nil
}

// Column decodes the value of tag within a row returned by Row.
func (tc *TableContext) Column(row []byte, tag uint32) (Value, bool, error) {
	for _, c := range tc.cols {
		if c.tag != tag {
			continue
		}
		if !tc.cellExists(row, c.existBit) {
			return Value{}, false, nil
		}
		if int(c.ibData)+int(c.cbData) > len(row) {
			return Value{}, false, pkgerr.New(pkgerr.Truncated, "column data")
		}
		_, pt := propTag(tag)
		raw := row[c.ibData : c.ibData+uint16(c.cbData)]
		v, err := decodeValue(pt, raw, tc.r)
		if err != nil {
			return Value{}, false, err
		}
		return v, true, nil
	}
	return Value{}, false, nil
}

// RowCount returns the number of rows in the table.
func (tc *TableContext) RowCount() int {
	if tc.cbRow == 0 {
		return 0
	}
	return len(tc.rowMatrix) / int(tc.cbRow)
}
