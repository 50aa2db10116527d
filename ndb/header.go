package ndb

import (
	"github.com/outlookvault/pstkit/internal/cipher"
	"github.com/outlookvault/pstkit/internal/crc32pst"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// pageSize is the fixed on-disk size of every NDB page (BTree pages and
// data blocks alike), matching PageOrBlockSizeUnit.
const pageSize = format.PageOrBlockSizeUnit

// Header wraps format.Header with the CRC validation and cipher-method
// derivation that format intentionally leaves to its callers.
type Header struct {
	format.Header
	CipherMethod cipher.Method
}

// ParseHeader parses and validates raw, the header bytes read from the
// front of the file, checking the partial CRC that format.ParseHeader
// leaves unchecked.
func ParseHeader(raw []byte) (Header, error) {
	fh, err := format.ParseHeader(raw)
	if err != nil {
		return Header{}, err
	}
	if crc32pst.Checksum(fh.CRCRegion) != fh.CRCPartial {
		return Header{}, pkgerr.New(pkgerr.Corrupt, "header partial crc mismatch")
	}
	method := cipher.MethodNone
	switch fh.CryptMethod {
	case format.CryptMethodPermute:
		method = cipher.MethodPermute
	case format.CryptMethodCyclic:
		method = cipher.MethodCyclic
	}
	return Header{Header: fh, CipherMethod: method}, nil
}
