package format

import (
	"bytes"
	"fmt"

	"github.com/outlookvault/pstkit/internal/buf"
)

// Header is a parsed view over the fixed-size PST/OST header block. It does
// not validate the partial CRC — that lives in the ndb package, which owns
// the crc32pst dependency and can report a Corrupt error with the right
// error kind.
type Header struct {
	Variant       Variant
	Version       uint16
	VersionClient uint16
	NBTRootOffset uint64
	BBTRootOffset uint64
	FileEOF       uint64
	CRCPartial    uint32
	CryptMethod   byte
	// CRCRegion is the byte range the partial CRC covers, for callers that
	// want to validate it against the raw header bytes.
	CRCRegion []byte
}

// headerSize returns the on-disk size of the header for a given wVer.
func headerSize(ver uint16) (int, Variant, error) {
	switch ver {
	case VerANSI2000, VerANSI2002:
		return HeaderTotalSizeANSI, VariantANSI, nil
	case VerUnicode2003, VerUnicode2013:
		return HeaderTotalSizeUnicode, VariantUnicode, nil
	default:
		return 0, 0, fmt.Errorf("header: wVer %d: %w", ver, ErrUnsupportedVersion)
	}
}

// ParseHeader validates the magic and version fields and decodes the ROOT
// structure (NBT/BBT root offsets, file EOF).
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderMagicClientOffset+HeaderMagicClientSize {
		return Header{}, fmt.Errorf("header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[HeaderMagicOffset:HeaderMagicOffset+HeaderMagicSize], HeaderMagic) {
		return Header{}, fmt.Errorf("header: %w", ErrSignatureMismatch)
	}

	ver := buf.U16LE(b[HeaderVersionOffset:])
	size, variant, err := headerSize(ver)
	if err != nil {
		return Header{}, err
	}
	if len(b) < size {
		return Header{}, fmt.Errorf("header: need %d bytes, have %d: %w", size, len(b), ErrTruncated)
	}

	h := Header{
		Variant:       variant,
		Version:       ver,
		VersionClient: buf.U16LE(b[HeaderVersionClientOff:]),
		CRCPartial:    buf.U32LE(b[HeaderCRCPartialOffset:]),
	}
	// The partial CRC covers everything from wMagicClient through the end
	// of the fixed leading fields, stopping short of the variant-specific
	// ROOT structure.
	h.CRCRegion = b[HeaderMagicClientOffset:HeaderCRCPartialRegionEnd]
	if buf.Has(b, HeaderCryptMethodOffset, 1) {
		h.CryptMethod = b[HeaderCryptMethodOffset]
	}

	return decodeRoot(h, b, variant)
}

// decodeRoot reads the FileEOF / NBT root / BBT root fields, whose offsets
// and widths differ between the ANSI and Unicode ROOT structure layouts.
func decodeRoot(h Header, b []byte, variant Variant) (Header, error) {
	base := HeaderSize64UniRootOff
	switch variant {
	case VariantANSI:
		if !buf.Has(b, base+RootFileEOFOffsetANSI, 4) {
			return Header{}, fmt.Errorf("header: root (ansi): %w", ErrTruncated)
		}
		h.FileEOF = uint64(buf.U32LE(b[base+RootFileEOFOffsetANSI:]))
		h.NBTRootOffset = uint64(buf.U32LE(b[base+RootNBTRootOffsetANSI:]))
		h.BBTRootOffset = uint64(buf.U32LE(b[base+RootBBTRootOffsetANSI:]))
	case VariantUnicode:
		if !buf.Has(b, base+RootFileEOFOffsetUnicode, 8) {
			return Header{}, fmt.Errorf("header: root (unicode): %w", ErrTruncated)
		}
		h.FileEOF = buf.U64LE(b[base+RootFileEOFOffsetUnicode:])
		h.NBTRootOffset = buf.U64LE(b[base+RootNBTRootOffsetUnicode:])
		h.BBTRootOffset = buf.U64LE(b[base+RootBBTRootOffsetUnicode:])
	default:
		return Header{}, fmt.Errorf("header: %w", ErrUnsupportedVersion)
	}
	return h, nil
}

// BIDWidth returns the on-disk width, in bytes, of a BID/NID/IB field for
// this header's variant.
func (h Header) BIDWidth() int {
	if h.Variant == VariantUnicode {
		return 8
	}
	return 4
}

// TrailerSize returns the block-trailer size for this header's variant.
func (h Header) TrailerSize() int {
	if h.Variant == VariantUnicode {
		return TrailerSizeUnicode
	}
	return TrailerSizeANSI
}

// MessageStoreNID returns the well-known NID of the message-store node.
// It is a format constant, not a value stored in the header, but is
// exposed here so callers can treat "the root NID of the message store"
// (as the format defines it) as a property of the opened file.
func (Header) MessageStoreNID() uint32 { return NIDMessageStore }

// RootFolderNID returns the well-known NID of the root folder.
func (Header) RootFolderNID() uint32 { return NIDNormalFolderRoot }

// NameToIDMapNID returns the well-known NID of the named-property map.
func (Header) NameToIDMapNID() uint32 { return NIDNameToIDMap }
