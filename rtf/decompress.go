// Package rtf decompresses PidTagRtfCompressed values per MS-OXRTFCP: the
// LZFu dictionary-coded format Outlook uses to store RTF message bodies
// compactly, plus its uncompressed ("MELA") escape hatch.
package rtf

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/outlookvault/pstkit/internal/buf"
	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// Compressed RTF header signatures (read as the little-endian dword they
// spell out backwards: "LZFu" and "MELA").
const (
	sigCompressed   = 0x75465A4C
	sigUncompressed = 0x414C454D
)

// dictSize is the circular buffer's fixed size; offsets in the compressed
// stream are always taken modulo this.
const dictSize = 4096

// prelude is the fixed 207-byte seed occupying the front of the circular
// buffer before decompression begins — the shared context every RTF body
// implicitly starts from, letting common RTF boilerplate compress to
// almost nothing.
var prelude = []byte(
	"{\\rtf1\\ansi\\mac\\deff0\\deftab720{\\fonttbl;}" +
		"{\\f0\\fnil \\froman \\fswiss \\fmodern \\fscript " +
		"\\fdecor MS Sans SerifSymbolArialTimes New Roman" +
		"Courier{\\colortbl\\red0\\green0\\blue0\r\n\\par " +
		"\\pard\\plain\\f0\\fs20\\b\\i\\u\\tab\\tx",
)

// preludeLen is len(prelude); the write cursor starts here.
const preludeLen = 207

// maxOutputSize bounds allocation against a crafted/corrupt rawSize field.
const maxOutputSize = 64 << 20

// Options controls Decompress's optional checks.
type Options struct {
	// VerifyCRC, when true, validates the header's CRC-32 against the
	// compressed payload and fails with a Corrupt error on mismatch,
	// rather than the lenient best-effort decode used by default.
	VerifyCRC bool
}

// Decompress decodes a PidTagRtfCompressed value into plain RTF text. The
// 16-byte header (compressed size, raw size, compression signature, CRC)
// precedes both the LZFu-coded and the escape-hatch uncompressed form.
func Decompress(data []byte, opts Options) ([]byte, error) {
	if len(data) < 16 {
		return nil, pkgerr.New(pkgerr.Truncated, "rtf header")
	}
	compSize := binary.LittleEndian.Uint32(data[0:4])
	rawSize := binary.LittleEndian.Uint32(data[4:8])
	sig := binary.LittleEndian.Uint32(data[8:12])
	wantCRC := binary.LittleEndian.Uint32(data[12:16])

	switch sig {
	case sigUncompressed:
		end := 16 + int(rawSize)
		if end > len(data) {
			end = len(data)
		}
		return append([]byte(nil), data[16:end]...), nil

	case sigCompressed:
		// The CRC covers the compressed payload only: everything after
		// the 16-byte header, up to compSize+4 bytes from the start of
		// the size field (i.e. the header's own last 12 bytes are
		// included in what compSize counts, the leading dword is not).
		crcEnd := int(compSize) + 4
		if crcEnd > len(data) {
			crcEnd = len(data)
		}
		if opts.VerifyCRC && crcEnd > 16 {
			if crc32.ChecksumIEEE(data[16:crcEnd]) != wantCRC {
				return nil, pkgerr.New(pkgerr.Corrupt, "rtf compressed payload crc mismatch")
			}
		}
		return decompressLZFu(data[16:], int(rawSize))

	default:
		return nil, pkgerr.New(pkgerr.UnknownCompression, "rtf compression signature")
	}
}

// decompressLZFu runs the dictionary-coded decompression loop: a control
// byte's bits (LSB first) each select a literal byte or a (offset,
// length) back-reference into the circular buffer, which is seeded with
// prelude before decoding starts.
func decompressLZFu(input []byte, rawSize int) ([]byte, error) {
	dict := make([]byte, dictSize)
	copy(dict, prelude)
	writePos := preludeLen

	capSize := rawSize
	if capSize > maxOutputSize || capSize < 0 {
		capSize = maxOutputSize
	}
	out := make([]byte, 0, capSize)
	inPos := 0

	for inPos < len(input) && len(out) < rawSize {
		control := input[inPos]
		inPos++

		for bit := 0; bit < 8 && inPos < len(input) && len(out) < rawSize; bit++ {
			if control&(1<<uint(bit)) != 0 {
				if inPos+1 >= len(input) {
					return out, pkgerr.New(pkgerr.Truncated, "rtf back-reference")
				}
				word := buf.U16BE(input[inPos : inPos+2])
				inPos += 2

				offset := int(word >> 4)
				length := int(word&0x0F) + 2

				if offset == writePos {
					// Sentinel: the encoder emits this when it runs out of
					// input before filling out a final reference, marking
					// the true end of the logical stream.
					return out, nil
				}
				for i := 0; i < length && len(out) < rawSize; i++ {
					b := dict[(offset+i)%dictSize]
					out = append(out, b)
					dict[writePos] = b
					writePos = (writePos + 1) % dictSize
				}
			} else {
				b := input[inPos]
				inPos++
				out = append(out, b)
				dict[writePos] = b
				writePos = (writePos + 1) % dictSize
			}
		}
	}
	return out, nil
}
