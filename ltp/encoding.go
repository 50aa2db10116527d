package ltp

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// decodeWindows1252 decodes a PtypString8 (8-bit "ANSI") value using the
// code page MS-PST assumes in the absence of any other signal: Windows-1252.
func decodeWindows1252(b []byte) string {
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// utf16LEDecoder decodes a PtypString value's raw little-endian UTF-16
// bytes into UTF-8, tolerating an unpaired trailing byte from a
// truncated/corrupt value rather than failing the whole property.
var utf16LEDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

func decodeUTF16LEBytes(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	out, err := utf16LEDecoder.Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
