package msgstore

import (
	"strings"

	"github.com/outlookvault/pstkit/internal/crc32pst"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/pkgerr"
	"golang.org/x/text/encoding/unicode"
)

// checkPassword enforces the message-store password gate. MS-PST stores
// only a CRC of the password (PidTagPasswordCRC on the message-store
// node), never the password itself, and different Outlook versions have
// been observed CRCing different byte encodings of the same string — so
// a candidate is accepted if any plausible encoding's CRC matches, rather
// than committing to one exact encoding rule.
func (f *File) checkPassword(password string) error {
	props, err := f.props(format.NID(f.ndbFile.Header.MessageStoreNID()))
	if err != nil {
		return err
	}
	v, ok, err := props.Get(format.PropTagPasswordCRC)
	if err != nil {
		return err
	}
	if !ok || v.Int == 0 {
		return nil // store carries no password gate
	}
	want := uint32(v.Int)

	if password == "" {
		return pkgerr.New(pkgerr.PasswordRequired, "store is password-protected")
	}
	for _, candidate := range passwordCandidates(password) {
		if crc32pst.Checksum(candidate) == want {
			return nil
		}
	}
	return pkgerr.New(pkgerr.PasswordIncorrect, "password did not match stored crc")
}

var utf16leEncoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

// passwordCandidates enumerates the byte encodings worth trying: the
// original password text and, if different, its upper-cased form (Outlook
// has been observed folding the password to upper case before CRCing it),
// each encoded as ASCII/UTF-8 and as UTF-16LE, each with and without a
// trailing NUL terminator (Outlook has shipped versions that CRC the
// terminator and versions that don't). Lower-casing is deliberately not
// tried: it isn't part of the documented algorithm, and doing so would
// accept case-mismatched passwords the real gate rejects.
func passwordCandidates(password string) [][]byte {
	variants := []string{password}
	if upper := strings.ToUpper(password); upper != password {
		variants = append(variants, upper)
	}
	seen := map[string]bool{}
	var out [][]byte
	add := func(b []byte) {
		k := string(b)
		if !seen[k] {
			seen[k] = true
			out = append(out, b)
		}
	}
	for _, v := range variants {
		ascii := []byte(v)
		add(ascii)
		add(append(append([]byte(nil), ascii...), 0x00))

		if u16, err := utf16leEncoder.Bytes([]byte(v)); err == nil {
			add(u16)
			add(append(append([]byte(nil), u16...), 0x00, 0x00))
		}
	}
	return out
}
