// Package msgstore binds the NDB and LTP layers into the message-store
// domain model MS-PST describes: a File containing a folder hierarchy of
// Messages, each with Recipients, Attachments, and a Body.
package msgstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/ltp"
)

// formatLID renders a numeric named-property id the way MS-OXPROPS
// documents them, e.g. "0x8005".
func formatLID(lid uint32) string { return fmt.Sprintf("0x%04X", lid) }

// PropertySet is the read-only facade every domain type exposes over its
// backing Property Context: get a single tag, test for presence, or walk
// every property the node carries. Domain types layer typed accessors
// (Subject, DisplayName, ...) on top of this rather than exposing the raw
// PC, but callers who need an unmapped or vendor-specific property still
// reach it here.
type PropertySet struct {
	pc    *ltp.PropertyContext
	named *namedPropertyMap
}

// NamedTag resolves a MAPI property tag whose id half falls in the named
// property range (0x8000-0xFFFE) to the (GUID, name-or-lid) pair the store
// registered it under. ok is false for a well-known tag, or for a named
// tag this store's name-to-id map has no entry for.
func (p PropertySet) NamedTag(tag uint32) (guid uuid.UUID, nameOrID string, ok bool) {
	id := uint16(tag >> 16)
	key, found := p.named.Lookup(id)
	if !found {
		return uuid.UUID{}, "", false
	}
	if key.isString {
		return key.guid, key.name, true
	}
	return key.guid, formatLID(key.lid), true
}

// Get returns the decoded value for a MAPI property tag (PidTag, packed
// as propID<<16 | propType).
func (p PropertySet) Get(tag uint32) (ltp.Value, bool, error) {
	if p.pc == nil {
		return ltp.Value{}, false, nil
	}
	return p.pc.Get(tag)
}

// Contains reports whether a property id is present, independent of type.
func (p PropertySet) Contains(propID uint16) bool {
	if p.pc == nil {
		return false
	}
	return p.pc.Contains(propID)
}

// Enumerate lists every property id/type pair present on the node.
func (p PropertySet) Enumerate() ([]ltp.PropertyID, error) {
	if p.pc == nil {
		return nil, nil
	}
	return p.pc.Enumerate()
}

// String returns a property's decoded text, or "" if absent or not a
// string-typed value.
func (p PropertySet) String(tag uint32) string {
	v, ok, err := p.Get(tag)
	if err != nil || !ok {
		return ""
	}
	return v.String
}

// Int returns a property's decoded integer value, or 0 if absent.
func (p PropertySet) Int(tag uint32) int64 {
	v, ok, err := p.Get(tag)
	if err != nil || !ok {
		return 0
	}
	return v.Int
}

// Bool returns a property's decoded boolean value, or false if absent.
func (p PropertySet) Bool(tag uint32) bool {
	v, ok, err := p.Get(tag)
	if err != nil || !ok {
		return false
	}
	return v.Bool
}

// Time interprets an 8-byte FILETIME-typed property as a time.Time, the
// zero value if absent.
func (p PropertySet) Time(tag uint32) time.Time {
	v, ok, err := p.Get(tag)
	if err != nil || !ok {
		return time.Time{}
	}
	return format.FiletimeToTime(uint64(v.Int))
}

// Binary returns a property's raw bytes, or nil if absent.
func (p PropertySet) Binary(tag uint32) []byte {
	v, ok, err := p.Get(tag)
	if err != nil || !ok {
		return nil
	}
	return v.Bytes
}
