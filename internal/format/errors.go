package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrUnsupportedVersion indicates a header version this reader does not handle.
	ErrUnsupportedVersion = errors.New("format: unsupported version")
	// ErrSanityLimit indicates a declared count/size exceeded a defensive ceiling.
	ErrSanityLimit = errors.New("format: value exceeds sanity limit")
)
