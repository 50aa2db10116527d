package msgstore

// Body holds the message body in whichever representations the message
// actually carries. A message store commonly has one or more of these:
// plain text is near-universal, HTML and RTF are populated when the
// original client composed or converted into that format.
type Body struct {
	// PlainText is PidTagBody, decoded to UTF-8.
	PlainText string
	// HTML is PidTagBodyHtml's raw bytes as a string, with no charset
	// conversion. Empty if the message carries no HTML body.
	HTML string
	// RTF is PidTagRtfCompressed after LZFu decompression. Empty if the
	// message carries no RTF body.
	RTF []byte
}

// HasHTML reports whether an HTML body was present.
func (b Body) HasHTML() bool { return b.HTML != "" }

// HasRTF reports whether an RTF body was present.
func (b Body) HasRTF() bool { return len(b.RTF) > 0 }
