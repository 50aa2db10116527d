package msgstore

import (
	"github.com/outlookvault/pstkit/internal/format"
)

// Attachment is one attachment's own PropertySet: filename, MIME type,
// and its payload.
type Attachment struct {
	PropertySet
	file *File
	nid  format.NID
}

// Filename returns PidTagAttachFilename (the short 8.3 form).
func (a Attachment) Filename() string { return a.String(format.PropTagAttachFilename) }

// LongFilename returns PidTagAttachLongFilename.
func (a Attachment) LongFilename() string { return a.String(format.PropTagAttachLongFilename) }

// MimeTag returns PidTagAttachMimeTag.
func (a Attachment) MimeTag() string { return a.String(format.PropTagAttachMimeTag) }

// Size returns PidTagAttachSize, the payload length in bytes as recorded
// by the store (not necessarily equal to len(Data()) for embedded
// message attachments).
func (a Attachment) Size() int64 { return a.Int(format.PropTagAttachSize) }

// Method returns PidTagAttachMethod (by value, by reference, embedded
// message, OLE).
func (a Attachment) Method() int64 { return a.Int(format.PropTagAttachMethod) }

// Data returns the attachment payload, PidTagAttachDataBinary. Large
// payloads are stored via the owning node's sub-node tree rather than
// inline in the heap; PropertySet.Binary resolves either transparently.
func (a Attachment) Data() []byte { return a.Binary(format.PropTagAttachDataBinary) }

// EmbeddedMessage resolves an attach-by-value-embedded-message attachment
// (PidTagAttachMethod == ATTACH_EMBEDDED_MSG) to its nested Message: its
// own PropertySet plus its own recipient/attachment tables. ok is false
// for every other attachment method, in which case the returned Message
// and error are both zero.
func (a Attachment) EmbeddedMessage() (msg Message, ok bool, err error) {
	if a.Method() != format.AttachEmbeddedMsg {
		return Message{}, false, nil
	}
	msg, err = a.file.message(a.nid.WithType(format.NIDTypeNormalMessage))
	if err != nil {
		return Message{}, false, err
	}
	return msg, true, nil
}
