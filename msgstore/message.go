package msgstore

import (
	"time"

	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/telemetry"
	"github.com/outlookvault/pstkit/rtf"
)

// Message is one mail item: a PropertySet plus its recipients,
// attachments, and body.
type Message struct {
	PropertySet
	file *File
	nid  format.NID
}

// Subject returns PidTagSubject.
func (m Message) Subject() string { return m.String(format.PropTagSubject) }

// SenderName returns PidTagSenderName.
func (m Message) SenderName() string { return m.String(format.PropTagSenderName) }

// DeliveryTime returns PidTagMessageDeliveryTime, the received time
// stamped by the transport that delivered the message into this store.
func (m Message) DeliveryTime() time.Time { return m.Time(format.PropTagMessageDeliveryTime) }

// SubmittedTime returns PidTagClientSubmitTime, the sent time stamped by
// the client that originally submitted the message.
func (m Message) SubmittedTime() time.Time { return m.Time(format.PropTagClientSubmitTime) }

// SentRepresentingName returns PidTagSentRepresentingName, the "on behalf
// of" display name Outlook shows in the From line when it differs from
// PidTagSenderName (delegate sends, shared mailboxes).
func (m Message) SentRepresentingName() string {
	return m.String(format.PropTagSentRepresentingName)
}

// MessageClass returns PidTagMessageClass (e.g. "IPM.Note").
func (m Message) MessageClass() string { return m.String(format.PropTagMessageClass) }

// HasAttachments returns PidTagHasAttachments.
func (m Message) HasAttachments() bool { return m.Bool(format.PropTagHasAttachments) }

// ConversationTopic returns PidTagConversationTopic, the subject line a
// reply/forward chain shares even after the visible subject has picked up
// "RE:"/"FW:" prefixes.
func (m Message) ConversationTopic() string { return m.String(format.PropTagConversationTopic) }

// ConversationIndex returns the raw PidTagConversationIndex bytes: a
// 22-byte (or longer, for deep threads) header encoding the thread's
// root creation time followed by one 5-byte block per reply hop.
func (m Message) ConversationIndex() []byte { return m.Binary(format.PropTagConversationIndex) }

// Recipients returns this message's recipient table rows.
func (m Message) Recipients() ([]Recipient, error) {
	tc, err := m.file.table(m.nid.WithType(format.NIDTypeRecipientTable))
	if err != nil {
		return nil, err
	}
	ids, err := tc.RowIDs()
	if err != nil {
		return nil, err
	}
	out := make([]Recipient, 0, len(ids))
	for _, id := range ids {
		row, err := tc.Row(id)
		if err != nil {
			telemetry.Logger.Warn("skipping unreadable recipient row", "rowID", id, "error", err)
			continue
		}
		out = append(out, Recipient{tc: tc, row: row})
	}
	return out, nil
}

// Attachments returns this message's attachment table rows.
func (m Message) Attachments() ([]Attachment, error) {
	tc, err := m.file.table(m.nid.WithType(format.NIDTypeAttachTable))
	if err != nil {
		return nil, err
	}
	ids, err := tc.RowIDs()
	if err != nil {
		return nil, err
	}
	out := make([]Attachment, 0, len(ids))
	for _, id := range ids {
		att, err := m.file.attachment(format.NID(id))
		if err != nil {
			telemetry.Logger.Warn("skipping unreadable attachment", "nid", id, "error", err)
			continue
		}
		out = append(out, att)
	}
	return out, nil
}

// Body assembles the message body from whichever representations are
// present, decompressing the RTF form on demand. The CRC in the RTF
// stream's header is checked only when verifyRTFCRC is true, since MS-OXRTFCP
// treats the check as optional and some producers write a stale value.
func (m Message) Body(verifyRTFCRC bool) (Body, error) {
	b := Body{
		PlainText: m.String(format.PropTagBodyPlain),
	}
	if html := m.Binary(format.PropTagBodyHTML); len(html) > 0 {
		b.HTML = string(html)
	}
	if compressed := m.Binary(format.PropTagRTFCompressed); len(compressed) > 0 {
		rtfText, err := rtf.Decompress(compressed, rtf.Options{VerifyCRC: verifyRTFCRC})
		if err != nil {
			return Body{}, err
		}
		b.RTF = rtfText
	}
	return b, nil
}
