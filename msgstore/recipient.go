package msgstore

import (
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/ltp"
)

// Recipient is one row of a message's recipient table.
type Recipient struct {
	tc  *ltp.TableContext
	row []byte
}

// Type returns PidTagRecipientType (to/cc/bcc).
func (r Recipient) Type() int64 { return r.intColumn(format.PropTagRecipientType) }

// EmailAddress returns PidTagEmailAddress.
func (r Recipient) EmailAddress() string { return r.stringColumn(format.PropTagRecipientEmailAddr) }

// DisplayName returns PidTagDisplayName as carried by the recipient row.
func (r Recipient) DisplayName() string { return r.stringColumn(format.PropTagRecipientDisplayName) }

func (r Recipient) stringColumn(tag uint32) string {
	v, ok, err := r.tc.Column(r.row, tag)
	if err != nil || !ok {
		return ""
	}
	return v.String
}

func (r Recipient) intColumn(tag uint32) int64 {
	v, ok, err := r.tc.Column(r.row, tag)
	if err != nil || !ok {
		return 0
	}
	return v.Int
}
