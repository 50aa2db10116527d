package msgstore

import (
	"testing"

	"github.com/outlookvault/pstkit/internal/format"
	"github.com/stretchr/testify/require"
)

func TestPropertySet_NilSafeWhenPropertyContextMissing(t *testing.T) {
	var p PropertySet
	require.Equal(t, "", p.String(format.PropTagSubject))
	require.EqualValues(t, 0, p.Int(format.PropTagContentCount))
	require.False(t, p.Bool(format.PropTagHasAttachments))
	require.Nil(t, p.Binary(format.PropTagRTFCompressed))
	require.True(t, p.Time(format.PropTagMessageDeliveryTime).IsZero())
	require.False(t, p.Contains(0x3001))

	ids, err := p.Enumerate()
	require.NoError(t, err)
	require.Nil(t, ids)

	_, ok, err := p.Get(format.PropTagSubject)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPropertySet_NamedTag_BelowRangeIsNotOK(t *testing.T) {
	var p PropertySet
	_, _, ok := p.NamedTag(0x3001001F)
	require.False(t, ok)
}

func TestFormatLID(t *testing.T) {
	require.Equal(t, "0x8005", formatLID(0x8005))
}
