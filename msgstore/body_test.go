package msgstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBody_HasHTMLAndHasRTF(t *testing.T) {
	empty := Body{}
	require.False(t, empty.HasHTML())
	require.False(t, empty.HasRTF())

	withHTML := Body{HTML: "<p>hi</p>"}
	require.True(t, withHTML.HasHTML())
	require.False(t, withHTML.HasRTF())

	withRTF := Body{RTF: []byte(`{\rtf1}`)}
	require.False(t, withRTF.HasHTML())
	require.True(t, withRTF.HasRTF())
}
