package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRefsNilBecomesEmptyArray(t *testing.T) {
	raw, err := encodeRefs(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw), "the JSON columns never hold null")
}

func TestDecodeRefsEmptyColumn(t *testing.T) {
	refs, err := decodeRefs(nil)
	require.NoError(t, err)
	assert.NotNil(t, refs)
	assert.Empty(t, refs)

	refs, err = decodeRefs([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, refs)
}

func TestRefsRoundTrip(t *testing.T) {
	in := []string{"a", "b", "c"}
	raw, err := encodeRefs(in)
	require.NoError(t, err)
	out, err := decodeRefs(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeRefsRejectsGarbage(t *testing.T) {
	_, err := decodeRefs([]byte("{not json"))
	assert.Error(t, err)
}
