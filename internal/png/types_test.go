package png

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkType_String(t *testing.T) {
	assert.Equal(t, "IHDR", TypeIHDR.String())
	assert.Equal(t, "IEND", TypeIEND.String())
	assert.Equal(t, "hIDe", TypeHidden.String())
	// Bytes outside ASCII render as Latin-1.
	assert.Equal(t, "éabc", ChunkType(0xE9616263).String())
}

func TestChunkType_IsAncillary(t *testing.T) {
	assert.False(t, TypeIHDR.IsAncillary())
	assert.False(t, TypeIEND.IsAncillary())
	assert.True(t, TypeHidden.IsAncillary())
}

func TestParseChunkType(t *testing.T) {
	tests := []struct {
		in      string
		want    ChunkType
		wantErr bool
	}{
		{in: "hIDe", want: TypeHidden},
		{in: "IEND", want: TypeIEND},
		{in: "tEXt", want: 0x74455874},
		{in: "abc", wantErr: true},
		{in: "abcde", wantErr: true},
		{in: "ab1d", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChunkType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestHasSignature(t *testing.T) {
	assert.True(t, HasSignature(Signature[:]))
	assert.True(t, HasSignature(buildPNG()))
	assert.False(t, HasSignature(Signature[:7]))
	assert.False(t, HasSignature(make([]byte, 8)))
	assert.False(t, HasSignature(nil))
}
