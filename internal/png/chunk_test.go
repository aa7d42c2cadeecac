package png

import (
	"bytes"
	"io"
	"testing"

	pngerrors "github.com/javi11/pngstash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadChunk(t *testing.T) {
	raw := append(encodeChunk("tEXt", []byte("Comment\x00hello")), encodeChunk("IEND", nil)...)
	r := bytes.NewReader(raw)
	buf := make([]byte, 4)

	c, err := readChunk(r, buf, MaxChunkLength)
	require.NoError(t, err)
	assert.Equal(t, uint32(13), c.Length)
	assert.Equal(t, "tEXt", c.String())
	assert.Equal(t, int64(8), c.Offset)

	// The cursor sits right after the CRC so the next chunk can be read.
	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(ChunkOverhead+13), pos)

	end, err := readChunk(r, buf, MaxChunkLength)
	require.NoError(t, err)
	assert.Equal(t, TypeIEND, end.Type)
	assert.Equal(t, uint32(0xAE426082), end.CRC)
}

func TestReadChunk_Errors(t *testing.T) {
	valid := encodeChunk("tEXt", []byte("payload"))

	corrupted := bytes.Clone(valid)
	corrupted[10] ^= 0xFF

	// Declared length larger than the remaining payload.
	forged := bytes.Clone(valid)
	forged[3] = 200

	tests := []struct {
		name      string
		raw       []byte
		maxLength uint32
		want      error
	}{
		{name: "empty", raw: nil, maxLength: MaxChunkLength, want: pngerrors.ErrTruncated},
		{name: "partial length", raw: valid[:3], maxLength: MaxChunkLength, want: pngerrors.ErrTruncated},
		{name: "partial type", raw: valid[:6], maxLength: MaxChunkLength, want: pngerrors.ErrTruncated},
		{name: "partial payload", raw: valid[:10], maxLength: MaxChunkLength, want: pngerrors.ErrTruncated},
		{name: "partial crc", raw: valid[:len(valid)-2], maxLength: MaxChunkLength, want: pngerrors.ErrTruncated},
		{name: "forged length", raw: forged, maxLength: MaxChunkLength, want: pngerrors.ErrTruncated},
		{name: "bad crc", raw: corrupted, maxLength: MaxChunkLength, want: pngerrors.ErrChecksum},
		{name: "too long", raw: valid, maxLength: 3, want: pngerrors.ErrLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readChunk(bytes.NewReader(tt.raw), make([]byte, 16), tt.maxLength)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewChunk(t *testing.T) {
	end := NewChunk(TypeIEND, nil)
	assert.Equal(t, uint32(0), end.Length)
	assert.Equal(t, uint32(0xAE426082), end.CRC)
	assert.Equal(t, int64(0), end.Offset)

	hidden := NewChunk(TypeHidden, []byte("hello world"))
	assert.Equal(t, uint32(11), hidden.Length)

	var out bytes.Buffer
	require.NoError(t, hidden.WriteData(&out, []byte("hello world")))
	assert.Equal(t, encodeChunk("hIDe", []byte("hello world")), out.Bytes())
}

func TestChunk_WriteDataLengthMismatch(t *testing.T) {
	c := NewChunk(TypeHidden, []byte("abc"))
	var out bytes.Buffer
	assert.ErrorIs(t, c.WriteData(&out, []byte("abcd")), pngerrors.ErrIO)
	assert.Zero(t, out.Len())
}

func TestChunk_WriteTo(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 10)
	raw := encodeChunk("IDAT", payload)
	src := bytes.NewReader(raw)

	c, err := readChunk(src, make([]byte, 64), MaxChunkLength)
	require.NoError(t, err)

	// A tiny buffer forces the payload through several copy rounds.
	var out bytes.Buffer
	require.NoError(t, c.WriteTo(src, &out, make([]byte, 7)))
	assert.Equal(t, raw, out.Bytes())

	out.Reset()
	require.NoError(t, c.CopyData(src, &out, make([]byte, 7)))
	assert.Equal(t, payload, out.Bytes())

	data, err := c.ReadData(src)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestChunk_CopyDataTruncatedSource(t *testing.T) {
	c := Chunk{Length: 10, Type: TypeHidden, Offset: 2}
	var out bytes.Buffer

	err := c.CopyData(bytes.NewReader([]byte("abcdef")), &out, make([]byte, 4))
	assert.ErrorIs(t, err, pngerrors.ErrTruncated)

	_, err = c.ReadData(bytes.NewReader([]byte("abcdef")))
	assert.ErrorIs(t, err, pngerrors.ErrTruncated)
}
