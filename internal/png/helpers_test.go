package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type rawChunk struct {
	typ  string
	data []byte
}

var ihdrData = []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}

func encodeChunk(typ string, data []byte) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.BigEndian, uint32(len(data)))
	b.WriteString(typ)
	b.Write(data)
	_ = binary.Write(&b, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(typ), data...)))
	return b.Bytes()
}

// buildPNG returns a well formed stream: signature, IHDR, the given chunks, IEND.
func buildPNG(chunks ...rawChunk) []byte {
	var b bytes.Buffer
	b.Write(Signature[:])
	b.Write(encodeChunk("IHDR", ihdrData))
	for _, c := range chunks {
		b.Write(encodeChunk(c.typ, c.data))
	}
	b.Write(encodeChunk("IEND", nil))
	return b.Bytes()
}

func newTestFs(t *testing.T, files map[string][]byte) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/images", 0755))
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, data, 0644))
	}
	return fs
}

func openTest(t *testing.T, fs afero.Fs, path string, opts ...Option) *File {
	t.Helper()
	f, err := Open(path, append([]Option{WithFs(fs)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func chunkTypes(chunks []Chunk) []string {
	types := make([]string, len(chunks))
	for i, c := range chunks {
		types[i] = c.Type.String()
	}
	return types
}
