package png

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// ChunkType is the 4-byte chunk tag, stored big-endian as it appears on disk.
type ChunkType uint32

const (
	// TypeIHDR is the header chunk; it must be the first chunk in the stream.
	TypeIHDR ChunkType = 0x49484452
	// TypeIEND is the terminal chunk; parsing stops right after it.
	TypeIEND ChunkType = 0x49454E44
	// TypeHidden is the private chunk carrying an injected message ("hIDe").
	TypeHidden ChunkType = 0x68494465
)

// Signature is the fixed 8-byte PNG file signature.
// Reference: https://www.w3.org/TR/png/#5PNG-file-signature
var Signature = [8]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

const (
	// SignatureSize is the size of the file signature in bytes
	SignatureSize = 8

	// ChunkOverhead is the number of bytes around a payload: length (4) + type (4) + crc (4)
	ChunkOverhead = 12

	// MaxChunkLength is the largest payload length the PNG format allows (2^31-1)
	MaxChunkLength uint32 = 1<<31 - 1

	// DefaultMaxChunks bounds the chunk directory of a single file
	DefaultMaxChunks = 1 << 16

	// DefaultBufferSize is the working buffer used to stream payloads
	DefaultBufferSize = 32 * 1024
)

// Bytes returns the type code as it is written on disk.
func (ct ChunkType) Bytes() [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(ct))
	return b
}

// String renders the type code as four Latin-1 characters, e.g. "IHDR".
func (ct ChunkType) String() string {
	b := ct.Bytes()
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b[:])
	if err != nil {
		return fmt.Sprintf("0x%08X", uint32(ct))
	}
	return string(s)
}

// IsAncillary reports whether bit 5 of the first byte is set (lowercase first letter).
func (ct ChunkType) IsAncillary() bool {
	return ct.Bytes()[0]&0x20 != 0
}

// ParseChunkType converts a 4-letter ASCII tag into a ChunkType.
func ParseChunkType(s string) (ChunkType, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("chunk type %q must be exactly 4 characters", s)
	}
	for i := 0; i < 4; i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return 0, fmt.Errorf("chunk type %q must contain only ASCII letters", s)
		}
	}
	return ChunkType(binary.BigEndian.Uint32([]byte(s))), nil
}

// HasSignature checks if the provided data starts with the PNG signature
func HasSignature(data []byte) bool {
	if len(data) < SignatureSize {
		return false
	}

	for i := range SignatureSize {
		if data[i] != Signature[i] {
			return false
		}
	}

	return true
}
