package png

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	pngerrors "github.com/javi11/pngstash/internal/errors"
)

// Chunk describes one length-prefixed, CRC-protected record of the stream.
// The payload itself is never kept in memory; Offset points at it in the source.
type Chunk struct {
	Length uint32    // payload byte count
	Type   ChunkType // chunk tag (IHDR, IEND, ...)
	Offset int64     // absolute position of the payload in the source stream
	CRC    uint32    // crc32 of type + payload
}

// String renders the chunk type, e.g. "IDAT".
func (c Chunk) String() string {
	return c.Type.String()
}

// NewChunk builds an in-memory chunk for data. Offset is left at 0: the payload
// is held by the caller and written with WriteData.
func NewChunk(t ChunkType, data []byte) Chunk {
	typ := t.Bytes()
	hasher := crc32.NewIEEE()
	hasher.Write(typ[:])
	hasher.Write(data)

	return Chunk{
		Length: uint32(len(data)),
		Type:   t,
		CRC:    hasher.Sum32(),
	}
}

// readChunk reads the chunk starting at the current position of r and verifies
// its checksum while streaming the payload through buf. On success r is left
// right after the CRC field.
func readChunk(r io.ReadSeeker, buf []byte, maxLength uint32) (Chunk, error) {
	var c Chunk
	var header [8]byte

	if _, err := io.ReadFull(r, header[:]); err != nil {
		return c, truncated(err)
	}
	c.Length = binary.BigEndian.Uint32(header[0:4])
	c.Type = ChunkType(binary.BigEndian.Uint32(header[4:8]))

	if c.Length > maxLength {
		return c, fmt.Errorf("%w: payload length %d exceeds maximum %d", pngerrors.ErrLimitExceeded, c.Length, maxLength)
	}

	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return c, pngerrors.Wrap(pngerrors.ErrIO, err)
	}
	c.Offset = pos

	hasher := crc32.NewIEEE()
	hasher.Write(header[4:8])

	// A short payload is a hard failure: checking the CRC over fewer bytes than
	// declared would let a forged length field through.
	n, err := io.CopyBuffer(hasher, io.LimitReader(r, int64(c.Length)), buf)
	if err != nil {
		return c, pngerrors.Wrap(pngerrors.ErrIO, err)
	}
	if n != int64(c.Length) {
		return c, fmt.Errorf("%w: payload has %d of %d bytes", pngerrors.ErrTruncated, n, c.Length)
	}

	var crc [4]byte
	if _, err := io.ReadFull(r, crc[:]); err != nil {
		return c, truncated(err)
	}
	c.CRC = binary.BigEndian.Uint32(crc[:])

	if sum := hasher.Sum32(); sum != c.CRC {
		return c, fmt.Errorf("%w: stored %08X, computed %08X", pngerrors.ErrChecksum, c.CRC, sum)
	}

	return c, nil
}

// CopyData streams the payload from src to the current write position of dst.
func (c Chunk) CopyData(src io.ReadSeeker, dst io.Writer, buf []byte) error {
	if _, err := src.Seek(c.Offset, io.SeekStart); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to seek to payload of %s: %w", c, err))
	}

	n, err := io.CopyBuffer(dst, io.LimitReader(src, int64(c.Length)), buf)
	if err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to copy payload of %s: %w", c, err))
	}
	if n != int64(c.Length) {
		return fmt.Errorf("%w: payload of %s has %d of %d bytes", pngerrors.ErrTruncated, c, n, c.Length)
	}

	return nil
}

// WriteTo reproduces the chunk byte for byte in dst, reading its payload from src.
func (c Chunk) WriteTo(src io.ReadSeeker, dst io.Writer, buf []byte) error {
	if err := c.writeHeader(dst); err != nil {
		return err
	}

	if err := c.CopyData(src, dst, buf); err != nil {
		return err
	}

	return c.writeCRC(dst)
}

// WriteData writes a chunk whose payload is already in memory.
func (c Chunk) WriteData(dst io.Writer, data []byte) error {
	if int(c.Length) != len(data) {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("chunk %s declares %d bytes but %d were given", c, c.Length, len(data)))
	}

	if err := c.writeHeader(dst); err != nil {
		return err
	}

	if _, err := dst.Write(data); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to write payload of %s: %w", c, err))
	}

	return c.writeCRC(dst)
}

// ReadData loads the whole payload into memory.
func (c Chunk) ReadData(src io.ReaderAt) ([]byte, error) {
	data := make([]byte, c.Length)
	n, err := src.ReadAt(data, c.Offset)
	if n == len(data) {
		return data, nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return nil, truncated(err)
}

func (c Chunk) writeHeader(dst io.Writer) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], c.Length)
	binary.BigEndian.PutUint32(header[4:8], uint32(c.Type))

	if _, err := dst.Write(header[:]); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to write header of %s: %w", c, err))
	}
	return nil
}

func (c Chunk) writeCRC(dst io.Writer) error {
	if err := binary.Write(dst, binary.BigEndian, c.CRC); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to write crc of %s: %w", c, err))
	}
	return nil
}

// truncated classifies short reads; any other read failure is an I/O error.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return pngerrors.Wrap(pngerrors.ErrTruncated, err)
	}
	return pngerrors.Wrap(pngerrors.ErrIO, err)
}
