package png

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	pngerrors "github.com/javi11/pngstash/internal/errors"
	"github.com/spf13/afero"
)

// File is a parsed PNG chunk directory backed by its open source file.
// A File is not safe for concurrent use: reads seek the shared source handle.
type File struct {
	src       afero.File
	path      string
	signature uint64
	chunks    []Chunk
	opts      *Options
	buf       []byte
}

// Open opens path, checks the signature and builds the chunk directory from
// IHDR up to and including IEND. Any bad chunk fails the whole open.
func Open(path string, opts ...Option) (*File, error) {
	cfg := newOptions(opts...)

	fh, err := cfg.Fs.Open(path)
	if err != nil {
		return nil, pngerrors.Wrap(pngerrors.ErrOpen, err)
	}

	f := &File{
		src:  fh,
		path: path,
		opts: cfg,
		buf:  make([]byte, cfg.BufferSize),
	}

	if err := f.readSignature(); err != nil {
		_ = fh.Close()
		return nil, err
	}

	if err := f.readChunks(); err != nil {
		_ = fh.Close()
		return nil, err
	}

	cfg.Logger.Debug("Parsed PNG chunk directory",
		"path", path,
		"chunks", len(f.chunks))

	return f, nil
}

func (f *File) readSignature() error {
	var sig [SignatureSize]byte
	n, err := io.ReadFull(f.src, sig[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return pngerrors.Wrap(pngerrors.ErrIO, err)
	}

	if n < SignatureSize || !HasSignature(sig[:]) {
		return fmt.Errorf("%s: %w", f.path, pngerrors.ErrBadSignature)
	}

	f.signature = binary.BigEndian.Uint64(sig[:])
	return nil
}

func (f *File) readChunks() error {
	offset := int64(SignatureSize)

	for {
		if len(f.chunks) >= f.opts.MaxChunks {
			return pngerrors.NewChunkError(pngerrors.ErrLimitExceeded, len(f.chunks), offset, "",
				fmt.Errorf("more than %d chunks", f.opts.MaxChunks))
		}

		chunk, err := readChunk(f.src, f.buf, f.opts.MaxChunkLength)
		if err != nil {
			typ := ""
			if chunk.Type != 0 {
				typ = chunk.Type.String()
			}
			kind := pngerrors.Kind(err)
			if kind == nil {
				kind = pngerrors.ErrIO
			}
			return pngerrors.NewChunkError(kind, len(f.chunks), offset, typ, err)
		}

		if len(f.chunks) == 0 && chunk.Type != TypeIHDR {
			return pngerrors.NewChunkError(pngerrors.ErrMissingHeader, 0, offset, chunk.Type.String(), nil)
		}

		f.chunks = append(f.chunks, chunk)
		offset = chunk.Offset + int64(chunk.Length) + 4

		if chunk.Type == TypeIEND {
			return nil
		}
	}
}

// Path returns the path the file was opened from.
func (f *File) Path() string {
	return f.path
}

// Signature returns the 8 signature bytes as a big-endian integer.
func (f *File) Signature() uint64 {
	return f.signature
}

// Chunks returns a copy of the chunk directory in file order.
func (f *File) Chunks() []Chunk {
	chunks := make([]Chunk, len(f.chunks))
	copy(chunks, f.chunks)
	return chunks
}

// Close releases the source file.
func (f *File) Close() error {
	return f.src.Close()
}

// Inject writes a copy of the file to dst with a hidden chunk carrying message
// inserted right before IEND. The copy is written to a temporary file next to
// dst and renamed into place only once it is complete.
func (f *File) Inject(dst string, message string) (err error) {
	fs := f.opts.Fs

	if filepath.Clean(dst) == filepath.Clean(f.path) {
		return fmt.Errorf("%w: destination %s is the source file", pngerrors.ErrIO, dst)
	}

	if !f.opts.HiddenType.IsAncillary() {
		return fmt.Errorf("%w: hidden chunk %s must be ancillary", pngerrors.ErrChunkType, f.opts.HiddenType)
	}

	if uint64(len(message)) > uint64(f.opts.MaxChunkLength) {
		return fmt.Errorf("%w: message of %d bytes exceeds maximum chunk length %d",
			pngerrors.ErrLimitExceeded, len(message), f.opts.MaxChunkLength)
	}

	// The renamed file keeps the mode of the destination it replaces.
	mode := os.FileMode(0644)
	if st, statErr := fs.Stat(dst); statErr == nil {
		mode = st.Mode().Perm()
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to create temporary file for %s: %w", dst, err))
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = fs.Remove(tmpName)
		}
	}()

	if err = f.writeInjected(tmp, message); err != nil {
		return err
	}

	if err = tmp.Sync(); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to sync %s: %w", tmpName, err))
	}

	if err = tmp.Close(); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to close %s: %w", tmpName, err))
	}

	if err = fs.Chmod(tmpName, mode); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to set mode of %s: %w", tmpName, err))
	}

	if err = fs.Rename(tmpName, dst); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to move %s to %s: %w", tmpName, dst, err))
	}

	f.opts.Logger.Debug("Injected hidden chunk",
		"source", f.path,
		"destination", dst,
		"type", f.opts.HiddenType.String(),
		"length", len(message))

	return nil
}

func (f *File) writeInjected(w io.Writer, message string) error {
	if _, err := w.Write(Signature[:]); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, fmt.Errorf("failed to write signature: %w", err))
	}

	data := []byte(message)
	hidden := NewChunk(f.opts.HiddenType, data)

	for _, chunk := range f.chunks {
		if chunk.Type == TypeIEND {
			if err := hidden.WriteData(w, data); err != nil {
				return err
			}
		}

		if err := chunk.WriteTo(f.src, w, f.buf); err != nil {
			return err
		}
	}

	return nil
}

// Extract returns the payload of the first hidden chunk as text.
func (f *File) Extract() (string, error) {
	for _, chunk := range f.chunks {
		if chunk.Type != f.opts.HiddenType {
			continue
		}

		data, err := chunk.ReadData(f.src)
		if err != nil {
			return "", err
		}

		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: %w", chunk, pngerrors.ErrEncoding)
		}

		return string(data), nil
	}

	return "", fmt.Errorf("%s: %w", f.path, pngerrors.ErrNotFound)
}
