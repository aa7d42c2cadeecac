package png

import (
	"fmt"
	"io"

	pngerrors "github.com/javi11/pngstash/internal/errors"
)

// Report is the structured form of a chunk directory.
type Report struct {
	Path      string        `json:"path" yaml:"path"`
	Signature string        `json:"signature" yaml:"signature"`
	Chunks    []ChunkReport `json:"chunks" yaml:"chunks"`
	Hidden    bool          `json:"hidden" yaml:"hidden"`
}

// ChunkReport describes a single chunk of a Report.
type ChunkReport struct {
	Type      string `json:"type" yaml:"type"`
	Code      uint32 `json:"code" yaml:"code"`
	Length    uint32 `json:"length" yaml:"length"`
	Offset    int64  `json:"offset" yaml:"offset"`
	CRC       string `json:"crc" yaml:"crc"`
	Ancillary bool   `json:"ancillary" yaml:"ancillary"`
}

// Report builds the structured view of the chunk directory.
func (f *File) Report() Report {
	r := Report{
		Path:      f.path,
		Signature: fmt.Sprintf("%016X", f.signature),
		Chunks:    make([]ChunkReport, 0, len(f.chunks)),
	}

	for _, c := range f.chunks {
		if c.Type == f.opts.HiddenType {
			r.Hidden = true
		}
		r.Chunks = append(r.Chunks, ChunkReport{
			Type:      c.Type.String(),
			Code:      uint32(c.Type),
			Length:    c.Length,
			Offset:    c.Offset,
			CRC:       fmt.Sprintf("%08X", c.CRC),
			Ancillary: c.Type.IsAncillary(),
		})
	}

	return r
}

// Dump writes a human-readable listing of the chunk directory to w.
// With collapse set, consecutive chunks of the same type are listed once
// followed by their count and total length.
func (f *File) Dump(w io.Writer, collapse bool) error {
	if _, err := fmt.Fprintf(w, "Header: %016X\n", f.signature); err != nil {
		return pngerrors.Wrap(pngerrors.ErrIO, err)
	}

	for i := 0; i < len(f.chunks); {
		c := f.chunks[i]

		if _, err := fmt.Fprintf(w, "Chunk: %s (0x%08X), Length: %d, Pos: %d, CRC: %08X\n",
			c, uint32(c.Type), c.Length, c.Offset, c.CRC); err != nil {
			return pngerrors.Wrap(pngerrors.ErrIO, err)
		}

		j := i + 1
		if collapse {
			total := uint64(c.Length)
			for j < len(f.chunks) && f.chunks[j].Type == c.Type {
				total += uint64(f.chunks[j].Length)
				j++
			}

			if count := j - i; count > 1 {
				if _, err := fmt.Fprintf(w, "  repeated: %d time(s)\n  total length: %d\n", count, total); err != nil {
					return pngerrors.Wrap(pngerrors.ErrIO, err)
				}
			}
		}

		i = j
	}

	return nil
}
