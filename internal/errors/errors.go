// Package errors provides the error taxonomy shared by the png package and the CLI.
// It exists so callers can classify failures with errors.Is without importing png internals.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every error returned by the png package matches one of them.
var (
	ErrOpen          = errors.New("cannot open file")
	ErrBadSignature  = errors.New("bad signature: the file is not a PNG file")
	ErrMissingHeader = errors.New("bad chunk: expected IHDR")
	ErrChecksum      = errors.New("bad crc32 in chunk")
	ErrTruncated     = errors.New("truncated stream")
	ErrEncoding      = errors.New("hidden message is not valid UTF-8")
	ErrNotFound      = errors.New("hidden message not found")
	ErrIO            = errors.New("i/o error")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrChunkType     = errors.New("invalid chunk type")
)

// ChunkError reports a failure tied to a specific chunk of the stream.
type ChunkError struct {
	Index  int    // position in the chunk directory, starting at 0
	Offset int64  // absolute offset of the chunk's length field
	Type   string // rendered type code, empty if it was never read
	Kind   error
	cause  error
}

// Error implements the error interface.
func (e *ChunkError) Error() string {
	where := fmt.Sprintf("chunk %d at offset %d", e.Index, e.Offset)
	if e.Type != "" {
		where = fmt.Sprintf("chunk %d (%s) at offset %d", e.Index, e.Type, e.Offset)
	}

	switch {
	case e.cause == nil:
		return fmt.Sprintf("%s: %v", where, e.Kind)
	case errors.Is(e.cause, e.Kind):
		return fmt.Sprintf("%s: %v", where, e.cause)
	}
	return fmt.Sprintf("%s: %v: %v", where, e.Kind, e.cause)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *ChunkError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// NewChunkError creates a chunk error of the given kind with an optional cause.
func NewChunkError(kind error, index int, offset int64, typ string, cause error) error {
	return &ChunkError{
		Index:  index,
		Offset: offset,
		Type:   typ,
		Kind:   kind,
		cause:  cause,
	}
}

// kindError attaches a kind sentinel to an error that is not tied to a chunk.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%v: %v", e.kind, e.cause)
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

// Wrap classifies cause as kind. It returns nil if cause is nil.
func Wrap(kind error, cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, kind) {
		return cause
	}
	return &kindError{kind: kind, cause: cause}
}

// IsChunkError checks if an error carries chunk position information.
func IsChunkError(err error) bool {
	if err == nil {
		return false
	}
	var chunkErr *ChunkError
	return errors.As(err, &chunkErr)
}

// Kind returns the sentinel kind matched by err, or nil when err is not classified.
func Kind(err error) error {
	for _, kind := range []error{
		ErrOpen,
		ErrBadSignature,
		ErrMissingHeader,
		ErrChecksum,
		ErrTruncated,
		ErrEncoding,
		ErrNotFound,
		ErrLimitExceeded,
		ErrChunkType,
		ErrIO,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
