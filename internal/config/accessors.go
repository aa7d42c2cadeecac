package config

import (
	"fmt"

	"github.com/javi11/pngstash/internal/png"
)

const (
	maxChunkLength    = int64(png.MaxChunkLength)
	defaultMaxChunks  = png.DefaultMaxChunks
	defaultBufferSize = png.DefaultBufferSize
)

// PNG config accessor methods with default fallbacks.
// Zero values mean "use the default".

// HiddenChunkType returns the chunk type carrying hidden messages.
func (c *Config) HiddenChunkType() (png.ChunkType, error) {
	if c.PNG.HiddenType == "" {
		return png.TypeHidden, nil
	}
	t, err := png.ParseChunkType(c.PNG.HiddenType)
	if err != nil {
		return 0, err
	}
	if !t.IsAncillary() {
		return 0, fmt.Errorf("chunk type %q must start with a lowercase letter", c.PNG.HiddenType)
	}
	return t, nil
}

// GetMaxChunkLength returns the maximum accepted payload length with a default fallback.
func (c *Config) GetMaxChunkLength() uint32 {
	if c.PNG.MaxChunkLength <= 0 || c.PNG.MaxChunkLength > maxChunkLength {
		return png.MaxChunkLength
	}
	return uint32(c.PNG.MaxChunkLength)
}

// GetMaxChunks returns the maximum number of chunks per file with a default fallback.
func (c *Config) GetMaxChunks() int {
	if c.PNG.MaxChunks <= 0 {
		return defaultMaxChunks
	}
	return c.PNG.MaxChunks
}

// GetBufferSize returns the payload copy buffer size with a default fallback.
func (c *Config) GetBufferSize() int {
	if c.PNG.BufferSize <= 0 {
		return defaultBufferSize // Default: 32KB
	}
	return c.PNG.BufferSize
}

// Dump config accessor methods.

// GetDumpWorkers returns how many files are parsed at once with a default fallback.
func (c *Config) GetDumpWorkers() int {
	if c.Dump.Workers <= 0 {
		return 4 // Default: 4 files
	}
	return c.Dump.Workers
}

// GetDumpFormat returns the dump output format with a default fallback.
func (c *Config) GetDumpFormat() string {
	if c.Dump.Format == "" {
		return "text"
	}
	return c.Dump.Format
}

// PNGOptions converts the PNG section into png.Open options.
func (c *Config) PNGOptions() ([]png.Option, error) {
	hidden, err := c.HiddenChunkType()
	if err != nil {
		return nil, err
	}

	return []png.Option{
		png.WithHiddenType(hidden),
		png.WithMaxChunkLength(c.GetMaxChunkLength()),
		png.WithMaxChunks(c.GetMaxChunks()),
		png.WithBufferSize(c.GetBufferSize()),
	}, nil
}
