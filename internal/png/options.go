package png

import (
	"log/slog"

	"github.com/spf13/afero"
)

// Options configures how a File is opened and rewritten.
type Options struct {
	Fs             afero.Fs
	HiddenType     ChunkType
	MaxChunkLength uint32
	MaxChunks      int
	BufferSize     int
	Logger         *slog.Logger
}

// Option is a functional option for configuring a File.
type Option func(*Options)

// WithFs sets the filesystem the source and destination files live on.
func WithFs(fs afero.Fs) Option {
	return func(o *Options) {
		o.Fs = fs
	}
}

// WithHiddenType overrides the chunk type used to carry the hidden message.
func WithHiddenType(t ChunkType) Option {
	return func(o *Options) {
		o.HiddenType = t
	}
}

// WithMaxChunkLength caps the payload length accepted while parsing.
func WithMaxChunkLength(n uint32) Option {
	return func(o *Options) {
		o.MaxChunkLength = n
	}
}

// WithMaxChunks caps the number of chunks accepted while parsing.
func WithMaxChunks(n int) Option {
	return func(o *Options) {
		o.MaxChunks = n
	}
}

// WithBufferSize sets the working buffer used to stream payloads.
func WithBufferSize(n int) Option {
	return func(o *Options) {
		o.BufferSize = n
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func newOptions(opts ...Option) *Options {
	cfg := &Options{
		Fs:             afero.NewOsFs(),
		HiddenType:     TypeHidden,
		MaxChunkLength: MaxChunkLength,
		MaxChunks:      DefaultMaxChunks,
		BufferSize:     DefaultBufferSize,
		Logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.MaxChunkLength == 0 || cfg.MaxChunkLength > MaxChunkLength {
		cfg.MaxChunkLength = MaxChunkLength
	}
	if cfg.MaxChunks <= 0 {
		cfg.MaxChunks = DefaultMaxChunks
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return cfg
}
