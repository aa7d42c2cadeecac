package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/javi11/pngstash/internal/png"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	hidden, err := cfg.HiddenChunkType()
	require.NoError(t, err)
	assert.Equal(t, png.TypeHidden, hidden)
	assert.Equal(t, "Kilroy was here!", cfg.Inject.DefaultMessage)
	assert.Equal(t, 32*1024, cfg.GetBufferSize())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errContains string
	}{
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Log.Level = "verbose" },
			errContains: "log.level must be one of",
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.Log.Format = "xml" },
			errContains: "log.format must be one of",
		},
		{
			name:        "negative max size",
			mutate:      func(c *Config) { c.Log.MaxSize = -1 },
			errContains: "log.max_size must be non-negative",
		},
		{
			name:        "hidden type too short",
			mutate:      func(c *Config) { c.PNG.HiddenType = "hid" },
			errContains: "png.hidden_type",
		},
		{
			name:        "hidden type with digits",
			mutate:      func(c *Config) { c.PNG.HiddenType = "h1De" },
			errContains: "png.hidden_type",
		},
		{
			name:        "hidden type is a critical chunk",
			mutate:      func(c *Config) { c.PNG.HiddenType = "IEND" },
			errContains: "must start with a lowercase letter",
		},
		{
			name:        "chunk length above format limit",
			mutate:      func(c *Config) { c.PNG.MaxChunkLength = 1 << 32 },
			errContains: "png.max_chunk_length",
		},
		{
			name:        "negative max chunks",
			mutate:      func(c *Config) { c.PNG.MaxChunks = -5 },
			errContains: "png.max_chunks must be non-negative",
		},
		{
			name:        "bad dump format",
			mutate:      func(c *Config) { c.Dump.Format = "csv" },
			errContains: "dump.format must be one of",
		},
		{
			name:   "empty values fall back to defaults",
			mutate: func(c *Config) { *c = Config{} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestConfig_Accessors(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, png.MaxChunkLength, cfg.GetMaxChunkLength())
	assert.Equal(t, png.DefaultMaxChunks, cfg.GetMaxChunks())
	assert.Equal(t, png.DefaultBufferSize, cfg.GetBufferSize())
	assert.Equal(t, 4, cfg.GetDumpWorkers())
	assert.Equal(t, "text", cfg.GetDumpFormat())

	cfg.PNG = PNGConfig{HiddenType: "stEg", MaxChunkLength: 1024, MaxChunks: 10, BufferSize: 512}
	cfg.Dump = DumpConfig{Format: "yaml", Workers: 2}

	assert.Equal(t, uint32(1024), cfg.GetMaxChunkLength())
	assert.Equal(t, 10, cfg.GetMaxChunks())
	assert.Equal(t, 512, cfg.GetBufferSize())
	assert.Equal(t, 2, cfg.GetDumpWorkers())
	assert.Equal(t, "yaml", cfg.GetDumpFormat())

	opts, err := cfg.PNGOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	cfg.PNG.HiddenType = "bad"
	_, err = cfg.PNGOptions()
	assert.Error(t, err)
}

func TestConfig_DeepCopy(t *testing.T) {
	var nilCfg *Config
	assert.Nil(t, nilCfg.DeepCopy())

	cfg := DefaultConfig()
	cp := cfg.DeepCopy()
	assert.Equal(t, cfg, cp)

	cp.PNG.HiddenType = "stEg"
	cp.Dump.Workers = 99
	assert.Equal(t, "hIDe", cfg.PNG.HiddenType)
	assert.Equal(t, 4, cfg.Dump.Workers)
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "pngstash.yaml")

	cfg := DefaultConfig()
	cfg.PNG.HiddenType = "stEg"
	cfg.Inject.DefaultMessage = "from file"
	cfg.Dump.Collapse = true
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dump:\n  format: json\n"), 0644))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", loaded.Dump.Format)
	assert.Equal(t, "hIDe", loaded.PNG.HiddenType)
	assert.Equal(t, "Kilroy was here!", loaded.Inject.DefaultMessage)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("png:\n  hidden_type: stEg\n"), 0644))
	t.Setenv("PNGSTASH_PNG_HIDDEN_TYPE", "miNe")
	t.Setenv("PNGSTASH_DUMP_WORKERS", "8")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "miNe", loaded.PNG.HiddenType)
	assert.Equal(t, 8, loaded.Dump.Workers)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "error reading config file")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("png:\n  hidden_type: toolong\n"), 0644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "config validation failed")
}

func TestLoadConfig_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	loaded, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}
