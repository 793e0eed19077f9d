package serial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, 512*1024*1024, l.MaxByteArrayLen)
	assert.Equal(t, 128*1024*1024, l.MaxInt32ArrayLen)
	assert.Equal(t, 64*1024*1024, l.MaxInt64ArrayLen)
	assert.Equal(t, 64*1024*1024, l.MaxFloat64ArrayLen)
	assert.Equal(t, MaxByteArrayLen/48, l.MaxStringArrayLen)
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())

	opts.Encoding = "no-such-encoding"
	opts.ReadBufferSize = 8
	opts.Limits.MaxStringLen = 0
	err := opts.Validate()
	require.Error(t, err)

	errs, ok := err.(errsx.Map)
	require.True(t, ok, "expected error to be of type errsx.Map")
	assert.Len(t, errs, 3)
	for _, key := range []string{"encoding", "read_buffer_size", "limits.max_string_len"} {
		assert.Contains(t, errs, key)
	}
}

func TestResolveEncoding(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF8"} {
		_, raw, err := ResolveEncoding(name)
		require.NoError(t, err)
		assert.True(t, raw, name)
	}
	enc, raw, err := ResolveEncoding("ISO-8859-1")
	require.NoError(t, err)
	assert.False(t, raw)
	assert.NotNil(t, enc)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("SaveAndLoad", func(t *testing.T) {
		path := filepath.Join(dir, "serial.yaml")
		want := DefaultOptions()
		want.WriteBufferSize = 4096
		want.Limits.MaxStringLen = 1024
		require.NoError(t, SaveConfig(want, path))

		got, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("MissingFieldsKeepDefaults", func(t *testing.T) {
		path := filepath.Join(dir, "partial.yaml")
		require.NoError(t, os.WriteFile(path, []byte("encoding: ISO-8859-1\n"), 0644))

		got, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "ISO-8859-1", got.Encoding)
		assert.Equal(t, DefaultLimits(), got.Limits)
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("write_buffer_size: -1\n"), 0644))
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "configuration validation failed")

		_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestOptionsFromEnv(t *testing.T) {
	t.Run("Overlay", func(t *testing.T) {
		t.Setenv(EnvMaxStringLen, "10")
		t.Setenv(EnvReadBufferSize, " 32 ")
		opts, err := OptionsFromEnv(DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 10, opts.Limits.MaxStringLen)
		assert.Equal(t, 32, opts.ReadBufferSize)
		assert.Equal(t, DefaultLimits().MaxByteArrayLen, opts.Limits.MaxByteArrayLen)
	})

	t.Run("NotANumber", func(t *testing.T) {
		t.Setenv(EnvMaxInt32ArrayLen, "lots")
		_, err := OptionsFromEnv(DefaultOptions())
		assert.Error(t, err)
	})

	t.Run("BadEncoding", func(t *testing.T) {
		t.Setenv(EnvEncoding, "bogus")
		_, err := OptionsFromEnv(DefaultOptions())
		assert.Error(t, err)
	})
}
