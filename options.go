package serial

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hengadev/errsx"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"gopkg.in/yaml.v3"
)

// MaxByteArrayLen is the default ceiling every array limit derives from: 512MB.
const MaxByteArrayLen = 512 * 1024 * 1024

// Limits caps the lengths a codec accepts for arrays and strings, on write and on read.
// They are checked before allocation so that a corrupted or hostile stream cannot
// request arbitrary memory.
type Limits struct {
	MaxByteArrayLen    int `yaml:"max_byte_array_len"`
	MaxInt32ArrayLen   int `yaml:"max_int32_array_len"`
	MaxInt64ArrayLen   int `yaml:"max_int64_array_len"`
	MaxFloat64ArrayLen int `yaml:"max_float64_array_len"`
	MaxStringArrayLen  int `yaml:"max_string_array_len"`
	MaxStringLen       int `yaml:"max_string_len"`
}

// DefaultLimits returns the stock limits: 512MB of bytes, 128M int32s,
// 64M int64s or float64s, about 11M strings and 512MB per string.
func DefaultLimits() Limits {
	return Limits{
		MaxByteArrayLen:    MaxByteArrayLen,
		MaxInt32ArrayLen:   MaxByteArrayLen / 4,
		MaxInt64ArrayLen:   MaxByteArrayLen / 8,
		MaxFloat64ArrayLen: MaxByteArrayLen / 8,
		MaxStringArrayLen:  MaxByteArrayLen / 48,
		MaxStringLen:       MaxByteArrayLen,
	}
}

// Options configures a codec instance.
type Options struct {
	// Encoding is an IANA name of the text encoding for strings. Empty means UTF-8,
	// which is written byte for byte and never fails on invalid sequences.
	Encoding string `yaml:"encoding"`
	// ReadBufferSize above zero buffers plain sources; the codec then reads ahead.
	ReadBufferSize int `yaml:"read_buffer_size"`
	// WriteBufferSize above zero buffers plain destinations until Flush or UnbindStream.
	WriteBufferSize int    `yaml:"write_buffer_size"`
	Limits          Limits `yaml:"limits"`
}

// DefaultOptions returns unbuffered UTF-8 options with DefaultLimits.
func DefaultOptions() Options {
	return Options{Encoding: "utf-8", Limits: DefaultLimits()}
}

// Validate checks o and reports every problem at once, keyed by field.
func (o *Options) Validate() error {
	var errs errsx.Map
	if _, _, err := ResolveEncoding(o.Encoding); err != nil {
		errs.Set("encoding", err)
	}
	if o.ReadBufferSize < 0 || (o.ReadBufferSize > 0 && o.ReadBufferSize < 16) {
		errs.Set("read_buffer_size", fmt.Errorf("must be 0 or at least 16, got %d", o.ReadBufferSize))
	}
	if o.WriteBufferSize < 0 {
		errs.Set("write_buffer_size", fmt.Errorf("must not be negative, got %d", o.WriteBufferSize))
	}
	for name, v := range map[string]int{
		"max_byte_array_len":    o.Limits.MaxByteArrayLen,
		"max_int32_array_len":   o.Limits.MaxInt32ArrayLen,
		"max_int64_array_len":   o.Limits.MaxInt64ArrayLen,
		"max_float64_array_len": o.Limits.MaxFloat64ArrayLen,
		"max_string_array_len":  o.Limits.MaxStringArrayLen,
		"max_string_len":        o.Limits.MaxStringLen,
	} {
		if v <= 0 {
			errs.Set("limits."+name, fmt.Errorf("must be positive, got %d", v))
		}
	}
	return errs.AsError()
}

// ResolveEncoding looks up an IANA encoding name. raw reports UTF-8, whose bytes
// are copied without transcoding.
func ResolveEncoding(name string) (enc encoding.Encoding, raw bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, true, nil
	}
	enc, err = ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, false, fmt.Errorf("serial: unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, false, fmt.Errorf("serial: encoding %q is not supported", name)
	}
	return enc, false, nil
}

// LoadConfig reads Options from a YAML file. Fields the file leaves out keep their defaults.
func LoadConfig(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read config file: %w", err)
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return opts, nil
}

// SaveConfig writes o to a YAML file.
func SaveConfig(o Options, path string) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Environment variables read by OptionsFromEnv.
const (
	EnvEncoding           = "SERIAL_ENCODING"
	EnvReadBufferSize     = "SERIAL_READ_BUFFER_SIZE"
	EnvWriteBufferSize    = "SERIAL_WRITE_BUFFER_SIZE"
	EnvMaxByteArrayLen    = "SERIAL_MAX_BYTE_ARRAY_LEN"
	EnvMaxInt32ArrayLen   = "SERIAL_MAX_INT32_ARRAY_LEN"
	EnvMaxInt64ArrayLen   = "SERIAL_MAX_INT64_ARRAY_LEN"
	EnvMaxFloat64ArrayLen = "SERIAL_MAX_FLOAT64_ARRAY_LEN"
	EnvMaxStringArrayLen  = "SERIAL_MAX_STRING_ARRAY_LEN"
	EnvMaxStringLen       = "SERIAL_MAX_STRING_LEN"
)

// OptionsFromEnv overlays SERIAL_* environment variables on base.
func OptionsFromEnv(base Options) (Options, error) {
	var errs errsx.Map
	if v, ok := os.LookupEnv(EnvEncoding); ok {
		base.Encoding = v
	}
	for env, dst := range map[string]*int{
		EnvReadBufferSize:     &base.ReadBufferSize,
		EnvWriteBufferSize:    &base.WriteBufferSize,
		EnvMaxByteArrayLen:    &base.Limits.MaxByteArrayLen,
		EnvMaxInt32ArrayLen:   &base.Limits.MaxInt32ArrayLen,
		EnvMaxInt64ArrayLen:   &base.Limits.MaxInt64ArrayLen,
		EnvMaxFloat64ArrayLen: &base.Limits.MaxFloat64ArrayLen,
		EnvMaxStringArrayLen:  &base.Limits.MaxStringArrayLen,
		EnvMaxStringLen:       &base.Limits.MaxStringLen,
	} {
		v, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs.Set(env, err)
			continue
		}
		*dst = n
	}
	if !errs.IsEmpty() {
		return Options{}, errs.AsError()
	}
	if err := base.Validate(); err != nil {
		return Options{}, err
	}
	return base, nil
}
