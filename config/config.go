// Package config reads and writes .sahaj.yaml and applies environment overrides.
//
// The file is optional. Every field has a default, environment variables
// override the file, and command-line flags override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sahaj-english/sahaj/freetranslate"
	"github.com/sahaj-english/sahaj/provider"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .sahaj.yaml structure.
type File struct {
	// Provider is the default provider ID (default "google-translate").
	Provider string `yaml:"provider,omitempty"`
	// SourceLang is sent to the free endpoint (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`
	// TargetLang is the learner's language (default "bn").
	TargetLang string `yaml:"target_lang,omitempty"`
	// Proxy is an optional HTTP/HTTPS proxy URL for provider calls.
	Proxy string `yaml:"proxy,omitempty"`
	// PromptsFile overrides the prompt override file location.
	PromptsFile string `yaml:"prompts_file,omitempty"`
	// LogLevel is a zerolog level name (default "info").
	LogLevel string `yaml:"log_level,omitempty"`

	Batch     Batch                       `yaml:"batch,omitempty"`
	Cache     Cache                       `yaml:"cache,omitempty"`
	Server    Server                      `yaml:"server,omitempty"`
	Providers map[string]ProviderOverride `yaml:"providers,omitempty"`

	// APIKey is read from the environment or flags only; it is never
	// written to disk.
	APIKey string `yaml:"-"`
}

// Batch tunes the free-endpoint batch runs.
type Batch struct {
	SentenceSize  int           `yaml:"sentence_size,omitempty"`
	SentenceDelay time.Duration `yaml:"sentence_delay,omitempty"`
	WordSize      int           `yaml:"word_size,omitempty"`
	WordDelay     time.Duration `yaml:"word_delay,omitempty"`
	RetryBackoff  time.Duration `yaml:"retry_backoff,omitempty"`
	CallTimeout   time.Duration `yaml:"call_timeout,omitempty"`
}

// Cache bounds the meaning cache. Zero means unbounded.
type Cache struct {
	MaxEntries int `yaml:"max_entries,omitempty"`
}

// Server configures `sahaj serve`.
type Server struct {
	Addr string `yaml:"addr,omitempty"`
	// AllowedOrigins lists websocket origins; empty allows any.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// ProviderOverride replaces parts of a built-in provider descriptor.
type ProviderOverride struct {
	Model    string        `yaml:"model,omitempty"`
	Endpoint string        `yaml:"endpoint,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = ".sahaj.yaml"

// DefaultAddr is the listen address of `sahaj serve`.
const DefaultAddr = ":8080"

// Default returns the configuration used when no file exists.
func Default() *File {
	return &File{
		Provider:   string(provider.GoogleTranslate),
		SourceLang: "en",
		TargetLang: "bn",
		LogLevel:   "info",
		Batch: Batch{
			SentenceSize:  freetranslate.DefaultSentenceBatchSize,
			SentenceDelay: freetranslate.DefaultSentenceDelay,
			WordSize:      freetranslate.DefaultWordBatchSize,
			WordDelay:     freetranslate.DefaultWordDelay,
			RetryBackoff:  freetranslate.DefaultRetryBackoff,
			CallTimeout:   freetranslate.DefaultCallTimeout,
		},
		Server: Server{Addr: DefaultAddr},
	}
}

// fillDefaults sets zero fields of f from Default().
func (f *File) fillDefaults() {
	d := Default()
	if f.Provider == "" {
		f.Provider = d.Provider
	}
	if f.SourceLang == "" {
		f.SourceLang = d.SourceLang
	}
	if f.TargetLang == "" {
		f.TargetLang = d.TargetLang
	}
	if f.LogLevel == "" {
		f.LogLevel = d.LogLevel
	}
	if f.Batch.SentenceSize == 0 {
		f.Batch.SentenceSize = d.Batch.SentenceSize
	}
	if f.Batch.SentenceDelay == 0 {
		f.Batch.SentenceDelay = d.Batch.SentenceDelay
	}
	if f.Batch.WordSize == 0 {
		f.Batch.WordSize = d.Batch.WordSize
	}
	if f.Batch.WordDelay == 0 {
		f.Batch.WordDelay = d.Batch.WordDelay
	}
	if f.Batch.RetryBackoff == 0 {
		f.Batch.RetryBackoff = d.Batch.RetryBackoff
	}
	if f.Batch.CallTimeout == 0 {
		f.Batch.CallTimeout = d.Batch.CallTimeout
	}
	if f.Server.Addr == "" {
		f.Server.Addr = d.Server.Addr
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads and validates .sahaj.yaml from dir. A missing file yields
// Default().
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.fillDefaults()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Validate checks provider IDs and numeric ranges.
func (f *File) Validate() error {
	known := provider.DefaultProviders()
	if _, ok := known[provider.ID(f.Provider)]; !ok {
		return fmt.Errorf("unknown provider %q (valid: %s)", f.Provider, validIDs(known))
	}
	for id := range f.Providers {
		if _, ok := known[provider.ID(id)]; !ok {
			return fmt.Errorf("providers: unknown provider %q", id)
		}
	}
	if f.Batch.SentenceSize < 0 || f.Batch.WordSize < 0 {
		return fmt.Errorf("batch sizes must not be negative")
	}
	if f.Batch.SentenceDelay < 0 || f.Batch.WordDelay < 0 || f.Batch.RetryBackoff < 0 || f.Batch.CallTimeout < 0 {
		return fmt.Errorf("batch durations must not be negative")
	}
	if f.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative")
	}
	return nil
}

func validIDs(m map[provider.ID]provider.Descriptor) string {
	ids := provider.SortedIDs(m)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return strings.Join(out, ", ")
}

// Save writes f to dir/.sahaj.yaml. The API key is never written.
func (f *File) Save(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	data, err := yaml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

// Environment variable names read by ApplyEnv.
const (
	EnvAPIKey     = "SAHAJ_API_KEY"
	EnvProvider   = "SAHAJ_PROVIDER"
	EnvAddr       = "SAHAJ_ADDR"
	EnvTargetLang = "SAHAJ_TARGET_LANG"
	EnvProxy      = "SAHAJ_PROXY"
	EnvCacheMax   = "SAHAJ_CACHE_MAX"
	EnvLogLevel   = "LOG_LEVEL"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// ApplyEnv overlays environment variables on f and revalidates.
func (f *File) ApplyEnv() error {
	f.APIKey = getenv(EnvAPIKey, f.APIKey)
	f.Provider = getenv(EnvProvider, f.Provider)
	f.Server.Addr = getenv(EnvAddr, f.Server.Addr)
	f.TargetLang = getenv(EnvTargetLang, f.TargetLang)
	f.Proxy = getenv(EnvProxy, f.Proxy)
	f.Cache.MaxEntries = getenvInt(EnvCacheMax, f.Cache.MaxEntries)
	f.LogLevel = getenv(EnvLogLevel, f.LogLevel)
	return f.Validate()
}
