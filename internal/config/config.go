// Package config loads the triplecheck CLI configuration from a YAML file,
// optional .env files and TRIPLECHECK_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/triplecheck"
	"github.com/hupe1980/triplecheck/presence"
	"github.com/hupe1980/triplecheck/snapshot"
	"github.com/hupe1980/triplecheck/sqlstore"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRIPLECHECK_"

// Source drivers.
const (
	DriverSQLite   = sqlstore.DriverSQLite
	DriverPostgres = sqlstore.DriverPostgres
	DriverNTriples = "ntriples"
)

// Snapshot stores.
const (
	StoreLocal = "local"
	StoreMinIO = "minio"
	StoreS3    = "s3"
)

// Config holds all configuration for the CLI.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Bitmap   BitmapConfig   `yaml:"bitmap"`
	Throttle ThrottleConfig `yaml:"throttle"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Log      LogConfig      `yaml:"log"`
}

// SourceConfig selects the statement source and dictionary.
type SourceConfig struct {
	Driver    string `yaml:"driver"` // "sqlite3", "postgres" or "ntriples"
	DSN       string `yaml:"dsn"`
	Path      string `yaml:"path"` // N-Triples dump
	Namespace string `yaml:"namespace"`
}

// BitmapConfig holds presence bitmap settings.
type BitmapConfig struct {
	Path    string `yaml:"path"`
	MapSize int64  `yaml:"map_size"`
}

// ThrottleConfig holds rate limits. Zero means unlimited.
type ThrottleConfig struct {
	StatementsPerSec int   `yaml:"statements_per_sec"`
	IOBytesPerSec    int64 `yaml:"io_bytes_per_sec"`
}

// SnapshotConfig selects where snapshots are stored.
type SnapshotConfig struct {
	Store     string `yaml:"store"` // "local", "minio" or "s3"
	Codec     string `yaml:"codec"`
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Bitmap: BitmapConfig{
			MapSize: presence.MapSize,
		},
		Snapshot: SnapshotConfig{
			Store: StoreLocal,
			Codec: snapshot.CodecZstd.String(),
			Dir:   "snapshots",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (if non-empty), applies environment
// overrides and validates the result. Variables from envFiles are used when
// the process environment does not set them; missing env files are ignored.
// With no envFiles, ".env" in the working directory is tried.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, triplecheck.NewError(triplecheck.KindConfig, "load", err)
		}
		if err := decodeYAML(data, cfg); err != nil {
			return nil, triplecheck.NewError(triplecheck.KindConfig, "load", fmt.Errorf("%s: %w", path, err))
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, triplecheck.NewError(triplecheck.KindConfig, "load", err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, triplecheck.NewError(triplecheck.KindConfig, "env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, f := range files {
		vars, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		for k, v := range vars {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	env := envReader{lookup: lookup}

	env.str("SOURCE_DRIVER", &c.Source.Driver)
	env.str("SOURCE_DSN", &c.Source.DSN)
	env.str("SOURCE_PATH", &c.Source.Path)
	env.str("SOURCE_NAMESPACE", &c.Source.Namespace)

	env.str("BITMAP_PATH", &c.Bitmap.Path)
	env.int64("BITMAP_MAP_SIZE", &c.Bitmap.MapSize)

	env.int("THROTTLE_STATEMENTS_PER_SEC", &c.Throttle.StatementsPerSec)
	env.int64("THROTTLE_IO_BYTES_PER_SEC", &c.Throttle.IOBytesPerSec)

	env.str("SNAPSHOT_STORE", &c.Snapshot.Store)
	env.str("SNAPSHOT_CODEC", &c.Snapshot.Codec)
	env.str("SNAPSHOT_DIR", &c.Snapshot.Dir)
	env.str("SNAPSHOT_BUCKET", &c.Snapshot.Bucket)
	env.str("SNAPSHOT_PREFIX", &c.Snapshot.Prefix)
	env.str("SNAPSHOT_ENDPOINT", &c.Snapshot.Endpoint)
	env.str("SNAPSHOT_REGION", &c.Snapshot.Region)
	env.str("SNAPSHOT_ACCESS_KEY", &c.Snapshot.AccessKey)
	env.str("SNAPSHOT_SECRET_KEY", &c.Snapshot.SecretKey)
	env.bool("SNAPSHOT_SECURE", &c.Snapshot.Secure)

	env.str("LOG_LEVEL", &c.Log.Level)
	env.str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(env.errs...)
}

// envReader collects parse failures instead of silently keeping defaults.
type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, &FieldError{Field: EnvPrefix + key, Message: fmt.Sprintf("not an integer: %q", v)})
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.errs = append(e.errs, &FieldError{Field: EnvPrefix + key, Message: fmt.Sprintf("not an integer: %q", v)})
			return
		}
		*dst = n
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, &FieldError{Field: EnvPrefix + key, Message: fmt.Sprintf("not a boolean: %q", v)})
			return
		}
		*dst = b
	}
}

// FieldError is a configuration value that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the configuration for consistency. A missing source is
// not an error here; commands that need one call RequireSource.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &FieldError{Field: field, Message: msg})
	}

	switch c.Source.Driver {
	case "":
	case DriverSQLite, DriverPostgres:
		if c.Source.DSN == "" {
			add("source.dsn", "required for driver "+c.Source.Driver)
		}
	case DriverNTriples:
		if c.Source.Path == "" {
			add("source.path", "required for driver ntriples")
		}
	default:
		add("source.driver", fmt.Sprintf("unknown driver %q", c.Source.Driver))
	}

	if c.Bitmap.MapSize <= 0 {
		add("bitmap.map_size", "must be positive")
	}
	if c.Throttle.StatementsPerSec < 0 {
		add("throttle.statements_per_sec", "must not be negative")
	}
	if c.Throttle.IOBytesPerSec < 0 {
		add("throttle.io_bytes_per_sec", "must not be negative")
	}

	switch c.Snapshot.Store {
	case StoreLocal:
		if c.Snapshot.Dir == "" {
			add("snapshot.dir", "required for store local")
		}
	case StoreMinIO:
		if c.Snapshot.Endpoint == "" {
			add("snapshot.endpoint", "required for store minio")
		}
		if c.Snapshot.Bucket == "" {
			add("snapshot.bucket", "required for store minio")
		}
	case StoreS3:
		if c.Snapshot.Bucket == "" {
			add("snapshot.bucket", "required for store s3")
		}
	default:
		add("snapshot.store", fmt.Sprintf("unknown store %q", c.Snapshot.Store))
	}
	if _, err := snapshot.ParseCodec(c.Snapshot.Codec); err != nil {
		add("snapshot.codec", fmt.Sprintf("unknown codec %q", c.Snapshot.Codec))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		add("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		add("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}

	return triplecheck.NewError(triplecheck.KindConfig, "validate", errors.Join(errs...))
}

// RequireSource reports a KindConfig error when no statement source is set.
func (c *Config) RequireSource() error {
	if c.Source.Driver == "" {
		return triplecheck.NewError(triplecheck.KindConfig, "validate",
			&FieldError{Field: "source.driver", Message: "no statement source configured"})
	}
	return nil
}

// SlogLevel parses the configured log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	err := lvl.UnmarshalText([]byte(l.Level))
	return lvl, err
}
