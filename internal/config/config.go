// Package config loads loco settings from defaults, YAML files or CUE files.
//
// YAML files overlay the defaults and reject unknown keys. CUE files are
// unified with the embedded #Config schema, which carries the same defaults,
// and must be concrete after unification. Both paths end in Validate.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/loco/internal/extract"
	"github.com/roach88/loco/internal/ingest"
	"github.com/roach88/loco/internal/query"
)

//go:embed schema.cue
var schemaSource string

// ErrInvalidConfig is returned when a config file fails to parse or validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable setting.
type Config struct {
	Detection    Detection `yaml:"detection" json:"detection"`
	Ingest       Ingest    `yaml:"ingest" json:"ingest"`
	Log          Log       `yaml:"log" json:"log"`
	DefaultQuery string    `yaml:"default_query" json:"default_query"`
}

// Detection holds the extraction parameters.
type Detection struct {
	NumSplits           int  `yaml:"num_splits" json:"num_splits"`
	Limit               int  `yaml:"limit" json:"limit"`
	MinObservations     int  `yaml:"min_observations" json:"min_observations"`
	MaxPatterns         int  `yaml:"max_patterns" json:"max_patterns"`
	ValuePlusOriginator bool `yaml:"value_plus_originator" json:"value_plus_originator"`
}

// Ingest holds the file ingestion parameters.
type Ingest struct {
	ReadCap    int64    `yaml:"read_cap" json:"read_cap"`
	Extensions []string `yaml:"extensions" json:"extensions"`
}

// Log holds logging parameters.
type Log struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	d := extract.DefaultOptions()
	return Config{
		Detection: Detection{
			NumSplits:           d.NumSplits,
			Limit:               d.Limit,
			MinObservations:     d.MinObservations,
			MaxPatterns:         d.MaxPatterns,
			ValuePlusOriginator: d.ValuePlusOriginator,
		},
		Ingest: Ingest{
			ReadCap:    ingest.DefaultReadCap,
			Extensions: append([]string(nil), ingest.DefaultExtensions...),
		},
		Log:          Log{Level: "info"},
		DefaultQuery: query.Default,
	}
}

// Load reads path and returns the resulting settings. An empty path yields
// Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(data)
	case ".cue":
		cfg, err = decodeCUE(path, data)
	default:
		err = fmt.Errorf("unsupported config extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeYAML(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		// An empty document leaves the defaults in place.
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

func decodeCUE(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return Config{}, firstCUEError(err)
	}
	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, firstCUEError(err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, firstCUEError(err)
	}
	return cfg, nil
}

// firstCUEError reduces a CUE error list to its first entry, keeping the
// position when there is one.
func firstCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if pos := cueerrors.Positions(first); len(pos) > 0 && pos[0].IsValid() {
		return fmt.Errorf("%s: %w", pos[0], first)
	}
	return first
}

// Validate checks ranges and enumerations. The returned error wraps
// ErrInvalidConfig.
func (c Config) Validate() error {
	var problems []string
	d := c.Detection
	if d.NumSplits < 1 {
		problems = append(problems, "detection.num_splits must be at least 1")
	}
	if d.Limit < 0 {
		problems = append(problems, "detection.limit must not be negative")
	}
	if d.MinObservations < 0 {
		problems = append(problems, "detection.min_observations must not be negative")
	}
	if d.MaxPatterns < 0 {
		problems = append(problems, "detection.max_patterns must not be negative")
	}
	if c.Ingest.ReadCap <= 0 {
		problems = append(problems, "ingest.read_cap must be positive")
	}
	if len(c.Ingest.Extensions) == 0 {
		problems = append(problems, "ingest.extensions must not be empty")
	}
	for _, ext := range c.Ingest.Extensions {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("ingest.extensions: %q must start with '.'", ext))
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := query.Parse(c.DefaultQuery); err != nil {
		problems = append(problems, fmt.Sprintf("default_query: %v", err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level: unknown level %q", name)
}

// Options converts the detection settings.
func (c Config) Options() extract.Options {
	return extract.Options{
		NumSplits:           c.Detection.NumSplits,
		Limit:               c.Detection.Limit,
		MinObservations:     c.Detection.MinObservations,
		MaxPatterns:         c.Detection.MaxPatterns,
		ValuePlusOriginator: c.Detection.ValuePlusOriginator,
	}
}
