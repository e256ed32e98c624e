// Package config loads CLI settings from an optional YAML file and SGFDATA_*
// environment variables. Command line flags are applied on top by the
// commands themselves.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/sgfdata/internal/blob"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "SGFDATA_"

// DefaultFile is looked up in the working directory when no file is named.
const DefaultFile = "sgfdata.yaml"

// Tools names the external programs used for geodesy.
type Tools struct {
	CS2CS            string `yaml:"cs2cs"`
	GDALLocationInfo string `yaml:"gdallocationinfo"`
}

// Config holds every setting.
type Config struct {
	// MetadataDir replaces the embedded metadata tables when set.
	MetadataDir    string `yaml:"metadata_dir"`
	InputEncoding  string `yaml:"input_encoding"`
	OutputEncoding string `yaml:"output_encoding"`
	// Projection is the target EPSG code of the coordinates stage.
	Projection  int           `yaml:"projection"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	Language    string        `yaml:"language"`
	Parallelism int           `yaml:"parallelism"`
	MetricsFile string        `yaml:"metrics_file"`
	S3          blob.S3Config `yaml:"s3"`
	Tools       Tools         `yaml:"tools"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OutputEncoding: "latin-1",
		LogLevel:       "info",
		LogFormat:      "text",
		Language:       "en",
		Parallelism:    runtime.NumCPU(),
		Tools:          Tools{CS2CS: "cs2cs", GDALLocationInfo: "gdallocationinfo"},
	}
}

// Load returns Default overlaid with the YAML file at path and then the
// environment. An empty path falls back to $SGFDATA_CONFIG and then to
// DefaultFile; only an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		if v, ok := os.LookupEnv(EnvPrefix + "CONFIG"); ok && v != "" {
			path, explicit = v, true
		} else {
			path = DefaultFile
		}
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from SGFDATA_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
	str("METADATA_DIR", &c.MetadataDir)
	str("INPUT_ENCODING", &c.InputEncoding)
	str("OUTPUT_ENCODING", &c.OutputEncoding)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("LANG", &c.Language)
	str("METRICS_FILE", &c.MetricsFile)
	str("S3_REGION", &c.S3.Region)
	str("S3_ENDPOINT", &c.S3.Endpoint)
	str("CS2CS", &c.Tools.CS2CS)
	str("GDALLOCATIONINFO", &c.Tools.GDALLocationInfo)
	if v, ok := lookup(EnvPrefix + "S3_PATH_STYLE"); ok {
		c.S3.PathStyle = strings.EqualFold(v, "true") || v == "1"
	}
	if err := num("PROJECTION", &c.Projection); err != nil {
		return err
	}
	return num("PARALLELISM", &c.Parallelism)
}

// Validate rejects settings no command can work with.
func (c Config) Validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("config: parallelism must be positive, got %d", c.Parallelism)
	}
	if c.Projection < 0 {
		return fmt.Errorf("config: projection must be an EPSG code, got %d", c.Projection)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}
