// Package config handles run configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultSheetName      = "MICs List by CC"
	DefaultWorkFileName   = "ISO10383_MIC.xlsx"
	DefaultObjectKey      = "mic.json"
	DefaultRegion         = "us-east-1"
	DefaultFetchTimeout   = 30 * time.Second
	DefaultPublishTimeout = 60 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config holds the settings for one pipeline run.
type Config struct {
	// Source
	SourceLocation string        `env:"MIC_SOURCE_LOCATION" validate:"required"` // local path or http(s) URL
	SheetName      string        `env:"MIC_SHEET_NAME" validate:"required"`
	SheetRange     string        `env:"MIC_SHEET_RANGE"` // optional A1 range, e.g. A1:Q3000
	WorkFile       string        `env:"MIC_WORK_FILE" validate:"required"`
	FetchTimeout   time.Duration `env:"MIC_FETCH_TIMEOUT" validate:"gt=0"`

	// Destination
	Bucket          string        `env:"MIC_BUCKET" validate:"required_unless=DryRun true"`
	ObjectKey       string        `env:"MIC_OBJECT_KEY" validate:"required"`
	Region          string        `env:"AWS_REGION" validate:"required_unless=DryRun true"`
	Endpoint        string        `env:"MIC_S3_ENDPOINT"` // S3-compatible endpoint override
	AccessKeyID     string        `env:"AWS_ACCESS_KEY_ID" validate:"required_unless=DryRun true"`
	SecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY" validate:"required_unless=DryRun true"`
	SessionToken    string        `env:"AWS_SESSION_TOKEN"`
	PublishTimeout  time.Duration `env:"MIC_PUBLISH_TIMEOUT" validate:"gt=0"`

	// Behavior
	OutputPath string `env:"MIC_OUTPUT_PATH" validate:"required_if=DryRun true"` // local copy of the JSON payload
	DryRun     bool   `env:"MIC_DRY_RUN"`     // convert without publishing
	Pretty     bool   `env:"MIC_PRETTY"`      // indent the JSON payload

	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=text json"`
}

// ConfigurationError reports missing or invalid settings.
type ConfigurationError struct {
	// Fields lists the offending environment variable names, if known.
	Fields []string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Load reads an optional dotenv file and then the environment.
// Variables already present in the environment take precedence over the file.
// When envFile is empty, ./.env is used if it exists. The result is not
// validated; call Validate after applying any overrides.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, &ConfigurationError{Err: fmt.Errorf("load %s: %w", envFile, err)}
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &ConfigurationError{Err: fmt.Errorf("load .env: %w", err)}
	}
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables and applies defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		SourceLocation:  os.Getenv("MIC_SOURCE_LOCATION"),
		SheetName:       os.Getenv("MIC_SHEET_NAME"),
		SheetRange:      os.Getenv("MIC_SHEET_RANGE"),
		WorkFile:        os.Getenv("MIC_WORK_FILE"),
		Bucket:          os.Getenv("MIC_BUCKET"),
		ObjectKey:       os.Getenv("MIC_OBJECT_KEY"),
		Region:          firstEnv("MIC_REGION", "AWS_REGION"),
		Endpoint:        os.Getenv("MIC_S3_ENDPOINT"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		OutputPath:      os.Getenv("MIC_OUTPUT_PATH"),
		LogLevel:        strings.ToLower(os.Getenv("LOG_LEVEL")),
		LogFormat:       strings.ToLower(os.Getenv("LOG_FORMAT")),
	}

	var err error
	if cfg.FetchTimeout, err = durationEnv("MIC_FETCH_TIMEOUT", DefaultFetchTimeout); err != nil {
		return nil, err
	}
	if cfg.PublishTimeout, err = durationEnv("MIC_PUBLISH_TIMEOUT", DefaultPublishTimeout); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = boolEnv("MIC_DRY_RUN"); err != nil {
		return nil, err
	}
	if cfg.Pretty, err = boolEnv("MIC_PRETTY"); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SheetName == "" {
		c.SheetName = DefaultSheetName
	}
	if c.WorkFile == "" {
		c.WorkFile = filepath.Join(os.TempDir(), DefaultWorkFileName)
	}
	if c.ObjectKey == "" {
		c.ObjectKey = DefaultObjectKey
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.PublishTimeout == 0 {
		c.PublishTimeout = DefaultPublishTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their environment variable name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks that all required settings are present and well-formed.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ConfigurationError{Err: err}
	}

	fields := make([]string, 0, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		msgs = append(msgs, describe(fe))
	}
	return &ConfigurationError{
		Fields: fields,
		Err:    errors.New(strings.Join(msgs, "; ")),
	}
}

// Target returns the publish destination described by the configuration.
func (c *Config) Target() models.PublishTarget {
	return models.PublishTarget{
		Bucket:     c.Bucket,
		Key:        c.ObjectKey,
		Region:     c.Region,
		Visibility: models.VisibilityPublicRead,
		Endpoint:   c.Endpoint,
	}
}

// LogValue implements slog.LogValuer. Credentials are never included.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", c.SourceLocation),
		slog.String("sheet", c.SheetName),
		slog.String("work_file", c.WorkFile),
		slog.String("target", c.Target().S3URI()),
		slog.String("region", c.Region),
		slog.Bool("dry_run", c.DryRun),
	)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ConfigurationError{
			Fields: []string{name},
			Err:    fmt.Errorf("%s: %w", name, err),
		}
	}
	return d, nil
}

func boolEnv(name string) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &ConfigurationError{
			Fields: []string{name},
			Err:    fmt.Errorf("%s: invalid boolean %q", name, v),
		}
	}
	return b, nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
