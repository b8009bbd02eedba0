package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/notice-postmoa/internal/logger"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. POSTMOA_DIR.
	EnvPrefix = "POSTMOA"

	// Default values
	DefaultLogLevel    = "info"
	DefaultLogFormat   = logger.FormatConsole
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultOutputDir   = "postmoa"
	DefaultWorksheet   = "worksheet.xlsx"
	DefaultFont        = "malgun.ttf"
	DefaultBoldFont    = "malgunbd.ttf"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Flag names, also used as viper keys.
const (
	FlagDir         = "dir"
	FlagOut         = "out"
	FlagWorksheet   = "worksheet"
	FlagLayouts     = "layouts"
	FlagFont        = "font"
	FlagFontBold    = "font-bold"
	FlagMaxFileSize = "maxfilesize"
	FlagLogLevel    = "loglevel"
	FlagLogFormat   = "logformat"
)

// Config holds all configuration for the converter
type Config struct {
	// Notice PDFs are read from InputDirectory; exports go to OutputDirectory
	InputDirectory  string
	OutputDirectory string

	// Worksheet is the xlsx file holding the record table between sessions
	Worksheet string

	// LayoutsFile overrides the built-in layouts when set
	LayoutsFile string

	FontRegular string
	FontBold    string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFormat   string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		InputDirectory:  currentDir,
		OutputDirectory: filepath.Join(currentDir, DefaultOutputDir),
		FontRegular:     DefaultFont,
		FontBold:        DefaultBoldFont,
		Version:         "1.0.0",
		ServerName:      "notice-postmoa",
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// DefineFlags adds the configuration flags to fs with defaults from cfg.
func DefineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String(FlagDir, cfg.InputDirectory, "Directory containing notice PDF files")
	fs.String(FlagOut, cfg.OutputDirectory, "Directory receiving Postmoa workbooks and envelope PDFs")
	fs.String(FlagWorksheet, cfg.Worksheet, "Worksheet (.xlsx) holding the record table (default <out>/"+DefaultWorksheet+")")
	fs.String(FlagLayouts, cfg.LayoutsFile, "YAML file overriding the built-in output layouts")
	fs.String(FlagFont, cfg.FontRegular, "TrueType font for envelope text")
	fs.String(FlagFontBold, cfg.FontBold, "TrueType bold font for the recipient name")
	fs.Int64(FlagMaxFileSize, cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.String(FlagLogLevel, cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, cfg.LogFormat, "Log format (console, json)")
}

// Load builds the configuration from fs and POSTMOA_* environment
// variables. Flags set on the command line win over the environment.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)

	for _, name := range []string{
		FlagDir, FlagOut, FlagWorksheet, FlagLayouts, FlagFont,
		FlagFontBold, FlagMaxFileSize, FlagLogLevel, FlagLogFormat,
	} {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(name, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	populateConfigFromViper(v, cfg)

	if cfg.Worksheet == "" {
		cfg.Worksheet = filepath.Join(cfg.OutputDirectory, DefaultWorksheet)
	}

	cfg.InputDirectory = absPath(cfg.InputDirectory)
	cfg.OutputDirectory = absPath(cfg.OutputDirectory)
	cfg.Worksheet = absPath(cfg.Worksheet)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newViper configures a viper instance with environment variables and
// defaults
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(FlagDir, cfg.InputDirectory)
	v.SetDefault(FlagOut, cfg.OutputDirectory)
	v.SetDefault(FlagWorksheet, cfg.Worksheet)
	v.SetDefault(FlagLayouts, cfg.LayoutsFile)
	v.SetDefault(FlagFont, cfg.FontRegular)
	v.SetDefault(FlagFontBold, cfg.FontBold)
	v.SetDefault(FlagMaxFileSize, cfg.MaxFileSize)
	v.SetDefault(FlagLogLevel, cfg.LogLevel)
	v.SetDefault(FlagLogFormat, cfg.LogFormat)
	return v
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.InputDirectory = v.GetString(FlagDir)
	cfg.OutputDirectory = v.GetString(FlagOut)
	cfg.Worksheet = v.GetString(FlagWorksheet)
	cfg.LayoutsFile = v.GetString(FlagLayouts)
	cfg.FontRegular = v.GetString(FlagFont)
	cfg.FontBold = v.GetString(FlagFontBold)
	cfg.MaxFileSize = v.GetInt64(FlagMaxFileSize)
	cfg.LogLevel = strings.ToLower(v.GetString(FlagLogLevel))
	cfg.LogFormat = strings.ToLower(v.GetString(FlagLogFormat))
}

func absPath(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Validate checks if the configuration is valid. The output directory is
// created when missing.
func (c *Config) Validate() error {
	if c.InputDirectory == "" {
		return errors.New("input directory cannot be empty")
	}
	if info, err := os.Stat(c.InputDirectory); err == nil && !info.IsDir() {
		return fmt.Errorf("input path is not a directory: %s", c.InputDirectory)
	}

	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}
	if _, err := os.Stat(c.OutputDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDirectory, err)
	}

	if c.Worksheet != "" && !strings.EqualFold(filepath.Ext(c.Worksheet), ".xlsx") {
		return fmt.Errorf("worksheet must be an .xlsx file: %s", c.Worksheet)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	if c.LogFormat != logger.FormatConsole && c.LogFormat != logger.FormatJSON {
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.LogFormat)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{InputDirectory: %s, OutputDirectory: %s, Worksheet: %s, Layouts: %s, LogLevel: %s, MaxFileSize: %d}",
		c.InputDirectory, c.OutputDirectory, c.Worksheet, c.LayoutsFile, c.LogLevel, c.MaxFileSize)
}
