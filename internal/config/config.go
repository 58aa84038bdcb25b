package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults for a configuration that sets nothing.
const (
	DefaultModelName    = "my_circuit"
	DefaultOutput       = "my_circuit.blif"
	DefaultChannelWidth = 32
	DefaultHeader       = "BLIF netlist of DFG circuit"
	DefaultSinkSuffix   = "_sink"
	DefaultTimingPath   = "dfg2blif_timing.jsonl"
)

// MaxChannelWidth bounds defaultChannelWidth the same way port widths are
// bounded.
const MaxChannelWidth = 1 << 24

// Config is the top-level configuration for dfg2blif
type Config struct {
	// ModelName is written after .model
	ModelName string `json:"modelName,omitempty" yaml:"modelName,omitempty" validate:"required,blif_token"`

	// Output is the netlist path for a single graph; "-" writes to stdout
	Output string `json:"output,omitempty" yaml:"output,omitempty" validate:"required"`

	// OutputDir receives one <graph>.blif per input when translating the
	// configured Inputs
	OutputDir string `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`

	// DefaultChannelWidth is used when a graph has no channel_width
	DefaultChannelWidth int `json:"defaultChannelWidth,omitempty" yaml:"defaultChannelWidth,omitempty" validate:"gt=0,lte=16777216"`

	// Header is the comment on the first line of the netlist
	Header string `json:"header,omitempty" yaml:"header,omitempty" validate:"single_line"`

	// Timestamp adds a "#### File Created:" line to the netlist
	Timestamp bool `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`

	// SinkSuffix names the Exit node synthesized for a store without outputs
	SinkSuffix string `json:"sinkSuffix,omitempty" yaml:"sinkSuffix,omitempty" validate:"required,blif_token"`

	// Inputs is a list of glob patterns (with ** support) of graphs to
	// translate when no graph is named on the command line
	Inputs []string `json:"inputs,omitempty" yaml:"inputs,omitempty" validate:"dive,required"`

	// Exclude is a list of glob patterns removed from Inputs
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" validate:"dive,required"`

	// Timing controls per-stage timing records
	Timing TimingConfig `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// TimingConfig controls the JSONL stage timing recorder
type TimingConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty" validate:"required_if=Enabled true"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("blif_token", validateBLIFToken)
	_ = validate.RegisterValidation("single_line", validateSingleLine)
}

// validateBLIFToken accepts names that stay one token in a netlist line.
func validateBLIFToken(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && !strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '=' || r == '\\' || r == '#'
	})
}

func validateSingleLine(fl validator.FieldLevel) bool {
	return !strings.ContainsAny(fl.Field().String(), "\r\n")
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		ModelName:           DefaultModelName,
		Output:              DefaultOutput,
		DefaultChannelWidth: DefaultChannelWidth,
		Header:              DefaultHeader,
		SinkSuffix:          DefaultSinkSuffix,
		Timing: TimingConfig{
			Path: DefaultTimingPath,
		},
	}
}

// Load finds and loads the configuration file
// Search order:
//  1. ./dfg2blif.json (current working directory)
//  2. ./.dfg2blif.json (current working directory)
//  3. ./dfg2blif.yaml (current working directory)
//  4. <graph dir>/dfg2blif.json (if different from cwd)
//  5. ~/.config/dfg2blif/config.json
//
// Returns DefaultConfig if no config file is found
func Load(graphPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "dfg2blif.json"),
		filepath.Join(cwd, ".dfg2blif.json"),
		filepath.Join(cwd, "dfg2blif.yaml"),
	}

	if graphPath != "" {
		dir := graphPath
		if info, err := os.Stat(graphPath); err != nil || !info.IsDir() {
			dir = filepath.Dir(graphPath)
		}
		absDir, _ := filepath.Abs(dir)
		if absDir != cwd {
			searchPaths = append(searchPaths, filepath.Join(dir, "dfg2blif.json"))
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "dfg2blif", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.ModelName == "" {
		c.ModelName = DefaultModelName
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.DefaultChannelWidth == 0 {
		c.DefaultChannelWidth = DefaultChannelWidth
	}
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.SinkSuffix == "" {
		c.SinkSuffix = DefaultSinkSuffix
	}
	if c.Timing.Path == "" {
		c.Timing.Path = DefaultTimingPath
	}
}

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, describeFieldError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describeFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required", "required_if":
		return field + ": field is required"
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s: must not exceed %s", field, e.Param())
	case "blif_token":
		return field + ": must not contain whitespace, '=', '\\' or '#'"
	case "single_line":
		return field + ": must be a single line"
	}
	return fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
}

// Save writes the configuration to a file in JSON, or YAML when the path
// ends in .yaml or .yml.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// OutputFor returns where the netlist of the graph at graphPath goes. With
// an OutputDir set every graph gets its own file named after it; otherwise
// the single Output path is used.
func (c *Config) OutputFor(graphPath string) string {
	if c.OutputDir == "" {
		return c.Output
	}
	base := strings.TrimSuffix(filepath.Base(graphPath), filepath.Ext(graphPath))
	return filepath.Join(c.OutputDir, base+".blif")
}
