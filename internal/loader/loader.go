// Package loader reads graph descriptions from disk. DOT, CUE, JSON and
// YAML sources are supported; the format is chosen by file extension.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
	"github.com/robert-at-pretension-io/dfg2blif/internal/validator"
)

// Format is a graph description syntax.
type Format int

const (
	FormatUnknown Format = iota
	FormatDOT
	FormatCUE
	FormatJSON
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatDOT:
		return "dot"
	case FormatCUE:
		return "cue"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// ErrUnknownFormat is returned for files whose extension names no
// supported format.
var ErrUnknownFormat = errors.New("unknown graph format")

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return FormatDOT
	case ".cue":
		return FormatCUE
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatUnknown
}

// Loader decodes graph descriptions. CUE and JSON sources are checked
// against the graph schema while they are decoded; DOT and YAML sources
// are returned as read and validated by the caller.
type Loader struct {
	v *validator.Validator
}

// New creates a Loader that decodes CUE and JSON through v.
func New(v *validator.Validator) *Loader {
	return &Loader{v: v}
}

// Load reads and decodes the graph at path. A description without a name
// is named after the file.
func (l *Loader) Load(path string) (*dfg.Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}
	desc, err := l.Decode(data, DetectFormat(path), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if desc.Name == "" {
		desc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return desc, nil
}

// Decode decodes data in the given format. filename is only used in
// diagnostics.
func (l *Loader) Decode(data []byte, format Format, filename string) (*dfg.Description, error) {
	switch format {
	case FormatDOT:
		return ParseDOT(data)
	case FormatCUE, FormatJSON:
		return l.v.DecodeGraph(data, filename)
	case FormatYAML:
		return DecodeYAML(data)
	}
	return nil, fmt.Errorf("%w for %q", ErrUnknownFormat, filename)
}

// DecodeYAML reads a description written in YAML. Unknown keys are
// rejected; scalar attribute values of any type are kept as written.
func DecodeYAML(data []byte) (*dfg.Description, error) {
	var desc dfg.Description
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&desc); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return &desc, nil
}
