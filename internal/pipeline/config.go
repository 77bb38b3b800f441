package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for configuration formats other than JSON,
// YAML and TOML.
var ErrUnknownFormat = errors.New("unknown configuration format")

// Config is the serialized form of a pipeline. It holds names and parameters
// only; transforms are resolved again by Load.
type Config struct {
	Name       string          `json:"name" yaml:"name" toml:"name"`
	Operations []OperationInfo `json:"operations" yaml:"operations" toml:"operations"`
}

// LoadReport lists the outcome of each serialized operation seen by Load, in
// configuration order.
type LoadReport struct {
	Entries []LoadEntry
}

// LoadEntry is the outcome for one serialized operation.
type LoadEntry struct {
	Name   string
	Result Result // Applied or Skipped
}

// Loaded returns the number of operations that were resolved.
func (r LoadReport) Loaded() int {
	n := 0
	for _, e := range r.Entries {
		if e.Result == Applied {
			n++
		}
	}
	return n
}

// Skipped returns the names that the registry did not resolve.
func (r LoadReport) Skipped() []string {
	var names []string
	for _, e := range r.Entries {
		if e.Result == Skipped {
			names = append(names, e.Name)
		}
	}
	return names
}

// Save returns the pipeline configuration. The result shares no state with
// the pipeline and is safe to persist.
func (p *Pipeline) Save() Config {
	return Config{
		Name:       p.name,
		Operations: p.Operations(),
	}
}

// Load replaces the pipeline name and operation list with cfg, resolving each
// operation name against registry. Names missing from the registry are
// dropped without error and reported as Skipped. Snapshots are cleared since
// they describe the previous operation list.
func (p *Pipeline) Load(cfg Config, registry Registry) LoadReport {
	p.name = cfg.Name
	if p.name == "" {
		p.name = DefaultName
	}
	p.steps = nil
	p.snapshots = make(map[int]image.Image)

	report := LoadReport{Entries: make([]LoadEntry, 0, len(cfg.Operations))}
	for _, oc := range cfg.Operations {
		op, ok := registry.Lookup(oc.Name)
		if !ok {
			report.Entries = append(report.Entries, LoadEntry{Name: oc.Name, Result: Skipped})
			continue
		}
		p.AddOperation(oc.Name, op, oc.Params)
		report.Entries = append(report.Entries, LoadEntry{Name: oc.Name, Result: Applied})
	}
	return report
}

// FromConfig builds a new pipeline from cfg. See Load.
func FromConfig(cfg Config, registry Registry) (*Pipeline, LoadReport) {
	p := New(cfg.Name)
	report := p.Load(cfg, registry)
	return p, report
}

// Format identifies a configuration encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// EncodeConfig writes cfg to w in the given format.
func EncodeConfig(w io.Writer, cfg Config, format Format) error {
	cfg = normalizeConfig(cfg)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// DecodeConfig reads a configuration in the given format from r.
func DecodeConfig(r io.Reader, format Format) (Config, error) {
	var cfg Config
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&cfg)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&cfg)
	case FormatTOML:
		err = toml.NewDecoder(r).Decode(&cfg)
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode %s pipeline config: %w", format, err)
	}
	return cfg, nil
}

// ReadConfigFile decodes a pipeline configuration file. The format follows
// the file extension.
func ReadConfigFile(path string) (Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read pipeline config: %w", err)
	}
	return DecodeConfig(bytes.NewReader(data), format)
}

// WriteConfigFile encodes cfg to path. The format follows the file extension.
func WriteConfigFile(path string, cfg Config) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodeConfig(&buf, cfg, format); err != nil {
		return fmt.Errorf("failed to encode pipeline config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write pipeline config: %w", err)
	}
	return nil
}

// normalizeConfig replaces nil parameter bags with empty ones so every
// encoding emits an (empty) params object.
func normalizeConfig(cfg Config) Config {
	ops := make([]OperationInfo, len(cfg.Operations))
	for i, op := range cfg.Operations {
		ops[i] = OperationInfo{Name: op.Name, Params: op.Params.Clone()}
	}
	cfg.Operations = ops
	return cfg
}
