// Package scenario loads fleets and freight backlogs from YAML or JSON files.
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/freightsim/core/model"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported scenario format")

// Format identifies the encoding of a scenario document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Scenario is a fleet and the freights it must carry.
type Scenario struct {
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Vehicles []model.Vehicle `json:"vehicles" yaml:"vehicles"`
	Freights []model.Freight `json:"freights" yaml:"freights"`
}

// Validate checks every record and rejects duplicate ids.
func (s Scenario) Validate() error {
	seen := make(map[string]struct{}, len(s.Vehicles))
	for i, v := range s.Vehicles {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("vehicles[%d]: %w", i, err)
		}
		if _, ok := seen[v.ID]; ok {
			return fmt.Errorf("vehicles[%d]: duplicate id %s", i, v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(s.Freights))
	for i, f := range s.Freights {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("freights[%d]: %w", i, err)
		}
		if _, ok := seen[f.ID]; ok {
			return fmt.Errorf("freights[%d]: duplicate id %s", i, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads and validates the scenario stored at path.
func Load(path string) (*Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Decode parses and validates a scenario document.
func Decode(r io.Reader, format Format) (*Scenario, error) {
	var s Scenario
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
