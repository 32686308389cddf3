// Package curvefile reads and writes curve description files.
//
// A description lists curves with their type, control points and optional
// per-point data. TOML and YAML are supported and picked by file extension:
//
//	[[curve]]
//	type = "bezier"
//	cyclic = false
//	points = [[0, 0, 0], [1, 1, 0], [2, 0, 0]]
//	handle_type_left = ["auto", "auto", "auto"]
//	handle_type_right = ["auto", "auto", "auto"]
package curvefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	curves "github.com/gogpu/gg-curves"
)

// Format is the encoding of a description file.
type Format int

// Supported formats.
const (
	TOML Format = iota
	YAML
)

// String returns the lower-case name of the format.
func (f Format) String() string {
	switch f {
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Errors returned while reading descriptions.
var (
	ErrUnknownFormat = errors.New("curvefile: unknown format")
	ErrLength        = errors.New("curvefile: per-point data length does not match the points")
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Document is the decoded form of a description file.
type Document struct {
	Curves []Curve `toml:"curve" yaml:"curves"`
}

// Curve describes one curve. Zero values select the library defaults.
type Curve struct {
	Type       curves.CurveType  `toml:"type" yaml:"type"`
	Cyclic     bool              `toml:"cyclic,omitempty" yaml:"cyclic,omitempty"`
	Resolution int32             `toml:"resolution,omitempty" yaml:"resolution,omitempty"`
	Order      int8              `toml:"order,omitempty" yaml:"order,omitempty"`
	KnotsMode  curves.KnotsMode  `toml:"knots_mode,omitempty" yaml:"knots_mode,omitempty"`
	NormalMode curves.NormalMode `toml:"normal_mode,omitempty" yaml:"normal_mode,omitempty"`
	Knots      []float32         `toml:"knots,omitempty" yaml:"knots,omitempty,flow"`

	Points          [][3]float32        `toml:"points" yaml:"points,flow"`
	HandleLeft      [][3]float32        `toml:"handle_left,omitempty" yaml:"handle_left,omitempty,flow"`
	HandleRight     [][3]float32        `toml:"handle_right,omitempty" yaml:"handle_right,omitempty,flow"`
	HandleTypeLeft  []curves.HandleType `toml:"handle_type_left,omitempty" yaml:"handle_type_left,omitempty,flow"`
	HandleTypeRight []curves.HandleType `toml:"handle_type_right,omitempty" yaml:"handle_type_right,omitempty,flow"`
	Weights         []float32           `toml:"weights,omitempty" yaml:"weights,omitempty,flow"`
	Radius          []float32           `toml:"radius,omitempty" yaml:"radius,omitempty,flow"`
	Tilt            []float32           `toml:"tilt,omitempty" yaml:"tilt,omitempty,flow"`
}

// Load reads a description file.
func Load(path string) (*curves.Curves, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes c to a description file.
func Save(path string, c *curves.Curves) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, c, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Decode reads a description and builds validated curves. Unknown keys are
// rejected.
func Decode(r io.Reader, format Format) (*curves.Curves, error) {
	var doc Document
	switch format {
	case TOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", format, err)
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", format, err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	return Build(&doc)
}

// Encode writes c as a description.
func Encode(w io.Writer, c *curves.Curves, format Format) error {
	doc := FromCurves(c)
	switch format {
	case TOML:
		return toml.NewEncoder(w).Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
}
