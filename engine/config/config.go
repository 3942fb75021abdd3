// Package config loads the YAML configuration of the oxygl demo: window settings, the shader
// program pair, the meshes to upload and loop options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"gopkg.in/yaml.v3"
)

// MeshKind selects the Renderable variant a mesh entry builds.
type MeshKind string

const (
	MeshKindColored  MeshKind = "colored"
	MeshKindTextured MeshKind = "textured"
)

// Default values applied to zero fields by Normalize.
const (
	DefaultTitle    = "Hello WORLD!"
	DefaultWidth    = 500
	DefaultHeight   = 500
	DefaultVertex   = "/shaders/textured.vert"
	DefaultFragment = "/shaders/textured.frag"
	DefaultLogLevel = "info"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the root of the configuration file.
type Config struct {
	Window     WindowConfig   `yaml:"window"`
	ClearColor []float32      `yaml:"clear_color"`
	Program    ProgramConfig  `yaml:"program"`
	Meshes     []MeshConfig   `yaml:"meshes"`
	Profiling  bool           `yaml:"profiling"`
	FrameLimit float64        `yaml:"frame_limit"`
	Headless   HeadlessConfig `yaml:"headless"`
	LogLevel   string         `yaml:"log_level"`
}

// WindowConfig mirrors the window builder options.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	VSync     *bool  `yaml:"vsync"`
	Resizable *bool  `yaml:"resizable"`
}

// ProgramConfig names the two shader stages and any explicit attribute slots.
type ProgramConfig struct {
	Label      string            `yaml:"label"`
	Vertex     string            `yaml:"vertex"`
	Fragment   string            `yaml:"fragment"`
	Attributes []AttributeConfig `yaml:"attributes"`
}

// AttributeConfig binds a vertex input name to a slot before linking.
type AttributeConfig struct {
	Slot uint32 `yaml:"slot"`
	Name string `yaml:"name"`
}

// MeshConfig is one mesh uploaded at startup.
type MeshConfig struct {
	Label        string    `yaml:"label"`
	Kind         MeshKind  `yaml:"kind"`
	PositionSize int       `yaml:"position_size"`
	Positions    []float32 `yaml:"positions"`
	Colors       []float32 `yaml:"colors"`
	TexCoords    []float32 `yaml:"tex_coords"`
	Indices      []uint16  `yaml:"indices"`
}

// HeadlessConfig controls runs without a window.
type HeadlessConfig struct {
	// Frames is the frame budget of a headless run. 0 means run until stopped.
	Frames int `yaml:"frames"`
}

// Load reads and parses a configuration file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *Config: the normalized, validated configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a YAML document. Unknown keys are rejected.
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - *Config: the normalized, validated configuration
//   - error: error if the document cannot be parsed or validated
func Decode(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse is Decode over a byte slice.
func Parse(data []byte) (*Config, error) {
	return Decode(bytes.NewReader(data))
}

// Default returns the configuration used when no file is given: the textured quad demo.
func Default() *Config {
	cfg := &Config{
		Meshes: []MeshConfig{{
			Label:        "quad",
			Kind:         MeshKindTextured,
			PositionSize: 3,
			Positions: []float32{
				-0.5, 0.5, 0,
				-0.5, -0.5, 0,
				0.5, 0.5, 0,
				0.5, -0.5, 0,
			},
			Indices: []uint16{0, 1, 2, 1, 2, 3},
		}},
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills zero fields with defaults.
func (c *Config) Normalize() {
	c.Window.Title = common.Coalesce(c.Window.Title, DefaultTitle)
	c.Window.Width = common.Coalesce(c.Window.Width, DefaultWidth)
	c.Window.Height = common.Coalesce(c.Window.Height, DefaultHeight)
	c.Program.Label = common.Coalesce(c.Program.Label, "main")
	c.Program.Vertex = common.Coalesce(c.Program.Vertex, DefaultVertex)
	c.Program.Fragment = common.Coalesce(c.Program.Fragment, DefaultFragment)
	c.LogLevel = strings.ToLower(common.Coalesce(c.LogLevel, DefaultLogLevel))
	if len(c.ClearColor) == 0 {
		c.ClearColor = []float32{0, 0, 0, 0}
	}
	for i := range c.Meshes {
		m := &c.Meshes[i]
		m.Kind = MeshKind(strings.ToLower(string(common.Coalesce(m.Kind, MeshKindColored))))
		m.Label = common.Coalesce(m.Label, fmt.Sprintf("mesh-%d", i))
		if m.PositionSize == 0 {
			m.PositionSize = 2
			if m.Kind == MeshKindTextured {
				m.PositionSize = 3
			}
		}
	}
}

// Validate checks ranges and enumerations. Mesh data itself is validated by the mesh
// constructors and by preflight.
//
// Returns:
//   - error: an error wrapping ErrInvalid, or nil
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height))
	}
	if _, err := common.ColorFromSlice(c.ClearColor); err != nil {
		errs = append(errs, fmt.Errorf("%w: clear_color: %v", ErrInvalid, err))
	}
	if c.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("%w: frame_limit %g is negative", ErrInvalid, c.FrameLimit))
	}
	if c.Headless.Frames < 0 {
		errs = append(errs, fmt.Errorf("%w: headless.frames %d is negative", ErrInvalid, c.Headless.Frames))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[uint32]string)
	for _, a := range c.Program.Attributes {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("%w: attribute at slot %d has no name", ErrInvalid, a.Slot))
			continue
		}
		if prev, ok := seen[a.Slot]; ok {
			errs = append(errs, fmt.Errorf("%w: slot %d bound to both %q and %q", ErrInvalid, a.Slot, prev, a.Name))
		}
		seen[a.Slot] = a.Name
	}
	for _, m := range c.Meshes {
		switch m.Kind {
		case MeshKindColored, MeshKindTextured:
		default:
			errs = append(errs, fmt.Errorf("%w: mesh %q has unknown kind %q", ErrInvalid, m.Label, m.Kind))
		}
		if m.PositionSize < 2 || m.PositionSize > 4 {
			errs = append(errs, fmt.Errorf("%w: mesh %q position_size %d not in [2, 4]", ErrInvalid, m.Label, m.PositionSize))
		}
	}
	return errors.Join(errs...)
}

// Clear returns the clear color. It is only meaningful on a validated configuration.
func (c *Config) Clear() common.Color {
	col, err := common.ColorFromSlice(c.ClearColor)
	if err != nil {
		return common.Black
	}
	return col
}

// Level maps LogLevel to a slog level.
//
// Returns:
//   - slog.Level: the parsed level
//   - error: an error wrapping ErrInvalid for an unknown level name
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return lvl, nil
}

// Bool returns *b, or def when b is nil.
func Bool(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
