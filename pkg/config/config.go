// Package config holds the tunable parameters of an import run: numeric
// tolerances, kernel resolution, unit names and logging. Configuration is
// written in HCL; unit variables (mm, cm, m, inch, ft, deg) are available in
// expressions so tolerances can be stated in any unit and land in metres.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/chazu/ifcgeom/pkg/schema"
	"github.com/chazu/ifcgeom/pkg/units"
)

// Config holds all configuration for one import run.
type Config struct {
	// Schema overrides the model's declared schema version when set.
	Schema string `hcl:"schema,optional"`

	// LengthUnit and AngleUnit name the raw units of the model.
	LengthUnit string `hcl:"length_unit,optional"`
	AngleUnit  string `hcl:"angle_unit,optional"`

	Tolerances *Tolerances `hcl:"tolerances,block"`
	Kernel     *Kernel     `hcl:"kernel,block"`
	Logging    *Logging    `hcl:"logging,block"`
}

// Tolerances are numeric thresholds in working units (metres, radians).
type Tolerances struct {
	// Vertex is the distance below which two points are the same vertex;
	// used for the loop closing-point check.
	Vertex float64 `hcl:"vertex,optional"`

	// ShortCurve is the shortest edge length the kernel accepts.
	ShortCurve float64 `hcl:"short_curve,optional"`

	// ShiftDistance is how far a Boolean operand is moved on CSG retries.
	ShiftDistance float64 `hcl:"shift_distance,optional"`

	// Angle is the angular tolerance for parallel/perpendicular tests.
	Angle float64 `hcl:"angle,optional"`
}

// Kernel configures the geometry kernel.
type Kernel struct {
	// MeshCells is the marching-cubes resolution along the longest axis.
	MeshCells int `hcl:"mesh_cells,optional"`

	// CurveSegments is the number of segments used to tessellate a full
	// turn of a curved edge.
	CurveSegments int `hcl:"curve_segments,optional"`

	// HalfSpaceExtent bounds unbounded half spaces.
	HalfSpaceExtent float64 `hcl:"half_space_extent,optional"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `hcl:"level,optional"`  // debug, info, warn, error
	Format string `hcl:"format,optional"` // text, json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LengthUnit: "MILLIMETRE",
		AngleUnit:  "DEGREE",
		Tolerances: &Tolerances{
			Vertex:        0.0001,
			ShortCurve:    0.0008,
			ShiftDistance: 0.001,
			Angle:         math.Pi / 1800,
		},
		Kernel: &Kernel{
			MeshCells:       200,
			CurveSegments:   24,
			HalfSpaceExtent: 1000,
		},
		Logging: &Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// WithDefaults fills every zero field of c from Default() and returns c.
func (c *Config) WithDefaults() *Config {
	d := Default()
	if c.LengthUnit == "" {
		c.LengthUnit = d.LengthUnit
	}
	if c.AngleUnit == "" {
		c.AngleUnit = d.AngleUnit
	}
	if c.Tolerances == nil {
		c.Tolerances = d.Tolerances
	} else {
		t := c.Tolerances
		if t.Vertex == 0 {
			t.Vertex = d.Tolerances.Vertex
		}
		if t.ShortCurve == 0 {
			t.ShortCurve = d.Tolerances.ShortCurve
		}
		if t.ShiftDistance == 0 {
			t.ShiftDistance = d.Tolerances.ShiftDistance
		}
		if t.Angle == 0 {
			t.Angle = d.Tolerances.Angle
		}
	}
	if c.Kernel == nil {
		c.Kernel = d.Kernel
	} else {
		k := c.Kernel
		if k.MeshCells == 0 {
			k.MeshCells = d.Kernel.MeshCells
		}
		if k.CurveSegments == 0 {
			k.CurveSegments = d.Kernel.CurveSegments
		}
		if k.HalfSpaceExtent == 0 {
			k.HalfSpaceExtent = d.Kernel.HalfSpaceExtent
		}
	}
	if c.Logging == nil {
		c.Logging = d.Logging
	} else {
		if c.Logging.Level == "" {
			c.Logging.Level = d.Logging.Level
		}
		if c.Logging.Format == "" {
			c.Logging.Format = d.Logging.Format
		}
	}
	return c
}

// Validate checks every field and joins all problems into one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Schema != "" {
		if _, err := schema.ParseVersion(c.Schema); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := units.FromNames(c.LengthUnit, c.AngleUnit); err != nil {
		errs = append(errs, err)
	}
	if t := c.Tolerances; t != nil {
		if t.Vertex <= 0 {
			errs = append(errs, fmt.Errorf("tolerances.vertex must be positive, got %g", t.Vertex))
		}
		if t.ShortCurve <= 0 {
			errs = append(errs, fmt.Errorf("tolerances.short_curve must be positive, got %g", t.ShortCurve))
		}
		if t.ShiftDistance <= 0 {
			errs = append(errs, fmt.Errorf("tolerances.shift_distance must be positive, got %g", t.ShiftDistance))
		}
		if t.Angle <= 0 || t.Angle >= math.Pi/2 {
			errs = append(errs, fmt.Errorf("tolerances.angle must be in (0, pi/2), got %g", t.Angle))
		}
	}
	if k := c.Kernel; k != nil {
		if k.MeshCells < 8 {
			errs = append(errs, fmt.Errorf("kernel.mesh_cells must be at least 8, got %d", k.MeshCells))
		}
		if k.CurveSegments < 4 {
			errs = append(errs, fmt.Errorf("kernel.curve_segments must be at least 4, got %d", k.CurveSegments))
		}
		if k.HalfSpaceExtent <= 0 {
			errs = append(errs, fmt.Errorf("kernel.half_space_extent must be positive, got %g", k.HalfSpaceExtent))
		}
	}
	if l := c.Logging; l != nil {
		switch strings.ToLower(l.Level) {
		case "debug", "info", "warn", "warning", "error":
		default:
			errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", l.Level))
		}
		switch strings.ToLower(l.Format) {
		case "text", "json":
		default:
			errs = append(errs, fmt.Errorf("logging.format %q is not one of text, json", l.Format))
		}
	}
	return errors.Join(errs...)
}

// Units returns the converter for the configured raw units.
func (c *Config) Units() (units.Scale, error) {
	return units.FromNames(c.LengthUnit, c.AngleUnit)
}

// Version returns the schema override, or fallback when none is set.
func (c *Config) Version(fallback schema.Version) schema.Version {
	if c.Schema == "" {
		return fallback
	}
	v, err := schema.ParseVersion(c.Schema)
	if err != nil {
		return fallback
	}
	return v
}

// NewLogger builds a slog.Logger from the logging block. It does not set the
// global logger.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	l := c.Logging
	if l == nil {
		l = Default().Logging
	}
	opts := &slog.HandlerOptions{Level: parseLevel(l.Level)}
	var handler slog.Handler
	if strings.ToLower(l.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
