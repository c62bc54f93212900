package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/ifcgeom/pkg/schema"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestParseWithUnitVariables(t *testing.T) {
	src := `
schema      = "IFC4"
length_unit = "MILLIMETRE"

tolerances {
  vertex         = 0.5 * mm
  shift_distance = 2 * mm
  angle          = 0.1 * deg
}

kernel {
  mesh_cells = 64
}
`
	cfg, err := Parse([]byte(src), "test.hcl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if math.Abs(cfg.Tolerances.Vertex-0.0005) > 1e-12 {
		t.Errorf("vertex = %g, want 0.0005", cfg.Tolerances.Vertex)
	}
	if math.Abs(cfg.Tolerances.ShiftDistance-0.002) > 1e-12 {
		t.Errorf("shift_distance = %g, want 0.002", cfg.Tolerances.ShiftDistance)
	}
	if cfg.Tolerances.ShortCurve != Default().Tolerances.ShortCurve {
		t.Errorf("short_curve should keep its default, got %g", cfg.Tolerances.ShortCurve)
	}
	if cfg.Kernel.MeshCells != 64 {
		t.Errorf("mesh_cells = %d, want 64", cfg.Kernel.MeshCells)
	}
	if cfg.Kernel.CurveSegments != Default().Kernel.CurveSegments {
		t.Errorf("curve_segments default lost")
	}
	if cfg.Version(schema.IFC2X3) != schema.IFC4 {
		t.Errorf("Version override not applied")
	}
}

func TestParseValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"negative vertex", `tolerances { vertex = -1 }`, "tolerances.vertex"},
		{"bad unit", `length_unit = "cubit"`, "unknown length unit"},
		{"bad level", `logging { level = "loud" }`, "logging.level"},
		{"bad schema", `schema = "STEP"`, "unsupported version"},
		{"coarse mesh", `kernel { mesh_cells = 2 }`, "mesh_cells"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse([]byte(`tolerances {`), "broken.hcl"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.hcl")
	if err := os.WriteFile(path, []byte(`angle_unit = "RADIAN"`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, err := cfg.Units()
	if err != nil {
		t.Fatalf("Units: %v", err)
	}
	if s.AngleFactor != 1 || s.LengthFactor != 0.001 {
		t.Errorf("Units = %+v", s)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "warn"
	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON output, got %s", out)
	}
}
