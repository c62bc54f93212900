// Package importer runs one import: it opens a session over a record
// source, materializes every product and turns its representations into
// kernel shapes and meshes. Problems are collected as diagnostics and also
// logged.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/kernel/sdfx"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/record/script"
	"github.com/chazu/ifcgeom/pkg/schema"
	"github.com/chazu/ifcgeom/pkg/store"
)

// ErrFatal is returned when a diagnostic aborts the run.
var ErrFatal = errors.New("import aborted")

// Product is the geometry of one product.
type Product struct {
	ID       record.ID
	GlobalID string
	Name     string
	Type     string
	Shapes   []kernel.Shape
	// Mesh joins the meshes of all shapes; its Name is the GlobalId.
	Mesh *kernel.Mesh
}

// Result is the outcome of an import run.
type Result struct {
	Products    []Product
	Diagnostics []diag.Diagnostic
	Stats       store.Stats
	// Duplicates lists products skipped because their GlobalId was taken.
	Duplicates []record.ID
}

// Count returns the number of diagnostics with severity s.
func (r *Result) Count(s diag.Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// NewKernel builds the sdfx kernel described by cfg.
func NewKernel(cfg *config.Config) *sdfx.SdfxKernel {
	cfg = cfg.WithDefaults()
	return sdfx.New(
		sdfx.WithMeshCells(cfg.Kernel.MeshCells),
		sdfx.WithCurveSegments(cfg.Kernel.CurveSegments),
		sdfx.WithTolerance(cfg.Tolerances.Vertex),
		sdfx.WithShortEdge(cfg.Tolerances.ShortCurve),
		sdfx.WithAngleTolerance(cfg.Tolerances.Angle),
		sdfx.WithHalfSpaceExtent(cfg.Kernel.HalfSpaceExtent),
	)
}

// Run imports every product of src. A nil cfg uses config.Default(); zero
// fields of cfg are filled in place. A nil k uses NewKernel(cfg) and a nil
// logger discards log output.
//
// Recoverable problems only add diagnostics. A fatal diagnostic or a
// cancelled ctx stops the run and returns the partial result with an error.
func Run(ctx context.Context, src record.Source, cfg *config.Config, k kernel.Kernel, logger *slog.Logger) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	scale, err := cfg.Units()
	if err != nil {
		return nil, err
	}
	if k == nil {
		k = NewKernel(cfg)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	collected := &diag.Collector{}
	sink := diag.NewOnce(diag.Tee{collected, diag.NewSlogSink(logger)})
	s := store.NewSession(store.Options{
		Source:     src,
		Resolver:   ifc.NewRegistry(),
		Version:    cfg.Version(src.Schema()),
		Units:      scale,
		Kernel:     k,
		Diag:       sink,
		Tolerances: cfg.Tolerances,
		Logger:     logger,
	})
	sc := ifc.NewScope(s, ifc.WithExtent(cfg.Kernel.HalfSpaceExtent))

	res := &Result{}
	finish := func(err error) (*Result, error) {
		res.Diagnostics = collected.Diagnostics
		res.Stats = s.Stats()
		logger.Info("import finished",
			"schema", s.Version().String(),
			"products", len(res.Products),
			"materialized", res.Stats.Materialized,
			"invalid", res.Stats.Invalid,
			"errors", res.Count(diag.SeverityError),
			"warnings", res.Count(diag.SeverityWarning),
		)
		return res, err
	}

	for _, id := range record.OfType(src, schema.Product) {
		if err := ctx.Err(); err != nil {
			return finish(fmt.Errorf("import cancelled: %w", err))
		}
		e, err := s.Require(id)
		if err != nil {
			return finish(fmt.Errorf("%w: product %s: %v", ErrFatal, id, err))
		}
		p, ok := e.(*ifc.Product)
		if !ok || !p.Valid() {
			continue
		}
		if first, ok := s.Canonical(p.GlobalID()); ok && first.ID() != p.ID() {
			res.Duplicates = append(res.Duplicates, p.ID())
			continue
		}
		if out, ok := build(sc, p); ok {
			res.Products = append(res.Products, out)
		}
		if collected.HasFatal() {
			return finish(fmt.Errorf("%w: fatal diagnostic while building %s", ErrFatal, id))
		}
	}
	return finish(nil)
}

// build creates the shapes and mesh of one product.
func build(sc *ifc.Scope, p *ifc.Product) (Product, bool) {
	shapes := p.CreateGeometry(sc, kernel.Identity(), kernel.Identity(), record.Null)
	if len(shapes) == 0 {
		sc.Session.Logger().Debug("product has no geometry", "id", p.ID().String(), "type", p.Type())
		return Product{}, false
	}
	mesh := &kernel.Mesh{Name: p.GlobalID()}
	for _, shape := range shapes {
		m, err := sc.Kernel.ToMesh(shape)
		if err != nil {
			diag.Errorf(sc.Diag(), p.ID(), "shape could not be meshed: %v", err)
			continue
		}
		mesh.Append(m)
	}
	return Product{
		ID:       p.ID(),
		GlobalID: p.GlobalID(),
		Name:     p.Name,
		Type:     p.Type(),
		Shapes:   shapes,
		Mesh:     mesh,
	}, true
}

// RunScript loads a model script and imports it. Errors in the script are
// joined into the returned error.
func RunScript(ctx context.Context, source string, cfg *config.Config, k kernel.Kernel, logger *slog.Logger) (*Result, error) {
	m, evalErrs, err := script.NewLoader().Load(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("model script: %w", errors.Join(errs...))
	}
	return Run(ctx, m, cfg, k, logger)
}
