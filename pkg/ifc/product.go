package ifc

import (
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/store"
)

var (
	_ GeometryCreator = (*ShapeRepresentation)(nil)
	_ GeometryCreator = (*ProductShape)(nil)
	_ GeometryCreator = (*Product)(nil)
)

// ShapeRepresentation is a list of geometric items in one representation
// context.
type ShapeRepresentation struct {
	store.Base
	Context    record.ID
	Identifier string
	Kind       string
	Items      []store.Ref[GeometryCreator]
}

func (sr *ShapeRepresentation) Load(_ *store.Session, r record.Record) error {
	sr.Context = record.OptionalReference(r, "ContextOfItems")
	sr.Identifier = record.OptionalText(r, "RepresentationIdentifier")
	sr.Kind = record.OptionalText(r, "RepresentationType")
	ids, err := record.References(r, "Items")
	if err != nil {
		return err
	}
	sr.Items = store.RefsTo[GeometryCreator](ids)
	return nil
}

// CreateGeometry creates every item. A representation of another context
// than contextID yields nothing.
func (sr *ShapeRepresentation) CreateGeometry(sc *Scope, lcs, scaledLcs kernel.Transform, contextID record.ID) []kernel.Shape {
	if !contextID.IsNull() && sr.Context != contextID {
		return nil
	}
	var out []kernel.Shape
	for _, it := range store.Resolve(sc.Session, sr.Items) {
		out = append(out, it.CreateGeometry(sc, lcs, scaledLcs, contextID)...)
	}
	return out
}

// ProductShape groups the representations of a product.
type ProductShape struct {
	store.Base
	Representations []store.Ref[*ShapeRepresentation]
}

func (p *ProductShape) Load(_ *store.Session, r record.Record) error {
	ids, err := record.References(r, "Representations")
	if err != nil {
		return err
	}
	p.Representations = store.RefsTo[*ShapeRepresentation](ids)
	return nil
}

func (p *ProductShape) CreateGeometry(sc *Scope, lcs, scaledLcs kernel.Transform, contextID record.ID) []kernel.Shape {
	var out []kernel.Shape
	for _, rep := range store.Resolve(sc.Session, p.Representations) {
		if rep.Valid() {
			out = append(out, rep.CreateGeometry(sc, lcs, scaledLcs, contextID)...)
		}
	}
	return out
}

// Product is any placed element with a shape: walls, slabs, proxies and
// the like all materialize as Product.
type Product struct {
	store.Base
	GlobalId        string
	Name            string
	ObjectPlacement store.Ref[*LocalPlacement]
	Representation  store.Ref[*ProductShape]
}

func (p *Product) Load(_ *store.Session, r record.Record) error {
	var err error
	if p.GlobalId, err = record.Text(r, "GlobalId"); err != nil {
		return err
	}
	p.Name = record.OptionalText(r, "Name")
	p.ObjectPlacement = store.RefTo[*LocalPlacement](record.OptionalReference(r, "ObjectPlacement"))
	p.Representation = store.RefTo[*ProductShape](record.OptionalReference(r, "Representation"))
	return nil
}

// GlobalID returns the product's GlobalId.
func (p *Product) GlobalID() string { return p.GlobalId }

// Placement returns the product's world placement.
func (p *Product) Placement(s *store.Session) kernel.Transform {
	if pl, ok := p.ObjectPlacement.Get(s); ok && pl.Valid() {
		return pl.Transform()
	}
	return kernel.Identity()
}

// CreateGeometry places the product's representations by its object
// placement.
func (p *Product) CreateGeometry(sc *Scope, lcs, scaledLcs kernel.Transform, contextID record.ID) []kernel.Shape {
	shape, ok := p.Representation.Get(sc.Session)
	if !ok || !shape.Valid() {
		return nil
	}
	t := p.Placement(sc.Session)
	return shape.CreateGeometry(sc, lcs.Mul(t), scaledLcs.Mul(t), contextID)
}
