package schema

// Canonical entity tags.
const (
	RepresentationItem            = "IFCREPRESENTATIONITEM"
	GeometricRepresentationItem   = "IFCGEOMETRICREPRESENTATIONITEM"
	TopologicalRepresentationItem = "IFCTOPOLOGICALREPRESENTATIONITEM"

	Point                       = "IFCPOINT"
	CartesianPoint              = "IFCCARTESIANPOINT"
	Direction                   = "IFCDIRECTION"
	Vector                      = "IFCVECTOR"
	Placement                   = "IFCPLACEMENT"
	Axis1Placement              = "IFCAXIS1PLACEMENT"
	Axis2Placement2D            = "IFCAXIS2PLACEMENT2D"
	Axis2Placement3D            = "IFCAXIS2PLACEMENT3D"
	CartesianTransformOperator  = "IFCCARTESIANTRANSFORMATIONOPERATOR"
	CartesianTransformOperator3 = "IFCCARTESIANTRANSFORMATIONOPERATOR3D"
	CartesianTransformOperatorN = "IFCCARTESIANTRANSFORMATIONOPERATOR3DNONUNIFORM"

	Curve                    = "IFCCURVE"
	Line                     = "IFCLINE"
	Conic                    = "IFCCONIC"
	Circle                   = "IFCCIRCLE"
	Ellipse                  = "IFCELLIPSE"
	BoundedCurve             = "IFCBOUNDEDCURVE"
	Polyline                 = "IFCPOLYLINE"
	TrimmedCurve             = "IFCTRIMMEDCURVE"
	BSplineCurve             = "IFCBSPLINECURVE"
	BSplineCurveWithKnots    = "IFCBSPLINECURVEWITHKNOTS"
	RationalBSplineCurve     = "IFCRATIONALBSPLINECURVEWITHKNOTS"
	OffsetCurve              = "IFCOFFSETCURVE"
	OffsetCurve3D            = "IFCOFFSETCURVE3D"
	Surface                  = "IFCSURFACE"
	ElementarySurface        = "IFCELEMENTARYSURFACE"
	Plane                    = "IFCPLANE"
	SweptSurface             = "IFCSWEPTSURFACE"
	SurfaceOfLinearExtrusion = "IFCSURFACEOFLINEAREXTRUSION"
	SurfaceOfRevolution      = "IFCSURFACEOFREVOLUTION"
	BoundedSurface           = "IFCBOUNDEDSURFACE"
	BSplineSurface           = "IFCBSPLINESURFACE"
	BSplineSurfaceWithKnots  = "IFCBSPLINESURFACEWITHKNOTS"
	RationalBSplineSurface   = "IFCRATIONALBSPLINESURFACEWITHKNOTS"

	Vertex         = "IFCVERTEX"
	VertexPoint    = "IFCVERTEXPOINT"
	Edge           = "IFCEDGE"
	EdgeCurve      = "IFCEDGECURVE"
	OrientedEdge   = "IFCORIENTEDEDGE"
	Loop           = "IFCLOOP"
	PolyLoop       = "IFCPOLYLOOP"
	EdgeLoop       = "IFCEDGELOOP"
	VertexLoop     = "IFCVERTEXLOOP"
	FaceBound      = "IFCFACEBOUND"
	FaceOuterBound = "IFCFACEOUTERBOUND"
	Face           = "IFCFACE"
	FaceSurface    = "IFCFACESURFACE"
	AdvancedFace   = "IFCADVANCEDFACE"
	ConnectedFaces = "IFCCONNECTEDFACESET"
	ClosedShell    = "IFCCLOSEDSHELL"
	OpenShell      = "IFCOPENSHELL"

	SolidModel                = "IFCSOLIDMODEL"
	ManifoldSolidBrep         = "IFCMANIFOLDSOLIDBREP"
	FacetedBrep               = "IFCFACETEDBREP"
	FacetedBrepWithVoids      = "IFCFACETEDBREPWITHVOIDS"
	AdvancedBrep              = "IFCADVANCEDBREP"
	AdvancedBrepWithVoids     = "IFCADVANCEDBREPWITHVOIDS"
	CsgSolid                  = "IFCCSGSOLID"
	SweptAreaSolid            = "IFCSWEPTAREASOLID"
	ExtrudedAreaSolid         = "IFCEXTRUDEDAREASOLID"
	RevolvedAreaSolid         = "IFCREVOLVEDAREASOLID"
	BooleanResult             = "IFCBOOLEANRESULT"
	BooleanClippingResult     = "IFCBOOLEANCLIPPINGRESULT"
	CsgPrimitive3D            = "IFCCSGPRIMITIVE3D"
	Block                     = "IFCBLOCK"
	RightCircularCylinder     = "IFCRIGHTCIRCULARCYLINDER"
	Sphere                    = "IFCSPHERE"
	HalfSpaceSolid            = "IFCHALFSPACESOLID"
	BoxedHalfSpace            = "IFCBOXEDHALFSPACE"
	PolygonalBoundedHalfSpace = "IFCPOLYGONALBOUNDEDHALFSPACE"
	ShellBasedSurfaceModel    = "IFCSHELLBASEDSURFACEMODEL"
	FaceBasedSurfaceModel     = "IFCFACEBASEDSURFACEMODEL"
	MappedItem                = "IFCMAPPEDITEM"

	ProfileDef                  = "IFCPROFILEDEF"
	ParameterizedProfileDef     = "IFCPARAMETERIZEDPROFILEDEF"
	RectangleProfileDef         = "IFCRECTANGLEPROFILEDEF"
	CircleProfileDef            = "IFCCIRCLEPROFILEDEF"
	ArbitraryClosedProfileDef   = "IFCARBITRARYCLOSEDPROFILEDEF"
	ArbitraryProfileDefWithVoid = "IFCARBITRARYPROFILEDEFWITHVOIDS"
	ArbitraryOpenProfileDef     = "IFCARBITRARYOPENPROFILEDEF"

	ObjectPlacement         = "IFCOBJECTPLACEMENT"
	LocalPlacement          = "IFCLOCALPLACEMENT"
	ProductRepresentation   = "IFCPRODUCTREPRESENTATION"
	ProductDefinitionShape  = "IFCPRODUCTDEFINITIONSHAPE"
	Representation          = "IFCREPRESENTATION"
	ShapeModel              = "IFCSHAPEMODEL"
	ShapeRepresentation     = "IFCSHAPEREPRESENTATION"
	RepresentationMap       = "IFCREPRESENTATIONMAP"
	Root                    = "IFCROOT"
	ObjectDefinition        = "IFCOBJECTDEFINITION"
	Object                  = "IFCOBJECT"
	Product                 = "IFCPRODUCT"
	Element                 = "IFCELEMENT"
	BuildingElement         = "IFCBUILDINGELEMENT"
	BuildingElementProxy    = "IFCBUILDINGELEMENTPROXY"
	Wall                    = "IFCWALL"
	Slab                    = "IFCSLAB"
	Beam                    = "IFCBEAM"
	Column                  = "IFCCOLUMN"
	FeatureElement          = "IFCFEATUREELEMENT"
	FeatureElementSubtract  = "IFCFEATUREELEMENTSUBTRACTION"
	OpeningElement          = "IFCOPENINGELEMENT"
	SpatialStructureElement = "IFCSPATIALSTRUCTUREELEMENT"
	BuildingStorey          = "IFCBUILDINGSTOREY"
)

// roots are tags without a supertype.
var roots = map[string]struct{}{
	RepresentationItem:    {},
	ProfileDef:            {},
	ObjectPlacement:       {},
	ProductRepresentation: {},
	Representation:        {},
	RepresentationMap:     {},
	Root:                  {},
}

// supertypes maps each tag to its direct supertype.
var supertypes = map[string]string{
	GeometricRepresentationItem:   RepresentationItem,
	TopologicalRepresentationItem: RepresentationItem,
	MappedItem:                    RepresentationItem,

	Point:                       GeometricRepresentationItem,
	CartesianPoint:              Point,
	Direction:                   GeometricRepresentationItem,
	Vector:                      GeometricRepresentationItem,
	Placement:                   GeometricRepresentationItem,
	Axis1Placement:              Placement,
	Axis2Placement2D:            Placement,
	Axis2Placement3D:            Placement,
	CartesianTransformOperator:  GeometricRepresentationItem,
	CartesianTransformOperator3: CartesianTransformOperator,
	CartesianTransformOperatorN: CartesianTransformOperator3,

	Curve:                    GeometricRepresentationItem,
	Line:                     Curve,
	Conic:                    Curve,
	Circle:                   Conic,
	Ellipse:                  Conic,
	BoundedCurve:             Curve,
	Polyline:                 BoundedCurve,
	TrimmedCurve:             BoundedCurve,
	BSplineCurve:             BoundedCurve,
	BSplineCurveWithKnots:    BSplineCurve,
	RationalBSplineCurve:     BSplineCurveWithKnots,
	OffsetCurve:              Curve,
	OffsetCurve3D:            OffsetCurve,
	Surface:                  GeometricRepresentationItem,
	ElementarySurface:        Surface,
	Plane:                    ElementarySurface,
	SweptSurface:             Surface,
	SurfaceOfLinearExtrusion: SweptSurface,
	SurfaceOfRevolution:      SweptSurface,
	BoundedSurface:           Surface,
	BSplineSurface:           BoundedSurface,
	BSplineSurfaceWithKnots:  BSplineSurface,
	RationalBSplineSurface:   BSplineSurfaceWithKnots,

	Vertex:         TopologicalRepresentationItem,
	VertexPoint:    Vertex,
	Edge:           TopologicalRepresentationItem,
	EdgeCurve:      Edge,
	OrientedEdge:   Edge,
	Loop:           TopologicalRepresentationItem,
	PolyLoop:       Loop,
	EdgeLoop:       Loop,
	VertexLoop:     Loop,
	FaceBound:      TopologicalRepresentationItem,
	FaceOuterBound: FaceBound,
	Face:           TopologicalRepresentationItem,
	FaceSurface:    Face,
	AdvancedFace:   FaceSurface,
	ConnectedFaces: TopologicalRepresentationItem,
	ClosedShell:    ConnectedFaces,
	OpenShell:      ConnectedFaces,

	SolidModel:                GeometricRepresentationItem,
	ManifoldSolidBrep:         SolidModel,
	FacetedBrep:               ManifoldSolidBrep,
	FacetedBrepWithVoids:      FacetedBrep,
	AdvancedBrep:              ManifoldSolidBrep,
	AdvancedBrepWithVoids:     AdvancedBrep,
	CsgSolid:                  SolidModel,
	SweptAreaSolid:            SolidModel,
	ExtrudedAreaSolid:         SweptAreaSolid,
	RevolvedAreaSolid:         SweptAreaSolid,
	BooleanResult:             GeometricRepresentationItem,
	BooleanClippingResult:     BooleanResult,
	CsgPrimitive3D:            GeometricRepresentationItem,
	Block:                     CsgPrimitive3D,
	RightCircularCylinder:     CsgPrimitive3D,
	Sphere:                    CsgPrimitive3D,
	HalfSpaceSolid:            GeometricRepresentationItem,
	BoxedHalfSpace:            HalfSpaceSolid,
	PolygonalBoundedHalfSpace: HalfSpaceSolid,
	ShellBasedSurfaceModel:    GeometricRepresentationItem,
	FaceBasedSurfaceModel:     GeometricRepresentationItem,

	ParameterizedProfileDef:     ProfileDef,
	RectangleProfileDef:         ParameterizedProfileDef,
	CircleProfileDef:            ParameterizedProfileDef,
	ArbitraryClosedProfileDef:   ProfileDef,
	ArbitraryProfileDefWithVoid: ArbitraryClosedProfileDef,
	ArbitraryOpenProfileDef:     ProfileDef,

	LocalPlacement:          ObjectPlacement,
	ProductDefinitionShape:  ProductRepresentation,
	ShapeModel:              Representation,
	ShapeRepresentation:     ShapeModel,
	ObjectDefinition:        Root,
	Object:                  ObjectDefinition,
	Product:                 Object,
	Element:                 Product,
	BuildingElement:         Element,
	BuildingElementProxy:    BuildingElement,
	Wall:                    BuildingElement,
	Slab:                    BuildingElement,
	Beam:                    BuildingElement,
	Column:                  BuildingElement,
	FeatureElement:          Element,
	FeatureElementSubtract:  FeatureElement,
	OpeningElement:          FeatureElementSubtract,
	SpatialStructureElement: Product,
	BuildingStorey:          SpatialStructureElement,
}

// introduced lists tags that do not exist in IFC2X3.
var introduced = map[string]Version{
	AdvancedFace:          IFC4,
	AdvancedBrep:          IFC4,
	AdvancedBrepWithVoids: IFC4,
	OffsetCurve:           IFC4,
}
