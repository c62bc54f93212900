package importer_test

import (
	"context"
	"fmt"
	"log"

	"github.com/chazu/ifcgeom/pkg/importer"
)

// A small table in millimetres: two legs and a top, each a placed block.
const table = `
(def t_origin (entity "IfcCartesianPoint" :Coordinates [0.0 0.0 0.0]))
(def t_frame (entity "IfcAxis2Placement3D" :Location t_origin :Axis nil :RefDirection nil))

(def t_leg (entity "IfcShapeRepresentation" :ContextOfItems nil :Items
  [(entity "IfcBlock" :Position t_frame :XLength 50.0 :YLength 50.0 :ZLength 750.0)]))
(def t_top (entity "IfcShapeRepresentation" :ContextOfItems nil :Items
  [(entity "IfcBlock" :Position t_frame :XLength 600.0 :YLength 600.0 :ZLength 25.0)]))

(def t_at_left (entity "IfcLocalPlacement" :PlacementRelTo nil :RelativePlacement t_frame))
(def t_at_right (entity "IfcLocalPlacement" :PlacementRelTo nil :RelativePlacement
  (entity "IfcAxis2Placement3D"
    :Location (entity "IfcCartesianPoint" :Coordinates [550.0 0.0 0.0]) :Axis nil :RefDirection nil)))
(def t_at_top (entity "IfcLocalPlacement" :PlacementRelTo nil :RelativePlacement
  (entity "IfcAxis2Placement3D"
    :Location (entity "IfcCartesianPoint" :Coordinates [0.0 0.0 750.0]) :Axis nil :RefDirection nil)))

(entity 101 "IfcColumn" :GlobalId "0000000000000000000001" :Name "leg-left"
  :ObjectPlacement t_at_left
  :Representation (entity "IfcProductDefinitionShape" :Representations [t_leg]))
(entity 102 "IfcColumn" :GlobalId "0000000000000000000002" :Name "leg-right"
  :ObjectPlacement t_at_right
  :Representation (entity "IfcProductDefinitionShape" :Representations [t_leg]))
(entity 103 "IfcSlab" :GlobalId "0000000000000000000003" :Name "top"
  :ObjectPlacement t_at_top
  :Representation (entity "IfcProductDefinitionShape" :Representations [t_top]))
`

func ExampleRunScript() {
	res, err := importer.RunScript(context.Background(), table, nil, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range res.Products {
		fmt.Printf("%s %s %.6f m3\n", p.Name, p.Mesh.Name, p.Mesh.Volume())
	}
	fmt.Println(len(res.Diagnostics), "diagnostics")
	// Output:
	// leg-left 0000000000000000000001 0.001875 m3
	// leg-right 0000000000000000000002 0.001875 m3
	// top 0000000000000000000003 0.009000 m3
	// 0 diagnostics
}
