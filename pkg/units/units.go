// Package units scales raw model lengths and angles into the session's
// working units (metres and radians).
package units

import (
	"fmt"
	"math"
	"strings"
)

// Converter scales raw values read from records.
type Converter interface {
	Length(v float64) float64
	Angle(v float64) float64
}

// Scale is a linear Converter.
type Scale struct {
	LengthFactor float64 // raw length unit -> metres
	AngleFactor  float64 // raw angle unit -> radians
}

// Identity keeps values unchanged (model already in metres and radians).
var Identity = Scale{LengthFactor: 1, AngleFactor: 1}

// Length scales a raw length.
func (s Scale) Length(v float64) float64 { return v * s.LengthFactor }

// Angle scales a raw angle.
func (s Scale) Angle(v float64) float64 { return v * s.AngleFactor }

var lengthFactors = map[string]float64{
	"MILLIMETRE": 0.001,
	"MM":         0.001,
	"CENTIMETRE": 0.01,
	"CM":         0.01,
	"METRE":      1,
	"M":          1,
	"INCH":       0.0254,
	"IN":         0.0254,
	"FOOT":       0.3048,
	"FT":         0.3048,
}

// LengthFactor returns the metre factor for a unit name such as
// "MILLIMETRE" or "mm".
func LengthFactor(name string) (float64, error) {
	f, ok := lengthFactors[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("units: unknown length unit %q", name)
	}
	return f, nil
}

// AngleFactor returns the radian factor for "RADIAN" or "DEGREE".
func AngleFactor(name string) (float64, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "RADIAN", "RAD":
		return 1, nil
	case "DEGREE", "DEG":
		return math.Pi / 180, nil
	}
	return 0, fmt.Errorf("units: unknown angle unit %q", name)
}

// FromNames builds a Scale from unit names.
func FromNames(length, angle string) (Scale, error) {
	lf, err := LengthFactor(length)
	if err != nil {
		return Scale{}, err
	}
	af, err := AngleFactor(angle)
	if err != nil {
		return Scale{}, err
	}
	return Scale{LengthFactor: lf, AngleFactor: af}, nil
}
