package units

import (
	"math"
	"testing"
)

func TestFromNames(t *testing.T) {
	tests := []struct {
		length, angle string
		wantL, wantA  float64
		wantErr       bool
	}{
		{"MILLIMETRE", "DEGREE", 0.001, math.Pi / 180, false},
		{"m", "radian", 1, 1, false},
		{"foot", "deg", 0.3048, math.Pi / 180, false},
		{"furlong", "deg", 0, 0, true},
		{"mm", "grad", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.length+"/"+tt.angle, func(t *testing.T) {
			s, err := FromNames(tt.length, tt.angle)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if s.LengthFactor != tt.wantL || s.AngleFactor != tt.wantA {
				t.Errorf("got %+v", s)
			}
		})
	}
}

func TestScaleApply(t *testing.T) {
	s := Scale{LengthFactor: 0.001, AngleFactor: math.Pi / 180}
	if got := s.Length(2500); math.Abs(got-2.5) > 1e-12 {
		t.Errorf("Length(2500) = %v", got)
	}
	if got := s.Angle(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("Angle(180) = %v", got)
	}
	if Identity.Length(3) != 3 {
		t.Error("identity should not scale")
	}
}
