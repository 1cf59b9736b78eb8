package vecmath

import (
	"math"
	"testing"
)

func TestCrossRightHanded(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	if got := x.Cross(y); got != (Vec3{Z: 1}) {
		t.Fatalf("x × y = %+v, want +z", got)
	}
}

func TestMatrixTransposeInverse(t *testing.T) {
	a := 0.7
	rz := Matrix3{
		{math.Cos(a), -math.Sin(a), 0},
		{math.Sin(a), math.Cos(a), 0},
		{0, 0, 1},
	}
	if d := rz.Transpose().Mul(rz).MaxAbsDiff(Identity()); d > 1e-12 {
		t.Errorf("RᵀR deviates from identity by %.2e", d)
	}

	v := rz.Apply(Vec3{X: 2, Y: 0, Z: 1})
	if math.Abs(v.Norm()-math.Sqrt(5)) > 1e-12 {
		t.Errorf("rotation changed length: %.15f", v.Norm())
	}
}

func TestIsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{math.NaN(), 0, 0}).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if (Vec3{0, math.Inf(-1), 0}).IsFinite() {
		t.Error("Inf vector reported finite")
	}
}
