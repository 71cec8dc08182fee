package emath

// Affine transformations on homogeneous 2D coordinates, used to map the
// moving image onto the fixed image.

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f64" // Will be "image/math/f64" at some point, hopefully make this file redundant
)

var ErrSingular = errors.New("singular transform")

// Actual 3x3 matrixes, row-major
type Mat3 f64.Mat3

func (a Mat3) Mult(b Mat3) Mat3 {
	return Mat3{
		a[3*0+0]*b[3*0+0] + a[3*0+1]*b[3*1+0] + a[3*0+2]*b[3*2+0],
		a[3*0+0]*b[3*0+1] + a[3*0+1]*b[3*1+1] + a[3*0+2]*b[3*2+1],
		a[3*0+0]*b[3*0+2] + a[3*0+1]*b[3*1+2] + a[3*0+2]*b[3*2+2],

		a[3*1+0]*b[3*0+0] + a[3*1+1]*b[3*1+0] + a[3*1+2]*b[3*2+0],
		a[3*1+0]*b[3*0+1] + a[3*1+1]*b[3*1+1] + a[3*1+2]*b[3*2+1],
		a[3*1+0]*b[3*0+2] + a[3*1+1]*b[3*1+2] + a[3*1+2]*b[3*2+2],

		a[3*2+0]*b[3*0+0] + a[3*2+1]*b[3*1+0] + a[3*2+2]*b[3*2+0],
		a[3*2+0]*b[3*0+1] + a[3*2+1]*b[3*1+1] + a[3*2+2]*b[3*2+1],
		a[3*2+0]*b[3*0+2] + a[3*2+1]*b[3*1+2] + a[3*2+2]*b[3*2+2],
	}
}

func (m Mat3) String() string {
	str := fmt.Sprintf("[%10f, %10f, %10f]\n", m[3*0+0], m[3*0+1], m[3*0+2])
	str += fmt.Sprintf("[%10f, %10f, %10f]\n", m[3*1+0], m[3*1+1], m[3*1+2])
	str += fmt.Sprintf("[%10f, %10f, %10f]\n", m[3*2+0], m[3*2+1], m[3*2+2])
	return str
}

// An Affine is a 3x3 matrix acting on (x,y,1), where x is the column
// and y the row. The transforms we build keep the bottom row at
// (0,0,1); an estimated one is stored the same way, and only its
// leading 2x3 block is ever used to move points around.
type Affine Mat3

func Identity() Affine {
	return Affine{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func Translation(tx, ty float64) Affine {
	return Affine{1, 0, tx, 0, 1, ty, 0, 0, 1}
}

func Scale(sx, sy float64) Affine {
	return Affine{sx, 0, 0, 0, sy, 0, 0, 0, 1}
}

// Shear skews x by shx*y, and y by shy*x.
func Shear(shx, shy float64) Affine {
	return Affine{1, shx, 0, shy, 1, 0, 0, 0, 1}
}

func Rotation(thetaDeg float64) Affine {
	cosTheta := math.Cos(thetaDeg * math.Pi / 180.0)
	sinTheta := math.Sin(thetaDeg * math.Pi / 180.0)
	return Affine{cosTheta, -1 * sinTheta, 0, sinTheta, cosTheta, 0, 0, 0, 1}
}

// Remember they compose back to front - q is applied first, then a.
func (a Affine) Mult(q Affine) Affine {
	return Affine(Mat3(a).Mult(Mat3(q)))
}

// Apply maps a point through the leading 2x3 block.
func (a Affine) Apply(p Point) Point {
	return Point{
		X: a[3*0+0]*p.X + a[3*0+1]*p.Y + a[3*0+2],
		Y: a[3*1+0]*p.X + a[3*1+1]*p.Y + a[3*1+2],
	}
}

// Inverse inverts the affine part; the bottom row of the result is
// always (0,0,1).
func (a Affine) Inverse() (Affine, error) {
	det := a[0]*a[4] - a[1]*a[3]
	if math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return Affine{}, fmt.Errorf("invert, det=%g: %w", det, ErrSingular)
	}

	invDet := 1.0 / det
	return Affine{
		a[4] * invDet, -a[1] * invDet, (a[1]*a[5] - a[4]*a[2]) * invDet,
		-a[3] * invDet, a[0] * invDet, (a[3]*a[2] - a[0]*a[5]) * invDet,
		0, 0, 1,
	}, nil
}

// IsAffine reports whether the bottom row is (0,0,1), within tol.
func (a Affine) IsAffine(tol float64) bool {
	return math.Abs(a[6]) <= tol && math.Abs(a[7]) <= tol && math.Abs(a[8]-1) <= tol
}

// Aff3 returns the leading 2x3 block, in the layout golang.org/x/image/draw wants.
func (a Affine) Aff3() f64.Aff3 {
	return f64.Aff3{a[0], a[1], a[2], a[3], a[4], a[5]}
}

func (a Affine) At(row, col int) float64 { return a[3*row+col] }

func (a Affine) Rows() [3][3]float64 {
	return [3][3]float64{
		{a[0], a[1], a[2]},
		{a[3], a[4], a[5]},
		{a[6], a[7], a[8]},
	}
}

func (a Affine) String() string { return Mat3(a).String() }
