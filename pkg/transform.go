package xtc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

func rotateZ(x, y *mat.Dense, angleDeg float64) (*mat.Dense, *mat.Dense) {
	s, c := math.Sincos(angleDeg * math.Pi / 180)
	rows, cols := x.Dims()
	xr := mat.NewDense(rows, cols, nil)
	yr := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			xv, yv := x.At(r, col), y.At(r, col)
			xr.Set(r, col, xv*c-yv*s)
			yr.Set(r, col, xv*s+yv*c)
		}
	}
	return xr, yr
}

func rotateY(x, z *mat.Dense, angleDeg float64) (*mat.Dense, *mat.Dense) {
	s, c := math.Sincos(angleDeg * math.Pi / 180)
	rows, cols := x.Dims()
	xr := mat.NewDense(rows, cols, nil)
	zr := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			xv, zv := x.At(r, col), z.At(r, col)
			xr.Set(r, col, xv*c+zv*s)
			zr.Set(r, col, -xv*s+zv*c)
		}
	}
	return xr, zr
}

func rotateX(y, z *mat.Dense, angleDeg float64) (*mat.Dense, *mat.Dense) {
	s, c := math.Sincos(angleDeg * math.Pi / 180)
	rows, cols := y.Dims()
	yr := mat.NewDense(rows, cols, nil)
	zr := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			yv, zv := y.At(r, col), z.At(r, col)
			yr.Set(r, col, yv*c-zv*s)
			zr.Set(r, col, yv*s+zv*c)
		}
	}
	return yr, zr
}

// rotateZYX applies the three axis rotations in the fixed Z, then Y, then
// X order. The order is part of the geometry contract: these rotations do
// not commute.
func rotateZYX(coords CoordinateArrays, zDeg, yDeg, xDeg float64) CoordinateArrays {
	x, y := rotateZ(coords.X, coords.Y, zDeg)
	z := coords.Z
	x, z = rotateY(x, z, yDeg)
	y, z = rotateX(y, z, xDeg)
	return CoordinateArrays{X: x, Y: y, Z: z}
}

func translate(m *mat.Dense, offset float64) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, m.At(r, c)+offset)
		}
	}
	return out
}

// TransformPanelCoords places a panel's local pixel coordinates in the
// detector frame: design rotations first, then translation to the panel
// position, then the small tilt corrections as a second rotation pass.
// Zero tilts make the second pass the identity.
func TransformPanelCoords(coords CoordinateArrays, geometry PanelGeometry) CoordinateArrays {
	placed := rotateZYX(coords, geometry.RotZ, geometry.RotY, geometry.RotX)
	placed.X = translate(placed.X, geometry.X0)
	placed.Y = translate(placed.Y, geometry.Y0)
	placed.Z = translate(placed.Z, geometry.Z0)
	return rotateZYX(placed, geometry.TiltZ, geometry.TiltY, geometry.TiltX)
}
