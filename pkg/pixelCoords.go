package xtc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PanelShape describes one sensor's pixel grid. Rows and Cols must be even:
// the wide pixels sit on the two central ASIC edges, so each half-axis is
// generated independently and mirrored.
type PanelShape struct {
	Rows          int
	Cols          int
	PixelSize     float64
	WidePixelSize float64
}

// Epix10ka2MPanelShape is the production Epix10ka2M sensor grid.
func Epix10ka2MPanelShape() PanelShape {
	return PanelShape{
		Rows:          EpixRows,
		Cols:          EpixCols,
		PixelSize:     EpixPixelSizeUm,
		WidePixelSize: EpixWidePixelSizeUm,
	}
}

// CoordinateArrays are per-pixel center coordinates in micrometers, one
// rows-by-cols matrix per axis.
type CoordinateArrays struct {
	X *mat.Dense
	Y *mat.Dense
	Z *mat.Dense
}

// halfAxisCenters returns pixel center positions for one half of an axis,
// from the panel center outward. The innermost pixel is wide, so its center
// sits at half the wide width; every later center is shifted by the extra
// width of that first pixel.
func halfAxisCenters(n int, pitch float64, wide float64) []float64 {
	centers := make([]float64, n)
	for i := 1; i < n; i++ {
		centers[i] = float64(i)*pitch + wide - pitch/2
	}
	centers[0] = wide / 2
	return centers
}

// PanelPixelCoords generates local pixel center coordinates for one panel.
// The x axis runs along columns (negative to positive), the y axis along
// rows (positive to negative, so row 0 is the top of the sensor), and z is
// zero: panels are flat in their own frame.
func PanelPixelCoords(shape PanelShape) (CoordinateArrays, error) {
	if shape.Rows <= 0 || shape.Cols <= 0 || shape.Rows%2 != 0 || shape.Cols%2 != 0 {
		return CoordinateArrays{}, fmt.Errorf("panel shape must have positive even dimensions, got %dx%d", shape.Rows, shape.Cols)
	}

	xHalf := halfAxisCenters(shape.Cols/2, shape.PixelSize, shape.WidePixelSize)
	yHalf := halfAxisCenters(shape.Rows/2, shape.PixelSize, shape.WidePixelSize)

	xAxis := make([]float64, shape.Cols)
	for i, center := range xHalf {
		xAxis[shape.Cols/2-1-i] = -center
		xAxis[shape.Cols/2+i] = center
	}
	yAxis := make([]float64, shape.Rows)
	for i, center := range yHalf {
		yAxis[shape.Rows/2-1-i] = center
		yAxis[shape.Rows/2+i] = -center
	}

	coords := CoordinateArrays{
		X: mat.NewDense(shape.Rows, shape.Cols, nil),
		Y: mat.NewDense(shape.Rows, shape.Cols, nil),
		Z: mat.NewDense(shape.Rows, shape.Cols, nil),
	}
	for r := 0; r < shape.Rows; r++ {
		for c := 0; c < shape.Cols; c++ {
			coords.X.Set(r, c, xAxis[c])
			coords.Y.Set(r, c, yAxis[r])
		}
	}
	return coords, nil
}
