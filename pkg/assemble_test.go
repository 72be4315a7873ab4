package xtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleSinglePanelUniformGrid(t *testing.T) {
	// wide == pitch gives a uniform grid: the panel maps onto the image
	// without gaps, rows from x (columns), cols from y (rows).
	shape := PanelShape{Rows: 2, Cols: 2, PixelSize: 100, WidePixelSize: 100}
	geometry := &DetectorGeometry{Panels: []PanelGeometry{{}}}

	assembler, err := NewAssembler(geometry, shape)
	require.NoError(t, err)

	height, width := assembler.ImageShape()
	assert.Equal(t, 2, height)
	assert.Equal(t, 2, width)

	image, err := assembler.Assemble([][]uint16{{1, 2, 3, 4}})
	require.NoError(t, err)

	// Pixel (r,c) has x = xAxis[c], y = yAxis[r]; y decreases with r.
	assert.Equal(t, 3.0, image.At(0, 0)) // r1c0: x=-50 y=-50
	assert.Equal(t, 1.0, image.At(0, 1)) // r0c0: x=-50 y=+50
	assert.Equal(t, 4.0, image.At(1, 0)) // r1c1: x=+50 y=-50
	assert.Equal(t, 2.0, image.At(1, 1)) // r0c1: x=+50 y=+50
}

func TestAssembleTwoPanels(t *testing.T) {
	shape := PanelShape{Rows: 2, Cols: 2, PixelSize: 100, WidePixelSize: 100}
	geometry := &DetectorGeometry{Panels: []PanelGeometry{
		{},
		{X0: 500, RotZ: 90},
	}}

	assembler, err := NewAssembler(geometry, shape)
	require.NoError(t, err)
	assert.Equal(t, 2, assembler.NumPanels())

	// Panel 1 pixels rotate (x,y) -> (-y,x) and shift to x ~ 450..550,
	// so the image spans seven 100 um bins along x and two along y.
	height, width := assembler.ImageShape()
	assert.Equal(t, 7, height)
	assert.Equal(t, 2, width)

	image, err := assembler.Assemble([][]uint16{
		{1, 2, 3, 4},
		{10, 20, 30, 40},
	})
	require.NoError(t, err)

	// Panel 0 occupies image rows 0-1.
	assert.Equal(t, 1.0, image.At(0, 1))
	assert.Equal(t, 2.0, image.At(1, 1))
	assert.Equal(t, 3.0, image.At(0, 0))
	assert.Equal(t, 4.0, image.At(1, 0))

	// Panel 1 occupies image rows 5-6.
	assert.Equal(t, 10.0, image.At(5, 0))
	assert.Equal(t, 20.0, image.At(5, 1))
	assert.Equal(t, 30.0, image.At(6, 0))
	assert.Equal(t, 40.0, image.At(6, 1))

	// The gap between the panels stays at the background value.
	for r := 2; r <= 4; r++ {
		for c := 0; c < width; c++ {
			assert.Equal(t, 0.0, image.At(r, c), "gap pixel (%d,%d)", r, c)
		}
	}
}

func TestAssembleWrongPanelCount(t *testing.T) {
	shape := PanelShape{Rows: 2, Cols: 2, PixelSize: 100, WidePixelSize: 100}
	geometry := &DetectorGeometry{Panels: []PanelGeometry{{}, {X0: 500}}}

	assembler, err := NewAssembler(geometry, shape)
	require.NoError(t, err)

	_, err = assembler.Assemble([][]uint16{{1, 2, 3, 4}})
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 2, dimErr.Want)
	assert.Equal(t, 1, dimErr.Got)
}

func TestAssembleWrongFrameLength(t *testing.T) {
	shape := PanelShape{Rows: 2, Cols: 2, PixelSize: 100, WidePixelSize: 100}
	geometry := &DetectorGeometry{Panels: []PanelGeometry{{}}}

	assembler, err := NewAssembler(geometry, shape)
	require.NoError(t, err)

	_, err = assembler.Assemble([][]uint16{{1, 2, 3}})
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 4, dimErr.Want)
	assert.Equal(t, 3, dimErr.Got)
}

func TestAssembleEmptyGeometry(t *testing.T) {
	_, err := NewAssembler(&DetectorGeometry{}, Epix10ka2MPanelShape())
	assert.Error(t, err)
}

func TestAssembleEpixFullDetector(t *testing.T) {
	// 16 panels in a row, far enough apart not to overlap.
	panels := make([]PanelGeometry, EpixNumPanels)
	for i := range panels {
		panels[i] = PanelGeometry{X0: float64(i) * 40000}
	}
	geometry := &DetectorGeometry{Panels: panels}

	assembler, err := NewAssembler(geometry, Epix10ka2MPanelShape())
	require.NoError(t, err)

	frames := make([][]uint16, EpixNumPanels)
	for i := range frames {
		frames[i] = make([]uint16, EpixRows*EpixCols)
		frames[i][0] = uint16(i + 1)
	}
	array := &Epix10ka2MArray{Frames: frames}

	image, err := assembler.AssembleEpix(array)
	require.NoError(t, err)

	height, width := image.Dims()
	imageHeight, imageWidth := assembler.ImageShape()
	assert.Equal(t, imageHeight, height)
	assert.Equal(t, imageWidth, width)

	// Every frame value survives somewhere in the image.
	found := make(map[float64]bool)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			if v := image.At(r, c); v != 0 {
				found[v] = true
			}
		}
	}
	for i := 1; i <= EpixNumPanels; i++ {
		assert.True(t, found[float64(i)], "panel %d value missing", i)
	}
}
