package xtc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Assembler scatters per-panel frames into a single detector image using a
// fixed geometry. All coordinate work happens once in NewAssembler; per
// event only the scatter loop runs. An Assembler is read-only after
// construction and safe to share between workers.
type Assembler struct {
	shape       PanelShape
	panelRows   [][]int
	panelCols   [][]int
	imageHeight int
	imageWidth  int
}

// NewAssembler transforms every panel's pixel coordinates into the detector
// frame and converts them to integer image indices. The image spans the
// bounding box of all pixel centers, padded by half a pitch on each side so
// edge pixels bin cleanly; pixels never map outside it.
func NewAssembler(geometry *DetectorGeometry, shape PanelShape) (*Assembler, error) {
	if len(geometry.Panels) == 0 {
		return nil, fmt.Errorf("geometry has no panels")
	}

	local, err := PanelPixelCoords(shape)
	if err != nil {
		return nil, err
	}

	placed := make([]CoordinateArrays, len(geometry.Panels))
	xMin := math.Inf(1)
	yMin := math.Inf(1)
	for i, panel := range geometry.Panels {
		placed[i] = TransformPanelCoords(local, panel)
		xMin = math.Min(xMin, mat.Min(placed[i].X))
		yMin = math.Min(yMin, mat.Min(placed[i].Y))
	}

	// Shift the grid origin half a pitch below the smallest center so that
	// the minimum pixel lands in bin zero.
	xOrigin := xMin - shape.PixelSize/2
	yOrigin := yMin - shape.PixelSize/2

	assembler := &Assembler{
		shape:     shape,
		panelRows: make([][]int, len(placed)),
		panelCols: make([][]int, len(placed)),
	}
	nPixels := shape.Rows * shape.Cols
	for i, coords := range placed {
		rows := make([]int, nPixels)
		cols := make([]int, nPixels)
		for r := 0; r < shape.Rows; r++ {
			for c := 0; c < shape.Cols; c++ {
				row := int(math.Floor((coords.X.At(r, c) - xOrigin) / shape.PixelSize))
				col := int(math.Floor((coords.Y.At(r, c) - yOrigin) / shape.PixelSize))
				rows[r*shape.Cols+c] = row
				cols[r*shape.Cols+c] = col
				if row >= assembler.imageHeight {
					assembler.imageHeight = row + 1
				}
				if col >= assembler.imageWidth {
					assembler.imageWidth = col + 1
				}
			}
		}
		assembler.panelRows[i] = rows
		assembler.panelCols[i] = cols
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Assembler ready: %d panels, image %dx%d",
			len(placed), assembler.imageHeight, assembler.imageWidth)
		logger.Info(message, "assemble")
	}
	return assembler, nil
}

// ImageShape returns the assembled image dimensions in pixels.
func (a *Assembler) ImageShape() (height, width int) {
	return a.imageHeight, a.imageWidth
}

// NumPanels returns the number of panels the assembler was built for.
func (a *Assembler) NumPanels() int {
	return len(a.panelRows)
}

// Assemble scatters one event's panel frames into a detector image.
// Unmapped image pixels, including the gaps between panels, stay zero.
// When geometry maps two pixels to the same bin the later panel wins;
// frames must match the geometry's panel count and the panel shape.
func (a *Assembler) Assemble(frames [][]uint16) (*mat.Dense, error) {
	if len(frames) != len(a.panelRows) {
		return nil, &DimensionError{What: "panel frames", Want: len(a.panelRows), Got: len(frames)}
	}
	nPixels := a.shape.Rows * a.shape.Cols

	image := mat.NewDense(a.imageHeight, a.imageWidth, nil)
	for panel, frame := range frames {
		if len(frame) != nPixels {
			return nil, &DimensionError{What: fmt.Sprintf("panel %d frame", panel), Want: nPixels, Got: len(frame)}
		}
		rows := a.panelRows[panel]
		cols := a.panelCols[panel]
		for i, value := range frame {
			image.Set(rows[i], cols[i], float64(value))
		}
	}
	return image, nil
}

// AssembleEpix assembles an Epix10ka2M array with this assembler.
func (a *Assembler) AssembleEpix(array *Epix10ka2MArray) (*mat.Dense, error) {
	return a.Assemble(array.Frames)
}
