package xtc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// PanelGeometry is one line of an alignment file: the placement of one
// object in its parent's frame. Positions are micrometers, angles degrees.
// Rotations are the design orientation (multiples of 90); tilts are the
// small measured corrections applied on top.
type PanelGeometry struct {
	Parent      string
	ParentIndex int
	Object      string
	ObjectIndex int
	X0          float64
	Y0          float64
	Z0          float64
	RotZ        float64
	RotY        float64
	RotX        float64
	TiltZ       float64
	TiltY       float64
	TiltX       float64
}

// DetectorGeometry is a parsed alignment file, panels in file order.
type DetectorGeometry struct {
	Panels []PanelGeometry
}

const geometryFields = 13

// PanelsOf returns the geometry lines whose parent matches name, in file
// order. File order is the panel index order used during assembly.
func (g *DetectorGeometry) PanelsOf(parent string) []PanelGeometry {
	panels := make([]PanelGeometry, 0, len(g.Panels))
	for _, panel := range g.Panels {
		if panel.Parent == parent {
			panels = append(panels, panel)
		}
	}
	return panels
}

const (
	maxPositionUm  = 1e6
	maxRotationDeg = 360
)

// ParseGeometry reads a psana-style alignment file: whitespace-separated
// columns, '#' comment lines and blank lines skipped. Implausible values
// are rejected here so a misread file fails at load time, not as a
// silently wrong image.
func ParseGeometry(source io.Reader) (*DetectorGeometry, error) {
	geometry := &DetectorGeometry{}
	scanner := bufio.NewScanner(source)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < geometryFields {
			return nil, &GeometryError{
				Line:   lineNumber,
				Reason: fmt.Sprintf("expected %d fields, got %d", geometryFields, len(fields)),
			}
		}

		panel := PanelGeometry{Parent: fields[0], Object: fields[2]}
		var err error
		if panel.ParentIndex, err = strconv.Atoi(fields[1]); err != nil {
			return nil, &GeometryError{Line: lineNumber, Reason: "bad parent index: " + fields[1]}
		}
		if panel.ObjectIndex, err = strconv.Atoi(fields[3]); err != nil {
			return nil, &GeometryError{Line: lineNumber, Reason: "bad object index: " + fields[3]}
		}

		values := make([]float64, 9)
		for i := range values {
			values[i], err = strconv.ParseFloat(fields[4+i], 64)
			if err != nil {
				return nil, &GeometryError{Line: lineNumber, Reason: "bad numeric field: " + fields[4+i]}
			}
		}
		panel.X0, panel.Y0, panel.Z0 = values[0], values[1], values[2]
		panel.RotZ, panel.RotY, panel.RotX = values[3], values[4], values[5]
		panel.TiltZ, panel.TiltY, panel.TiltX = values[6], values[7], values[8]

		for _, position := range []float64{panel.X0, panel.Y0, panel.Z0} {
			if position < -maxPositionUm || position > maxPositionUm {
				return nil, &GeometryError{
					Line:   lineNumber,
					Reason: fmt.Sprintf("position %g um out of range", position),
				}
			}
		}
		angles := []float64{panel.RotZ, panel.RotY, panel.RotX, panel.TiltZ, panel.TiltY, panel.TiltX}
		for _, angle := range angles {
			if angle < -maxRotationDeg || angle > maxRotationDeg {
				return nil, &GeometryError{
					Line:   lineNumber,
					Reason: fmt.Sprintf("angle %g deg out of range", angle),
				}
			}
		}

		geometry.Panels = append(geometry.Panels, panel)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Geometry loaded: %d panels", len(geometry.Panels))
		logger.Info(message, "geometry")
	}
	return geometry, nil
}

// ParseGeometryFile reads and parses an alignment file from disk.
func ParseGeometryFile(filename string) (*DetectorGeometry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()
	return ParseGeometry(file)
}
