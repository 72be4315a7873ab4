package xtc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGeometry = `
# TITLE      Epix10ka2M alignment
# DATE_TIME  2020-06-19
#
# PARENT IND OBJECT     IND    X0       Y0     Z0   ROT-Z ROT-Y ROT-X TILT-Z TILT-Y TILT-X

CAMERA   0  EPIX10KA:V1  0  -31936    53939    0      90     0     0   0.161  0.000  0.000
CAMERA   0  EPIX10KA:V1  1   -5850    53965    0      90     0     0  -0.004  0.000  0.000
IP       0  CAMERA       0       0        0  100000     0     0     0   0.000  0.000  0.000
`

func TestParseGeometry(t *testing.T) {
	geometry, err := ParseGeometry(strings.NewReader(sampleGeometry))
	require.NoError(t, err)
	require.Len(t, geometry.Panels, 3)

	first := geometry.Panels[0]
	assert.Equal(t, "CAMERA", first.Parent)
	assert.Equal(t, 0, first.ParentIndex)
	assert.Equal(t, "EPIX10KA:V1", first.Object)
	assert.Equal(t, 0, first.ObjectIndex)
	assert.Equal(t, -31936.0, first.X0)
	assert.Equal(t, 53939.0, first.Y0)
	assert.Equal(t, 90.0, first.RotZ)
	assert.Equal(t, 0.161, first.TiltZ)

	panels := geometry.PanelsOf("CAMERA")
	require.Len(t, panels, 2)
	assert.Equal(t, 1, panels[1].ObjectIndex)
}

func TestParseGeometryTooFewFields(t *testing.T) {
	_, err := ParseGeometry(strings.NewReader("CAMERA 0 EPIX 0 1 2 3\n"))
	var geomErr *GeometryError
	require.ErrorAs(t, err, &geomErr)
	assert.Equal(t, 1, geomErr.Line)
}

func TestParseGeometryBadNumber(t *testing.T) {
	line := "CAMERA 0 EPIX 0 bogus 0 0 0 0 0 0 0 0\n"
	_, err := ParseGeometry(strings.NewReader("# header\n" + line))
	var geomErr *GeometryError
	require.ErrorAs(t, err, &geomErr)
	assert.Equal(t, 2, geomErr.Line)
	assert.Contains(t, geomErr.Reason, "bogus")
}

func TestParseGeometryPositionOutOfRange(t *testing.T) {
	line := "CAMERA 0 EPIX 0 2000000 0 0 0 0 0 0 0 0\n"
	_, err := ParseGeometry(strings.NewReader(line))
	var geomErr *GeometryError
	require.ErrorAs(t, err, &geomErr)
	assert.Contains(t, geomErr.Reason, "position")
}

func TestParseGeometryAngleOutOfRange(t *testing.T) {
	line := "CAMERA 0 EPIX 0 0 0 0 450 0 0 0 0 0\n"
	_, err := ParseGeometry(strings.NewReader(line))
	var geomErr *GeometryError
	require.ErrorAs(t, err, &geomErr)
	assert.Contains(t, geomErr.Reason, "angle")
}

func TestParseGeometryEmpty(t *testing.T) {
	geometry, err := ParseGeometry(strings.NewReader("# only comments\n\n"))
	require.NoError(t, err)
	assert.Empty(t, geometry.Panels)
}
