package xtc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEpix10ka2MArray(t *testing.T) {
	panelBytes := EpixRows * EpixCols * 2
	data := make([]byte, 4+EpixNumPanels*panelBytes)
	binary.LittleEndian.PutUint32(data[0:4], 77)
	// First pixel of panel 0 and of panel 15.
	binary.LittleEndian.PutUint16(data[4:6], 0xBEEF)
	binary.LittleEndian.PutUint16(data[4+15*panelBytes:6+15*panelBytes], 0xCAFE)

	array, err := ParseEpix10ka2MArray(data, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(77), array.FrameNumber)
	require.Equal(t, EpixNumPanels, array.NumPanels())
	assert.Len(t, array.Panel(0), EpixRows*EpixCols)
	assert.Equal(t, uint16(0xBEEF), array.Panel(0)[0])
	assert.Equal(t, uint16(0xCAFE), array.Panel(15)[0])
}

func TestParseEpix10ka2MArrayTooShort(t *testing.T) {
	_, err := ParseEpix10ka2MArray(make([]byte, 1000), 1)
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 1000, dimErr.Got)
}

func TestParseEpix10ka2MArrayIgnoresTrailer(t *testing.T) {
	panelBytes := EpixRows * EpixCols * 2
	data := make([]byte, 4+EpixNumPanels*panelBytes+500)
	array, err := ParseEpix10ka2MArray(data, 1)
	require.NoError(t, err)
	assert.Equal(t, EpixNumPanels, array.NumPanels())
}

func TestParseCameraFrame16Bit(t *testing.T) {
	data := make([]byte, 16+6*2)
	binary.LittleEndian.PutUint32(data[0:4], 3)   // width
	binary.LittleEndian.PutUint32(data[4:8], 2)   // height
	binary.LittleEndian.PutUint32(data[8:12], 12) // depth
	binary.LittleEndian.PutUint32(data[12:16], 32)
	binary.LittleEndian.PutUint16(data[16:18], 4095)

	frame, err := ParseCameraFrame(data, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), frame.Width)
	assert.Equal(t, uint32(2), frame.Height)
	assert.Equal(t, uint32(32), frame.Offset)
	require.Len(t, frame.Data, 6)
	assert.Equal(t, uint16(4095), frame.Data[0])
}

func TestParseCameraFrame8Bit(t *testing.T) {
	data := make([]byte, 16+4)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	binary.LittleEndian.PutUint32(data[4:8], 2)
	binary.LittleEndian.PutUint32(data[8:12], 8)
	data[16] = 200

	frame, err := ParseCameraFrame(data, 1)
	require.NoError(t, err)
	require.Len(t, frame.Data, 4)
	assert.Equal(t, uint16(200), frame.Data[0])
}

func TestParseCameraFrameShortPayload(t *testing.T) {
	data := make([]byte, 16+2)
	binary.LittleEndian.PutUint32(data[0:4], 100)
	binary.LittleEndian.PutUint32(data[4:8], 100)
	binary.LittleEndian.PutUint32(data[8:12], 16)

	_, err := ParseCameraFrame(data, 1)
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
}

func TestParsePnccdFrameTooShort(t *testing.T) {
	_, err := ParsePnccdFrame(make([]byte, 100), 1)
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 512*512*2, dimErr.Want)
}

func TestParseCspadElement(t *testing.T) {
	pixelBytes := CspadElementRows * CspadElementCols * 2
	data := make([]byte, 20+pixelBytes)
	binary.LittleEndian.PutUint32(data[12:16], 2) // quad
	binary.LittleEndian.PutUint32(data[16:20], 5) // section
	binary.LittleEndian.PutUint16(data[20:22], 1111)

	element, err := ParseCspadElement(data, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), element.Quad)
	assert.Equal(t, uint32(5), element.Section)
	require.Len(t, element.Data, CspadElementRows*CspadElementCols)
	assert.Equal(t, uint16(1111), element.Data[0])
}

func TestParseCspadConfig(t *testing.T) {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data[0:4], 0xF)
	binary.LittleEndian.PutUint32(data[4:8], 0xFF)
	binary.LittleEndian.PutUint32(data[8:12], 3)
	binary.LittleEndian.PutUint32(data[12:16], 40)

	config, err := ParseCspadConfig(data, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xF), config.QuadMask)
	assert.Equal(t, uint32(0xFF), config.AsicMask)
	assert.Equal(t, uint32(3), config.RunDelay)
	assert.Equal(t, uint32(40), config.EventCode)
}
