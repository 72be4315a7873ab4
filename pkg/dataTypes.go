package xtc

import (
	"encoding/binary"
	"fmt"
)

// Epix10ka2M detector layout.
const (
	EpixNumPanels = 16
	EpixRows      = 352
	EpixCols      = 384

	EpixPixelSizeUm     = 100.0
	EpixWidePixelSizeUm = 250.0
)

// Epix10ka2MArray is one event's raw detector payload: a frame counter
// followed by 16 panels of 352x384 little-endian uint16 samples.
type Epix10ka2MArray struct {
	FrameNumber uint32
	Frames      [][]uint16 // panel-major, each row-major 352*384
}

func (e *Epix10ka2MArray) NumPanels() int {
	return len(e.Frames)
}

func (e *Epix10ka2MArray) Panel(i int) []uint16 {
	return e.Frames[i]
}

// ParseEpix10ka2MArray decodes an Epix10ka2M array payload. Trailing
// calibration rows and environmental data after the frames are ignored.
func ParseEpix10ka2MArray(data []byte, version uint16) (*Epix10ka2MArray, error) {
	panelBytes := EpixRows * EpixCols * 2
	want := 4 + EpixNumPanels*panelBytes
	if len(data) < want {
		return nil, &DimensionError{What: "Epix10ka2M array", Want: want, Got: len(data)}
	}

	array := &Epix10ka2MArray{
		FrameNumber: binary.LittleEndian.Uint32(data[0:4]),
		Frames:      make([][]uint16, EpixNumPanels),
	}
	offset := 4
	for panel := 0; panel < EpixNumPanels; panel++ {
		array.Frames[panel] = decodeUint16Array(data[offset : offset+panelBytes])
		offset += panelBytes
	}
	return array, nil
}

// CameraFrame is a generic single-sensor frame: a 16-byte header declaring
// width, height, bit depth and baseline offset, then row-major pixels.
type CameraFrame struct {
	Width  uint32
	Height uint32
	Depth  uint32
	Offset uint32
	Data   []uint16
}

func ParseCameraFrame(data []byte, version uint16) (*CameraFrame, error) {
	if len(data) < 16 {
		return nil, &DimensionError{What: "camera frame header", Want: 16, Got: len(data)}
	}
	frame := &CameraFrame{
		Width:  binary.LittleEndian.Uint32(data[0:4]),
		Height: binary.LittleEndian.Uint32(data[4:8]),
		Depth:  binary.LittleEndian.Uint32(data[8:12]),
		Offset: binary.LittleEndian.Uint32(data[12:16]),
	}
	if frame.Depth > 16 {
		return nil, fmt.Errorf("unsupported camera bit depth: %d", frame.Depth)
	}

	nPixels := int(frame.Width) * int(frame.Height)
	bytesPerPixel := 2
	if frame.Depth <= 8 {
		bytesPerPixel = 1
	}
	want := 16 + nPixels*bytesPerPixel
	if len(data) < want {
		return nil, &DimensionError{What: "camera frame", Want: want, Got: len(data)}
	}

	if bytesPerPixel == 1 {
		frame.Data = make([]uint16, nPixels)
		for i, b := range data[16 : 16+nPixels] {
			frame.Data[i] = uint16(b)
		}
	} else {
		frame.Data = decodeUint16Array(data[16:want])
	}
	return frame, nil
}

// ParsePnccdFrame decodes a pnCCD frame: headerless 512x512 uint16 pixels.
func ParsePnccdFrame(data []byte, version uint16) (*CameraFrame, error) {
	const rows, cols = 512, 512
	want := rows * cols * 2
	if len(data) < want {
		return nil, &DimensionError{What: "pnCCD frame", Want: want, Got: len(data)}
	}
	return &CameraFrame{
		Width:  cols,
		Height: rows,
		Depth:  16,
		Data:   decodeUint16Array(data[:want]),
	}, nil
}

// ParsePrincetonFrame decodes a Princeton camera frame: shot id, readout
// time, width and height, then 16-bit pixels.
func ParsePrincetonFrame(data []byte, version uint16) (*CameraFrame, error) {
	if len(data) < 16 {
		return nil, &DimensionError{What: "Princeton frame header", Want: 16, Got: len(data)}
	}
	width := binary.LittleEndian.Uint32(data[8:12])
	height := binary.LittleEndian.Uint32(data[12:16])
	want := 16 + int(width)*int(height)*2
	if len(data) < want {
		return nil, &DimensionError{What: "Princeton frame", Want: want, Got: len(data)}
	}
	return &CameraFrame{
		Width:  width,
		Height: height,
		Depth:  16,
		Data:   decodeUint16Array(data[16:want]),
	}, nil
}

// CspadElement is one CSPad 2x1 section: 185x388 uint16 pixels.
type CspadElement struct {
	Quad    uint32
	Section uint32
	Data    []uint16
}

const (
	CspadElementRows = 185
	CspadElementCols = 388
)

func ParseCspadElement(data []byte, version uint16) (*CspadElement, error) {
	pixelBytes := CspadElementRows * CspadElementCols * 2
	want := 20 + pixelBytes
	if len(data) < want {
		return nil, &DimensionError{What: "CSPad element", Want: want, Got: len(data)}
	}
	// Element header: tid, acquisition count, op code, quad, section id.
	element := &CspadElement{
		Quad:    binary.LittleEndian.Uint32(data[12:16]),
		Section: binary.LittleEndian.Uint32(data[16:20]),
	}
	element.Data = decodeUint16Array(data[20:want])
	return element, nil
}

// CspadConfig is the reduced CSPad configuration record.
type CspadConfig struct {
	QuadMask  uint32
	AsicMask  uint32
	RunDelay  uint32
	EventCode uint32
}

func ParseCspadConfig(data []byte, version uint16) (*CspadConfig, error) {
	if len(data) < 16 {
		return nil, &DimensionError{What: "CSPad config", Want: 16, Got: len(data)}
	}
	return &CspadConfig{
		QuadMask:  binary.LittleEndian.Uint32(data[0:4]),
		AsicMask:  binary.LittleEndian.Uint32(data[4:8]),
		RunDelay:  binary.LittleEndian.Uint32(data[8:12]),
		EventCode: binary.LittleEndian.Uint32(data[12:16]),
	}, nil
}

func decodeUint16Array(data []byte) []uint16 {
	values := make([]uint16, len(data)/2)
	for i := range values {
		values[i] = binary.LittleEndian.Uint16(data[2*i : 2*i+2])
	}
	return values
}

// Registry adapters.

func parseCameraFrameAny(data []byte, version uint16) (any, error) {
	return ParseCameraFrame(data, version)
}

func parsePnccdFrameAny(data []byte, version uint16) (any, error) {
	return ParsePnccdFrame(data, version)
}

func parsePrincetonFrameAny(data []byte, version uint16) (any, error) {
	return ParsePrincetonFrame(data, version)
}

func parseCspadElementAny(data []byte, version uint16) (any, error) {
	return ParseCspadElement(data, version)
}

func parseCspadConfigAny(data []byte, version uint16) (any, error) {
	return ParseCspadConfig(data, version)
}

// Epix10ka2MInterpreter returns the interpreter for Epix10ka2M array
// payloads. The standard registry does not bind it to a code: deployments
// emit these arrays under experiment-specific numbering, so the caller
// registers it under whichever codes its stream actually uses.
func Epix10ka2MInterpreter() Interpreter {
	return Interpreter{
		Name: "Epix10ka2MArray",
		Parse: func(data []byte, version uint16) (any, error) {
			return ParseEpix10ka2MArray(data, version)
		},
	}
}
