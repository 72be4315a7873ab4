package xtc

import (
	"path/filepath"
	"testing"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func emptyEpixFrames() [][]uint16 {
	frames := make([][]uint16, EpixNumPanels)
	for i := range frames {
		frames[i] = make([]uint16, EpixRows*EpixCols)
	}
	return frames
}

// Streams open with transition events carrying no detector payload; the
// frame and image datasets must appear with the first event that has one,
// not be lost to the first event written.
func TestWriteEventDatasetsCreatedOnFirstPayload(t *testing.T) {
	SetConfiguration(Configuration{Compression: 1})
	path := filepath.Join(t.TempDir(), "out.h5")
	writer := NewWriter(path)

	writer.WriteEvent(&EventType{RunNumber: 7, EventID: 0, Timestamp: 1.5})
	assert.Nil(t, writer.RawFrames)
	assert.Nil(t, writer.Images)

	writer.WriteEvent(&EventType{
		EventID:   1,
		Timestamp: 2.5,
		Fiducials: 9,
		Damage:    Damage(1 << DamageUninitialized),
		Detector:  &Epix10ka2MArray{Frames: emptyEpixFrames()},
		Image:     mat.NewDense(4, 4, nil),
	})
	assert.NotNil(t, writer.RawFrames)
	assert.NotNil(t, writer.Images)

	writer.WriteEvent(&EventType{
		EventID:   2,
		Timestamp: 3.5,
		Detector:  &Epix10ka2MArray{Frames: emptyEpixFrames()},
		Image:     mat.NewDense(4, 4, nil),
	})
	assert.Equal(t, 3, writer.EvtCounter)
	require.NoError(t, writer.Close())

	file, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	require.NoError(t, err)
	defer file.Close()

	events, err := file.OpenDataset("Run/events")
	require.NoError(t, err)
	defer events.Close()

	rows := make([]EventDataHDF5, 3)
	require.NoError(t, events.Read(&rows))
	assert.Equal(t, int32(1), rows[1].evt_number)
	assert.Equal(t, 2.5, rows[1].timestamp)
	assert.Equal(t, int32(9), rows[1].fiducials)
	assert.Equal(t, int32(1<<DamageUninitialized), rows[1].damage)
	assert.Equal(t, int32(0), rows[0].damage)
}

func TestWriteEventWithoutAnyPayload(t *testing.T) {
	SetConfiguration(Configuration{Compression: 1})
	path := filepath.Join(t.TempDir(), "meta.h5")
	writer := NewWriter(path)

	writer.WriteEvent(&EventType{RunNumber: 3, EventID: 0, Timestamp: 0.5})
	writer.WriteEvent(&EventType{EventID: 1, Timestamp: 1.5})
	assert.Equal(t, 2, writer.EvtCounter)
	assert.Nil(t, writer.RawFrames)
	assert.Nil(t, writer.Images)
	require.NoError(t, writer.Close())
}
