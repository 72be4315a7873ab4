package xtc

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	"gonum.org/v1/gonum/mat"
)

// Writer streams processed events to an HDF5 file: event metadata and run
// info tables under /Run, raw panel frames and assembled images under /RD.
// The image and frame datasets need the detector dimensions, so each is
// created on the first event that actually carries that payload; streams
// open with transition events that carry none. Datasets are indexed by
// event row, so events written before the first detector payload leave
// zero rows behind and every row stays aligned with the event table.
type Writer struct {
	File         *hdf5.File
	Filename     string
	FirstEvt     bool
	RunGroup     *hdf5.Group
	RDGroup      *hdf5.Group
	EventTable   *hdf5.Dataset
	RunInfoTable *hdf5.Dataset
	RawFrames    *hdf5.Dataset
	Images       *hdf5.Dataset
	EvtCounter   int
}

func NewWriter(filename string) *Writer {
	writer := &Writer{}
	fmt.Println("hdf5writer: Creating file: ", filename)
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.RDGroup = createGroup(writer.File, "RD")
	writer.EventTable = createTable(writer.RunGroup, "events", EventDataHDF5{})
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{})
	writer.EvtCounter = 0
	return writer
}

func (w *Writer) WriteEvent(event *EventType) {
	evtData := EventDataHDF5{
		evt_number: int32(event.EventID),
		timestamp:  event.Timestamp,
		fiducials:  int32(event.Fiducials),
		damage:     int32(event.Damage.Flags()),
	}

	if !w.FirstEvt {
		writeEntryToTable(w.RunInfoTable, RunInfoHDF5{run_number: int32(event.RunNumber)}, w.EvtCounter)
		w.FirstEvt = true
	}
	if event.Detector != nil && w.RawFrames == nil {
		nPixels := EpixRows * EpixCols
		w.RawFrames = createPanelArray(w.RDGroup, "frames", event.Detector.NumPanels(), nPixels)
	}
	if event.Image != nil && w.Images == nil {
		height, width := event.Image.Dims()
		w.Images = createImageArray(w.RDGroup, "image", height, width)
	}

	writeEntryToTable(w.EventTable, evtData, w.EvtCounter)

	if event.Detector != nil && w.RawFrames != nil {
		nPixels := EpixRows * EpixCols
		nPanels := event.Detector.NumPanels()
		data := make([]uint16, nPanels*nPixels)
		for panel := 0; panel < nPanels; panel++ {
			copy(data[panel*nPixels:(panel+1)*nPixels], event.Detector.Panel(panel))
		}
		writePanelArray(w.RawFrames, &data, w.EvtCounter, nPanels, nPixels)
	}

	if event.Image != nil && w.Images != nil {
		height, width := event.Image.Dims()
		data := flattenImage(event.Image)
		writeImageArray(w.Images, &data, w.EvtCounter, height, width)
	}

	w.EvtCounter++
}

func flattenImage(image *mat.Dense) []float64 {
	height, width := image.Dims()
	data := make([]float64, height*width)
	for r := 0; r < height; r++ {
		copy(data[r*width:(r+1)*width], image.RawRowView(r))
	}
	return data
}

func (w *Writer) Close() error {
	fmt.Println("Closing file hdf writer ", w.Filename)
	var errs []error

	if err := w.EventTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing event table: %w", err))
	}
	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if w.RawFrames != nil {
		if err := w.RawFrames.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing raw frames: %w", err))
		}
	}
	if w.Images != nil {
		if err := w.Images.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing images: %w", err))
		}
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.RDGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing RD group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ProcessDecodedEvent routes one decoded event to the writer, honouring the
// output switches in the configuration.
func ProcessDecodedEvent(event EventType, configuration Configuration, writer *Writer) {
	if configuration.WriteData && !event.Error {
		if !configuration.WriteImages {
			event.Image = nil
		}
		writer.WriteEvent(&event)
	}
}
