package main

import (
	"fmt"
	"io"
	"os"

	xtc "github.com/lcls-exp/xtcreader_go/pkg"
)

type FileReader struct {
	reader   *xtc.EventReader
	EvtCount int
}

func NewFileReader(file *os.File) *FileReader {
	return &FileReader{reader: xtc.NewEventReader(file), EvtCount: -1}
}

// getNextEvent returns the next datagram and payload, applying the skip and
// max-events windows from the configuration.
func (f *FileReader) getNextEvent() (xtc.Datagram, []byte, error) {
	dgram, payload, err := f.reader.NextEvent()
	if err != nil {
		return dgram, nil, err
	}
	f.EvtCount++
	if configuration.MaxEvents >= 0 && f.EvtCount >= configuration.MaxEvents {
		if VerbosityLevel > 0 {
			logger.Info("Max events reached", "fileReader")
		}
		return dgram, nil, io.EOF
	}
	if f.EvtCount < configuration.Skip {
		if VerbosityLevel > 0 {
			message := fmt.Sprintf("Skipping event %d with fiducials %d", f.EvtCount, dgram.Stamp.Fiducials())
			logger.Info(message, "fileReader")
		}
		return f.getNextEvent()
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading event %d with fiducials %d", f.EvtCount, dgram.Stamp.Fiducials())
		logger.Info(message, "fileReader")
	}
	return dgram, payload, nil
}
