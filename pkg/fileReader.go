package xtc

import (
	"fmt"
	"io"
)

// EventReader reads one datagram at a time from a byte source. Strictly
// sequential and forward-only; a single reader per source. The payload
// buffer is reallocated per event, so nothing retains all events at once.
type EventReader struct {
	source   io.Reader
	EvtCount int
}

func NewEventReader(source io.Reader) *EventReader {
	return &EventReader{source: source}
}

// NextEvent returns the next datagram and the payload of its top-level
// container. A source ending inside the 40 header bytes (datagram header
// plus the split container header) is a clean end-of-stream and returns
// io.EOF: incomplete trailing writes are a known artifact of how these
// streams are produced. A payload shorter than its declared extent returns
// a *TruncatedPayloadError and the stream terminates, since the next record
// boundary cannot be located.
func (r *EventReader) NextEvent() (Datagram, []byte, error) {
	var dgram Datagram

	headerBinary := make([]byte, DgramHeaderSize)
	if _, err := io.ReadFull(r.source, headerBinary); err != nil {
		if err == io.ErrUnexpectedEOF {
			return dgram, nil, io.EOF
		}
		return dgram, nil, err
	}
	dgram, err := DecodeDgramHeader(headerBinary)
	if err != nil {
		return dgram, nil, err
	}

	// Remainder of the split top-level container header.
	splitBinary := make([]byte, XtcHeaderSize-4)
	if _, err := io.ReadFull(r.source, splitBinary); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return dgram, nil, io.EOF
		}
		return dgram, nil, err
	}
	if err := CompleteDatagram(&dgram, splitBinary); err != nil {
		return dgram, nil, err
	}

	payloadSize := dgram.Xtc.PayloadSize()
	if payloadSize < 0 {
		corrupt := &CorruptionError{
			Extent: dgram.Xtc.Extent,
			Reason: "top-level extent smaller than a container header",
		}
		logger.Error(corrupt.Error())
		return dgram, nil, corrupt
	}

	payload := make([]byte, payloadSize)
	nRead, err := io.ReadFull(r.source, payload)
	if err != nil {
		truncated := &TruncatedPayloadError{Want: payloadSize, Got: nRead}
		logger.Error(truncated.Error())
		return dgram, nil, truncated
	}

	r.EvtCount++
	return dgram, payload, nil
}

// CountEvents scans a seekable source to the end, counting events, and
// rewinds. Corrupt or truncated records end the count without error.
func CountEvents(source io.ReadSeeker) (int, error) {
	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	reader := NewEventReader(source)
	evtCount := 0
	for {
		_, _, err := reader.NextEvent()
		if err == io.EOF {
			break
		}
		if err != nil {
			message := fmt.Sprintf("event count stopped early: %v", err)
			logger.Error(message)
			break
		}
		evtCount++
	}
	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return evtCount, err
	}
	return evtCount, nil
}
