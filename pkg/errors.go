package xtc

import "fmt"

// DecodeError reports a header decode attempted on a slice shorter than the
// fixed header length. The walker and reader check lengths before decoding,
// so hitting this is a caller bug, not a data problem.
type DecodeError struct {
	What string
	Need int
	Got  int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s needs %d bytes, got %d", e.What, e.Need, e.Got)
}

// CorruptionError reports a container whose declared extent is inconsistent
// with the bytes available. Recoverable per top-level record: the caller
// abandons the current record and resumes at the next record boundary.
// Truncated marks the case where the bytes simply end before a full
// container header, as opposed to a header declaring an impossible size.
type CorruptionError struct {
	Offset    int
	Extent    uint32
	Remaining int
	Truncated bool
	Reason    string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupt container at offset %d: %s (extent %d, %d bytes remaining)",
		e.Offset, e.Reason, e.Extent, e.Remaining)
}

// TruncatedPayloadError reports an event payload shorter than its header
// declared. The next record boundary is unknowable, so the stream ends here.
type TruncatedPayloadError struct {
	Want int
	Got  int
}

func (e *TruncatedPayloadError) Error() string {
	return fmt.Sprintf("truncated event payload: %d of %d bytes", e.Got, e.Want)
}

// UnknownTypeError reports a container type code with no registered
// interpreter. The payload is still handed back as opaque bytes.
type UnknownTypeError struct {
	Type    uint16
	Version uint16
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no interpreter registered for type %d version %d", e.Type, e.Version)
}

// GeometryError reports a malformed or implausible geometry description.
// Fatal for that geometry load; values are never silently substituted.
type GeometryError struct {
	Line   int
	Reason string
}

func (e *GeometryError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("geometry line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("geometry: %s", e.Reason)
}

// DimensionError reports a detector payload whose byte count does not match
// the shape expected for its type and version. Fatal for that event only.
type DimensionError struct {
	What string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: expected %d bytes, got %d", e.What, e.Want, e.Got)
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}
