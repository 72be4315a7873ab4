package xtc

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
)

// Standard LCLS1 type codes. The list is the stable subset; deployments are
// known to emit detector payloads under experiment-specific codes as well,
// which is why the registry is a value the caller owns and extends.
const (
	TypeAny            uint16 = 0
	TypeXtc            uint16 = 1
	TypeFrame          uint16 = 2
	TypeAcqWaveform    uint16 = 3
	TypeAcqConfig      uint16 = 4
	TypeTwoDGaussian   uint16 = 5
	TypeOpal1kConfig   uint16 = 6
	TypeFrameFexConfig uint16 = 7
	TypeEvrConfig      uint16 = 8
	TypeTM6740Config   uint16 = 9
	TypeControlConfig  uint16 = 10
	TypePnccdFrame     uint16 = 11
	TypePnccdConfig    uint16 = 12
	TypeEpics          uint16 = 13
	TypeFEEGasDet      uint16 = 14
	TypeEBeam          uint16 = 15
	TypePhaseCavity    uint16 = 16
	TypePrincetonFrame uint16 = 17
	TypeEvrData        uint16 = 19
	TypeIpimbData      uint16 = 22
	TypeIpimbConfig    uint16 = 23
	TypeEncoderData    uint16 = 24
	TypeEncoderConfig  uint16 = 25
	TypeCspadElement   uint16 = 28
	TypeCspadConfig    uint16 = 29
)

// ParseFunc decodes a leaf container payload into a typed value.
type ParseFunc func(data []byte, version uint16) (any, error)

// Interpreter describes how the walker and callers treat one type code.
// Composite entries contain nested containers; leaf entries optionally carry
// a payload parser. A leaf with a nil Parse is kept as opaque bytes.
type Interpreter struct {
	Name      string
	Composite bool
	Parse     ParseFunc
}

// TypeRegistry maps container type codes to interpreters. The zero value is
// not usable; construct with NewTypeRegistry.
type TypeRegistry struct {
	interpreters map[uint16]Interpreter
}

// NewTypeRegistry returns a registry seeded with the standard codes.
// Experiment-specific codes are added by the caller with Register, usually
// binding an existing parser under the deployment's private number.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{interpreters: make(map[uint16]Interpreter)}
	r.Register(TypeXtc, Interpreter{Name: "Xtc", Composite: true})
	r.Register(TypeFrame, Interpreter{Name: "Frame", Parse: parseCameraFrameAny})
	r.Register(TypePnccdFrame, Interpreter{Name: "PnccdFrame", Parse: parsePnccdFrameAny})
	r.Register(TypePrincetonFrame, Interpreter{Name: "PrincetonFrame", Parse: parsePrincetonFrameAny})
	r.Register(TypeCspadElement, Interpreter{Name: "CspadElement", Parse: parseCspadElementAny})
	r.Register(TypeCspadConfig, Interpreter{Name: "CspadConfig", Parse: parseCspadConfigAny})
	r.Register(TypeEpics, Interpreter{Name: "Epics"})
	r.Register(TypeEvrData, Interpreter{Name: "EvrData"})
	r.Register(TypeEBeam, Interpreter{Name: "EBeam"})
	r.Register(TypeFEEGasDet, Interpreter{Name: "FEEGasDetEnergy"})
	r.Register(TypePhaseCavity, Interpreter{Name: "PhaseCavity"})
	return r
}

func (r *TypeRegistry) Register(code uint16, in Interpreter) {
	r.interpreters[code] = in
}

func (r *TypeRegistry) Lookup(code uint16) (Interpreter, bool) {
	in, ok := r.interpreters[code]
	return in, ok
}

// IsComposite reports whether payloads of this type contain nested
// containers. The wire format itself carries no such marker.
func (r *TypeRegistry) IsComposite(code uint16) bool {
	in, ok := r.interpreters[code]
	return ok && in.Composite
}

// Codes returns the registered type codes in ascending order.
func (r *TypeRegistry) Codes() []uint16 {
	codes := maps.Keys(r.interpreters)
	slices.Sort(codes)
	return codes
}

// TypeName returns a printable name for a type code.
func (r *TypeRegistry) TypeName(code uint16) string {
	if in, ok := r.interpreters[code]; ok {
		return in.Name
	}
	return fmt.Sprintf("Unknown_%d", code)
}

// Interpret decodes a leaf payload with the registered parser. Unknown or
// parserless codes return the payload unchanged together with an
// UnknownTypeError, so no data is ever discarded silently.
func (r *TypeRegistry) Interpret(header XtcHeader, payload []byte) (any, error) {
	code := header.Contains.ID()
	in, ok := r.interpreters[code]
	if !ok || in.Parse == nil {
		return payload, &UnknownTypeError{Type: code, Version: header.Contains.Version()}
	}
	return in.Parse(payload, header.Contains.Version())
}
