package xtc

import "gonum.org/v1/gonum/mat"

// EventType is one fully processed event, ready to be written out.
type EventType struct {
	RunNumber int
	EventID   int
	Timestamp float64
	Fiducials uint32
	Damage    Damage
	Detector  *Epix10ka2MArray
	Image     *mat.Dense
	Error     bool
}
