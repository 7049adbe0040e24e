/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Sentinel errors shared by the marker inference packages. Callers wrap them
with context and test for them with errors.Is.
*/

package core

import "errors"

var (
	// ErrConfiguration is returned when the corpus or settings cannot be used at all
	ErrConfiguration = errors.New("configuration error")

	// ErrNoMarker is returned when no single byte satisfies every entry's multiplicity
	ErrNoMarker = errors.New("no marker found")

	// ErrAmbiguous flags more than one maximal-length exact anchor; it is logged, not returned
	ErrAmbiguous = errors.New("ambiguous anchors")

	// ErrPatternExplosion flags an assembler candidate space larger than the configured bound
	ErrPatternExplosion = errors.New("pattern candidate space too large")

	// ErrInvariantViolation is returned when a classification fails its recomputation
	ErrInvariantViolation = errors.New("classification invariant violation")
)
