// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinlib

import (
	"strconv"
	"strings"
)

// Direction is the I/O direction of a pin.
//
type Direction uint8

// Pin directions.
//
const (
	DirNone Direction = iota
	DirInput
	DirOutput
	DirInout
)

var dirNames = [...]string{"NONE", "INPUT", "OUTPUT", "INOUT"}

func (d Direction) String() string {
	if int(d) < len(dirNames) {
		return dirNames[d]
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// Caps is the capability mask of a pad. It is fixed at construction and
// mirrors the physical pad.
//
type Caps uint16

// Capabilities.
//
const (
	CapInput Caps = 1 << iota
	CapOutput
	// CapNone allows direction DirNone, i.e. disconnecting the pad from both
	// the input and output paths.
	CapNone
	CapPullUp
	CapPullDown
	CapOpenDrain
	CapAnalog

	CapInout = CapInput | CapOutput

	// CapDigital is the mask of a fully featured digital pad.
	CapDigital = CapInout | CapNone | CapPullUp | CapPullDown | CapOpenDrain
	// CapInputOnly is the mask of an input only pad without pulls.
	CapInputOnly = CapInput | CapNone
)

var capNames = [...]string{"IN", "OUT", "NONE", "PU", "PD", "OD", "ANALOG"}

// Has returns true if all capabilities in m are present in c.
//
func (c Caps) Has(m Caps) bool { return c&m == m }

func (c Caps) String() string {
	if c == 0 {
		return "0"
	}
	var b strings.Builder
	for i, n := range capNames {
		if c&(1<<uint(i)) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(n)
	}
	return b.String()
}

// dirCaps returns the capability required to select d.
func dirCaps(d Direction) Caps {
	switch d {
	case DirNone:
		return CapNone
	case DirInput:
		return CapInput
	case DirOutput:
		return CapOutput
	case DirInout:
		return CapInout
	}
	return ^Caps(0)
}

// Function is the function selected on a pin.
//
// Alternate functions are numbered from 0. GPIO and Analog are reserved
// negative values.
//
type Function int

// Reserved functions.
//
const (
	GPIO   Function = -1
	Analog Function = -2
)

// Alt returns the n-th alternate function.
//
func Alt(n int) Function {
	if n < 0 {
		return Function(-3)
	}
	return Function(n)
}

// Alt returns the alternate function number of f. ok is false if f is not an
// alternate function.
//
func (f Function) Alt() (n int, ok bool) {
	if f < 0 {
		return 0, false
	}
	return int(f), true
}

func (f Function) String() string {
	switch {
	case f == GPIO:
		return "GPIO"
	case f == Analog:
		return "ANALOG"
	case f >= 0:
		return "FUNC" + strconv.Itoa(int(f))
	}
	return "Function(" + strconv.Itoa(int(f)) + ")"
}

// Variant is the pin model variant, i.e. whether a pin is analog capable and
// whether it supports alternate functions.
//
type Variant uint8

// Pin variants.
//
const (
	DigitalSingle Variant = iota
	DigitalMulti
	AnalogSingle
	AnalogMulti
)

var variantNames = [...]string{"digital", "digital-multi", "analog", "analog-multi"}

// Analog returns true for analog capable variants.
//
func (v Variant) Analog() bool { return v == AnalogSingle || v == AnalogMulti }

// Multi returns true for variants with alternate functions.
//
func (v Variant) Multi() bool { return v == DigitalMulti || v == AnalogMulti }

// Valid returns true if v is a known variant.
//
func (v Variant) Valid() bool { return int(v) < len(variantNames) }

func (v Variant) String() string {
	if v.Valid() {
		return variantNames[v]
	}
	return "Variant(" + strconv.Itoa(int(v)) + ")"
}

// ParseVariant returns the variant named s, as returned by Variant.String.
//
func ParseVariant(s string) (Variant, bool) {
	for i, n := range variantNames {
		if n == s {
			return Variant(i), true
		}
	}
	return 0, false
}
