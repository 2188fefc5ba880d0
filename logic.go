// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// Level is the digital tag of a value driven onto a wire.
//
type Level uint8

// Wire levels.
//
const (
	Drive0 Level = iota
	Drive1
	Weak0
	Weak1
	HighZ
	Undefined
	// Analog means the driver carries a scalar magnitude (see Value.Mag). It
	// behaves like a high impedance driver unless another driver contends.
	Analog

	levelCount

	// weakX is the resolver's private accumulator state for two opposite weak
	// drivers. Unlike Undefined, a strong driver still overrides it.
	weakX = levelCount
)

var levelNames = [...]string{"0", "1", "L", "H", "Z", "X", "A"}

func (l Level) String() string {
	if l < levelCount {
		return levelNames[l]
	}
	return "Level(" + strconv.Itoa(int(l)) + ")"
}

// Strong returns true for Drive0 and Drive1.
//
func (l Level) Strong() bool { return l == Drive0 || l == Drive1 }

// A Value is a single driver contribution or a resolved wire state.
//
type Value struct {
	Level Level
	// Mag is the analog magnitude. Only meaningful when Level is Analog.
	Mag float64
}

// Predefined digital values.
//
var (
	D0 = Value{Level: Drive0}
	D1 = Value{Level: Drive1}
	W0 = Value{Level: Weak0}
	W1 = Value{Level: Weak1}
	Z  = Value{Level: HighZ}
	X  = Value{Level: Undefined}
)

// AnalogValue returns an analog driver value of magnitude mag.
//
func AnalogValue(mag float64) Value {
	return Value{Level: Analog, Mag: mag}
}

// Drive returns D1 for true and D0 for false.
//
func Drive(b bool) Value {
	if b {
		return D1
	}
	return D0
}

// Bool returns the digital interpretation of v. ok is false if v is neither a
// strong nor a weak level.
//
func (v Value) Bool() (b bool, ok bool) {
	switch v.Level {
	case Drive1, Weak1:
		return true, true
	case Drive0, Weak0:
		return false, true
	}
	return false, false
}

func (v Value) String() string {
	if v.Level == Analog {
		return "A(" + strconv.FormatFloat(v.Mag, 'g', -1, 64) + ")"
	}
	return v.Level.String()
}

// ErrNoDrivers is returned by Resolve when called with no driver at all.
//
var ErrNoDrivers = errors.New("resolve: no drivers")

// combineTable is the pairwise conflict table, indexed by [a][b]. The extra
// row and column are for the private weakX state.
//
//	    0  1  L  H  Z  X  A  wX
var combineTable = [levelCount + 1][levelCount + 1]Level{
	{Drive0, Undefined, Drive0, Drive0, Drive0, Undefined, Undefined, Drive0},                 // 0
	{Undefined, Drive1, Drive1, Drive1, Drive1, Undefined, Undefined, Drive1},                 // 1
	{Drive0, Drive1, Weak0, weakX, Weak0, Undefined, Undefined, weakX},                        // L
	{Drive0, Drive1, weakX, Weak1, Weak1, Undefined, Undefined, weakX},                        // H
	{Drive0, Drive1, Weak0, Weak1, HighZ, Undefined, Analog, weakX},                           // Z
	{Undefined, Undefined, Undefined, Undefined, Undefined, Undefined, Undefined, Undefined},   // X
	{Undefined, Undefined, Undefined, Undefined, Analog, Undefined, Undefined, Undefined},      // A
	{Drive0, Drive1, weakX, weakX, weakX, Undefined, Undefined, weakX},                        // wX
}

// Combine returns the value seen on a wire driven by exactly a and b.
//
// Strong levels beat weak levels and HighZ, conflicting levels of the same
// strength yield Undefined, HighZ yields to anything, and an Analog driver
// only survives against HighZ.
//
func Combine(a, b Value) Value {
	r := combine(a, b)
	if r.Level == weakX {
		r = X
	}
	return r
}

func combine(a, b Value) Value {
	l := combineTable[a.Level][b.Level]
	switch l {
	case Analog:
		if a.Level == Analog {
			return a
		}
		return b
	case weakX:
		return Value{Level: weakX}
	}
	return Value{Level: l}
}

// Resolve combines all drivers of a wire into the observed value.
//
// The result depends only on the multiset of drivers, never on their order.
// It never looks at pull configurations: pulls are modeled as weak drivers.
//
func Resolve(drivers ...Value) (Value, error) {
	if len(drivers) == 0 {
		return X, ErrNoDrivers
	}
	for i, v := range drivers {
		if v.Level >= levelCount {
			return X, errors.Errorf("resolve: driver %d: invalid level %d", i, v.Level)
		}
	}
	r := drivers[0]
	for _, v := range drivers[1:] {
		r = combine(r, v)
	}
	if r.Level == weakX {
		r = X
	}
	return r, nil
}
