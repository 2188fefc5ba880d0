// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package esp32

import (
	pl "github.com/db47h/pinsim/pinlib"
	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
)

// PadOverride replaces the hardware description of a pad.
//
type PadOverride struct {
	Pin     int
	Variant pl.Variant
	Caps    pl.Caps
}

// Config is the configuration of a Matrix.
//
type Config struct {
	// PadFunctions sets the initial IO_MUX function of pads, by pad number.
	// Multi function pads not listed start with MatrixFunc.
	PadFunctions map[int]int
	// Pads overrides the hardware description of some pads.
	Pads []PadOverride
	// Strict reports selector anomalies for output function codes that map
	// to no peripheral signal. They float either way.
	Strict bool
}

// Validate checks the configuration and returns all problems found.
//
func (cfg *Config) Validate() error {
	var ae aerr.AggregateError
	seen := make(map[int]bool)
	for _, o := range cfg.Pads {
		if o.Pin < 0 || o.Pin >= NumPins {
			ae.Add(errors.Errorf("pad override: invalid pin %d", o.Pin))
			continue
		}
		if seen[o.Pin] {
			ae.Add(errors.Errorf("pad override: duplicate pin %d", o.Pin))
		}
		seen[o.Pin] = true
		if !o.Variant.Valid() {
			ae.Add(errors.Errorf("pad override: pin %d: invalid variant %v", o.Pin, o.Variant))
		}
		if o.Caps.Has(pl.CapAnalog) && !o.Variant.Analog() {
			ae.Add(errors.Errorf("pad override: pin %d: analog capability on %v pad", o.Pin, o.Variant))
		}
	}
	for n, fn := range cfg.PadFunctions {
		if n < 0 || n >= NumPins {
			ae.Add(errors.Errorf("pad function: invalid pin %d", n))
			continue
		}
		if fn < 0 || fn > maxPadFunc {
			ae.Add(errors.Errorf("pad function: pin %d: invalid function %d", n, fn))
			continue
		}
		if !cfg.pad(n).Variant.Multi() {
			ae.Add(errors.Errorf("pad function: pin %d is a single function pad", n))
			continue
		}
		if _, ok := ioMuxTable[n][fn]; fn != MatrixFunc && !ok {
			ae.Add(errors.Errorf("pad function: pin %d has no function %d", n, fn))
		}
	}
	return ae.AsError()
}

// pad returns the hardware of pad n, overrides included.
func (cfg *Config) pad(n int) Pad {
	for _, o := range cfg.Pads {
		if o.Pin == n {
			return Pad{o.Variant, o.Caps}
		}
	}
	return DefaultPad(n)
}

// padFunction returns the initial IO_MUX function of pad n.
func (cfg *Config) padFunction(n int) int {
	if fn, ok := cfg.PadFunctions[n]; ok {
		return fn
	}
	return MatrixFunc
}
