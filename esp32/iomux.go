// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package esp32

import (
	hw "github.com/db47h/pinsim"
	pl "github.com/db47h/pinsim/pinlib"
)

// SetPadFunction writes the MCU_SEL field of the IO_MUX register of pad n.
//
// MatrixFunc connects the pad to the GPIO matrix; other values select one of
// the direct functions listed by PadFunctions.
//
func (m *Matrix) SetPadFunction(n, fn int) bool {
	if m.badPin(n) {
		return false
	}
	if _, ok := ioMuxTable[n][fn]; fn != MatrixFunc && !ok {
		m.diag.Warn(hw.KindSelector, PadName(n), "no IO_MUX function %d", fn)
		return false
	}
	return m.pins[n].SetFunction(pl.Alt(fn))
}

// PadFunction returns the IO_MUX function of pad n, or -1 if the pad is not
// connected to any function.
//
func (m *Matrix) PadFunction(n int) int {
	if m.badPin(n) {
		return -1
	}
	if fn, ok := m.pins[n].Function().Alt(); ok {
		return fn
	}
	return -1
}
