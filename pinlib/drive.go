// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinlib

import hw "github.com/db47h/pinsim"

// cond is a decision table condition.
type cond int8

const (
	dc cond = iota // don't care
	yes
	no
)

func (c cond) match(b bool) bool {
	return c == dc || (c == yes) == b
}

// driveInputs are the pin state bits the drive decision depends on.
type driveInputs struct {
	driving   bool
	openDrain bool
	intended  bool
	pullUp    bool
	pullDown  bool
}

type driveRow struct {
	driving, openDrain, intended, pullUp, pullDown cond
	// out is indexed by analog capability: out[0] for digital only variants,
	// out[1] for analog capable variants.
	out [2]hw.Value
}

func both(v hw.Value) [2]hw.Value { return [2]hw.Value{v, v} }

// driveTable is the pin drive decision table shared by all pin variants. The
// first matching row wins.
//
var driveTable = [...]driveRow{
	{driving: no, pullUp: yes, pullDown: no, out: both(hw.W1)},
	{driving: no, pullUp: no, pullDown: yes, out: both(hw.W0)},
	{driving: no, pullUp: yes, pullDown: yes, out: [2]hw.Value{hw.X, hw.Z}},
	{driving: no, out: both(hw.Z)},
	{driving: yes, pullUp: yes, pullDown: yes, out: both(hw.X)},
	{driving: yes, intended: yes, pullUp: yes, pullDown: no, out: both(hw.W1)},
	{driving: yes, intended: no, pullUp: no, pullDown: yes, out: both(hw.W0)},
	{driving: yes, openDrain: yes, intended: yes, out: both(hw.Z)},
	{driving: yes, openDrain: no, intended: yes, out: both(hw.D1)},
	{driving: yes, intended: no, out: both(hw.D0)},
}

func (r *driveRow) match(in driveInputs) bool {
	return r.driving.match(in.driving) &&
		r.openDrain.match(in.openDrain) &&
		r.intended.match(in.intended) &&
		r.pullUp.match(in.pullUp) &&
		r.pullDown.match(in.pullDown)
}

// driveValue returns the contribution of a pin to its net for the given
// state. analog selects the analog capable column of the decision table.
//
func driveValue(in driveInputs, analog bool) hw.Value {
	col := 0
	if analog {
		col = 1
	}
	for i := range driveTable {
		if r := &driveTable[i]; r.match(in) {
			return r.out[col]
		}
	}
	return hw.Z
}
