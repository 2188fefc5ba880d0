// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package esp32

import (
	"strconv"

	pl "github.com/db47h/pinsim/pinlib"
)

// NumPins is the number of GPIO pads.
//
const NumPins = 40

// Pad describes the fixed hardware of a pad.
//
type Pad struct {
	Variant pl.Variant
	Caps    pl.Caps
}

var (
	padDigital     = Pad{pl.DigitalMulti, pl.CapDigital}
	padAnalog      = Pad{pl.AnalogMulti, pl.CapDigital | pl.CapAnalog}
	padAnalogInput = Pad{pl.AnalogMulti, pl.CapInputOnly | pl.CapAnalog}
	padSensor      = Pad{pl.AnalogSingle, pl.CapInputOnly | pl.CapAnalog}
	padUnbonded    = Pad{pl.DigitalSingle, 0}
)

// DefaultPad returns the hardware of pad n.
//
//	0, 2, 4, 12-15, 25-27, 32, 33: analog capable, bidirectional
//	34, 35: analog capable, input only
//	36-39: analog sensor inputs, input only, GPIO function only
//	20, 24, 28-31: not bonded out
//	others: digital, bidirectional
//
func DefaultPad(n int) Pad {
	switch n {
	case 0, 2, 4, 12, 13, 14, 15, 25, 26, 27, 32, 33:
		return padAnalog
	case 34, 35:
		return padAnalogInput
	case 36, 37, 38, 39:
		return padSensor
	case 20, 24, 28, 29, 30, 31:
		return padUnbonded
	}
	return padDigital
}

// PadName returns the name of pad n.
//
func PadName(n int) string {
	return "GPIO" + strconv.Itoa(n)
}

// MatrixFunc is the IO_MUX function that connects a pad to the GPIO matrix.
//
const MatrixFunc = 2

// maxPadFunc is the highest IO_MUX function number.
const maxPadFunc = 5

// padFunc is an IO_MUX direct function: a peripheral signal connected to a
// pad, bypassing the GPIO matrix.
type padFunc struct {
	sig     int
	in, out bool
}

// ioMuxTable lists the direct functions of each pad, by function number.
var ioMuxTable = map[int]map[int]padFunc{
	1:  {0: {SigU0TXD, false, true}},
	3:  {0: {SigU0RXD, true, false}},
	5:  {1: {SigVSPICS0, true, true}},
	6:  {1: {0, true, true}},
	7:  {1: {1, true, true}},
	8:  {1: {2, true, true}},
	9:  {1: {3, true, true}, 4: {SigU1RXD, true, false}},
	10: {1: {4, true, true}, 4: {SigU1TXD, false, true}},
	11: {1: {5, true, true}},
	12: {1: {SigHSPIQ, true, true}},
	13: {1: {SigHSPID, true, true}},
	14: {1: {SigHSPICLK, true, true}},
	15: {1: {SigHSPICS0, true, true}},
	16: {4: {SigU2RXD, true, false}},
	17: {4: {SigU2TXD, false, true}},
	18: {1: {SigVSPICLK, true, true}},
	19: {1: {SigVSPIQ, true, true}, 3: {15, true, false}},
	21: {1: {66, true, true}},
	22: {1: {67, true, true}, 3: {15, false, true}},
	23: {1: {SigVSPID, true, true}},
}

// PadFunctions returns the direct IO_MUX functions of pad n, by function
// number, as "IN:name", "OUT:name" or "IO:name".
//
func PadFunctions(n int) map[int]string {
	r := make(map[int]string)
	for fn, pf := range ioMuxTable[n] {
		switch {
		case pf.in && pf.out:
			r[fn] = "IO:" + OutputName(pf.sig)
		case pf.in:
			r[fn] = "IN:" + InputName(pf.sig)
		default:
			r[fn] = "OUT:" + OutputName(pf.sig)
		}
	}
	return r
}

// LookupPadFunction returns the IO_MUX function of pad n that connects the
// named signal directly.
//
func LookupPadFunction(n int, name string) (int, bool) {
	for fn, pf := range ioMuxTable[n] {
		if pf.in && InputName(pf.sig) == name || pf.out && OutputName(pf.sig) == name {
			return fn, true
		}
	}
	return 0, false
}
