// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package esp32

import "strconv"

// Signal indices in the GPIO matrix. Input and output signals share the same
// index space: index n may name an input signal, an output signal, or both.
//
const (
	// NumSignals is the number of peripheral signal indices.
	NumSignals = 256
	// NumPCNT is the number of pulse counter units.
	NumPCNT = 8
)

// Frequently used signal indices.
//
const (
	SigHSPICLK    = 8
	SigHSPIQ      = 9
	SigHSPID      = 10
	SigHSPICS0    = 11
	SigU0RXD      = 14
	SigU0TXD      = 14
	SigU1RXD      = 17
	SigU1TXD      = 17
	SigI2CEXT0SCL = 29
	SigI2CEXT0SDA = 30
	SigVSPICLK    = 63
	SigVSPIQ      = 64
	SigVSPID      = 65
	SigVSPICS0    = 68
	SigLEDCHS0    = 71
	SigLEDCLS0    = 79
	SigU2RXD      = 198
	SigU2TXD      = 198
)

// signalInfo names the input and output signals at one index. Empty names
// are unused.
type signalInfo struct {
	in, out string
}

// signalTable is the subset of the peripheral signal table modeled here.
var signalTable = map[int]signalInfo{
	0:   {"SPICLK", "SPICLK"},
	1:   {"SPIQ", "SPIQ"},
	2:   {"SPID", "SPID"},
	3:   {"SPIHD", "SPIHD"},
	4:   {"SPIWP", "SPIWP"},
	5:   {"SPICS0", "SPICS0"},
	6:   {"SPICS1", "SPICS1"},
	7:   {"SPICS2", "SPICS2"},
	8:   {"HSPICLK", "HSPICLK"},
	9:   {"HSPIQ", "HSPIQ"},
	10:  {"HSPID", "HSPID"},
	11:  {"HSPICS0", "HSPICS0"},
	12:  {"HSPIHD", "HSPIHD"},
	13:  {"HSPIWP", "HSPIWP"},
	14:  {"U0RXD", "U0TXD"},
	15:  {"U0CTS", "U0RTS"},
	16:  {"U0DSR", "U0DTR"},
	17:  {"U1RXD", "U1TXD"},
	18:  {"U1CTS", "U1RTS"},
	29:  {"I2CEXT0_SCL", "I2CEXT0_SCL"},
	30:  {"I2CEXT0_SDA", "I2CEXT0_SDA"},
	63:  {"VSPICLK", "VSPICLK"},
	64:  {"VSPIQ", "VSPIQ"},
	65:  {"VSPID", "VSPID"},
	66:  {"VSPIHD", "VSPIHD"},
	67:  {"VSPIWP", "VSPIWP"},
	68:  {"VSPICS0", "VSPICS0"},
	95:  {"I2CEXT1_SCL", "I2CEXT1_SCL"},
	96:  {"I2CEXT1_SDA", "I2CEXT1_SDA"},
	198: {"U2RXD", "U2TXD"},
	199: {"U2CTS", "U2RTS"},
}

// pcntSignals are the names of the four inputs of a pulse counter unit, in
// signal index order.
var pcntSignals = [4]string{"SIG_CH0", "SIG_CH1", "CTRL_CH0", "CTRL_CH1"}

// pcntBase returns the index of the first input signal of pulse counter unit
// u. Units 0 to 4 and 5 to 7 occupy two separate ranges.
func pcntBase(u int) int {
	if u < 5 {
		return 39 + 4*u
	}
	return 71 + 4*(u-5)
}

func init() {
	for u := 0; u < NumPCNT; u++ {
		for k, n := range pcntSignals {
			i := pcntBase(u) + k
			si := signalTable[i]
			si.in = "PCNT" + strconv.Itoa(u) + "_" + n
			signalTable[i] = si
		}
	}
	for i := 0; i < 8; i++ {
		n := strconv.Itoa(i)
		hs, ls := signalTable[71+i], signalTable[79+i]
		hs.out = "LEDC_HS" + n
		ls.out = "LEDC_LS" + n
		signalTable[71+i], signalTable[79+i] = hs, ls
	}
}

// InputName returns the name of input signal sig, or "" if there is no such
// signal.
//
func InputName(sig int) string { return signalTable[sig].in }

// OutputName returns the name of output signal sig, or "" if there is no such
// signal.
//
func OutputName(sig int) string { return signalTable[sig].out }

// LookupInput returns the index of the input signal with the given name.
//
func LookupInput(name string) (int, bool) {
	for i, si := range signalTable {
		if si.in == name {
			return i, true
		}
	}
	return 0, false
}

// LookupOutput returns the index of the output signal with the given name.
//
func LookupOutput(name string) (int, bool) {
	for i, si := range signalTable {
		if si.out == name {
			return i, true
		}
	}
	return 0, false
}

// PCNTSignal returns the index of input k (0: SIG_CH0, 1: SIG_CH1, 2:
// CTRL_CH0, 3: CTRL_CH1) of pulse counter unit u.
//
func PCNTSignal(u, k int) int { return pcntBase(u) + k }
