// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package esp32

import "fmt"

// Reserved output function codes.
//
const (
	// GPIOCode in a FuncOutSel selects the GPIO output and enable registers.
	GPIOCode = 256
	// ForceHighCode drives the pad high.
	ForceHighCode = 257
	// FloatCode releases the pad.
	FloatCode = 258
)

// Input selection codes.
//
const (
	// ConstLow selects a constant low input.
	ConstLow = 0x30
	// ConstHigh selects a constant high input.
	ConstHigh = 0x38
	// DirectCode is the input mux entry of the IO_MUX bypass line. It is
	// selected by clearing SIG_IN_SEL.
	DirectCode = 0x40
)

// Largest values of the OUT_SEL and IN_SEL fields.
//
const (
	MaxOutSel = outSelMask
	MaxInSel  = inSelMask
)

// FuncOutSel is the value of a GPIO_FUNCn_OUT_SEL_CFG register.
//
//	bits 8:0  OUT_SEL      output signal index, or GPIOCode
//	bit  9    INV_SEL      invert the output value
//	bit  10   OEN_SEL      take the output enable from GPIO_ENABLE
//	bit  11   OEN_INV_SEL  invert the output enable
//
type FuncOutSel uint32

const (
	outSelMask   = 0x1ff
	invSelBit    = 1 << 9
	oenSelBit    = 1 << 10
	oenInvSelBit = 1 << 11
)

// NewFuncOutSel returns a FuncOutSel with the given fields. Bits of code
// above MaxOutSel are discarded, as the hardware does.
//
func NewFuncOutSel(code int, inv, oenSel, oenInv bool) FuncOutSel {
	r := FuncOutSel(uint32(code) & outSelMask)
	if inv {
		r |= invSelBit
	}
	if oenSel {
		r |= oenSelBit
	}
	if oenInv {
		r |= oenInvSelBit
	}
	return r
}

// OutSel returns the OUT_SEL field.
//
func (r FuncOutSel) OutSel() int { return int(r & outSelMask) }

// InvSel returns the INV_SEL bit.
//
func (r FuncOutSel) InvSel() bool { return r&invSelBit != 0 }

// OENSel returns the OEN_SEL bit.
//
func (r FuncOutSel) OENSel() bool { return r&oenSelBit != 0 }

// OENInvSel returns the OEN_INV_SEL bit.
//
func (r FuncOutSel) OENInvSel() bool { return r&oenInvSelBit != 0 }

func (r FuncOutSel) String() string {
	return fmt.Sprintf("OUT_SEL=%d INV_SEL=%t OEN_SEL=%t OEN_INV_SEL=%t", r.OutSel(), r.InvSel(), r.OENSel(), r.OENInvSel())
}

// FuncInSel is the value of a GPIO_FUNCy_IN_SEL_CFG register.
//
//	bits 5:0  IN_SEL      pad number, ConstLow or ConstHigh
//	bit  6    IN_INV_SEL  invert the input value
//	bit  7    SIG_IN_SEL  route through the GPIO matrix; if clear, the
//	                      signal comes from the IO_MUX bypass line
//
type FuncInSel uint32

const (
	inSelMask   = 0x3f
	inInvSelBit = 1 << 6
	sigInSelBit = 1 << 7
)

// NewFuncInSel returns a FuncInSel with the given fields. Bits of sel above
// MaxInSel are discarded, as the hardware does.
//
func NewFuncInSel(sel int, inv, matrix bool) FuncInSel {
	r := FuncInSel(uint32(sel) & inSelMask)
	if inv {
		r |= inInvSelBit
	}
	if matrix {
		r |= sigInSelBit
	}
	return r
}

// InSel returns the IN_SEL field.
//
func (r FuncInSel) InSel() int { return int(r & inSelMask) }

// InvSel returns the IN_INV_SEL bit.
//
func (r FuncInSel) InvSel() bool { return r&inInvSelBit != 0 }

// SigInSel returns the SIG_IN_SEL bit.
//
func (r FuncInSel) SigInSel() bool { return r&sigInSelBit != 0 }

// code returns the input mux code selected by r.
func (r FuncInSel) code() int {
	if !r.SigInSel() {
		return DirectCode
	}
	return r.InSel()
}

func (r FuncInSel) String() string {
	return fmt.Sprintf("IN_SEL=%#x IN_INV_SEL=%t SIG_IN_SEL=%t", r.InSel(), r.InvSel(), r.SigInSel())
}

// Reg64 is a 64 bits register image split in two 32 bits halves, with
// write-one-to-set and write-one-to-clear masks that are folded into the
// image on the next update.
//
type Reg64 struct {
	v   uint64
	set uint64
	clr uint64
}

// Value returns the register image.
//
func (r *Reg64) Value() uint64 { return r.v }

// Lo returns the low half of the image.
//
func (r *Reg64) Lo() uint32 { return uint32(r.v) }

// Hi returns the high half of the image.
//
func (r *Reg64) Hi() uint32 { return uint32(r.v >> 32) }

// Bit returns bit n of the image.
//
func (r *Reg64) Bit(n int) bool {
	return n >= 0 && n < 64 && r.v&(1<<uint(n)) != 0
}

// WithLo returns the image with its low half replaced by lo.
//
func (r *Reg64) WithLo(lo uint32) uint64 { return r.v&^0xffffffff | uint64(lo) }

// WithHi returns the image with its high half replaced by hi.
//
func (r *Reg64) WithHi(hi uint32) uint64 { return r.v&0xffffffff | uint64(hi)<<32 }

// W1TS adds mask to the pending set mask.
//
func (r *Reg64) W1TS(mask uint64) {
	r.set |= mask
	r.clr &^= mask
}

// W1TC adds mask to the pending clear mask.
//
func (r *Reg64) W1TC(mask uint64) {
	r.clr |= mask
	r.set &^= mask
}

// Pending returns the pending set and clear masks.
//
func (r *Reg64) Pending() (set, clr uint64) { return r.set, r.clr }

// update folds the pending masks into bits, stores the result and returns the
// bits that changed.
func (r *Reg64) update(bits uint64) uint64 {
	nv := (bits | r.set) &^ r.clr
	r.set, r.clr = 0, 0
	ch := nv ^ r.v
	r.v = nv
	return ch
}
