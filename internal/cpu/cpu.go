/*
 * x584 - Processor core: registers, ALU, shifter and the microstep loop.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package cpu implements the bit-sliced arithmetic core: eight general
// registers, the working (WR) and extension (XWR) registers, a
// 16-function ALU built from four cascaded 4-bit slices, a 6-family
// shifter, and the one-cycle pipeline latch that delays the address
// bus and the XWR sideband flags by exactly one microinstruction.
package cpu

import (
	"github.com/rcornwell/x584/internal/catalog"
	"github.com/rcornwell/x584/internal/flags"
)

// BitsCount is the processor's configured word width. The catalog and
// flag layout are written for this width; a differently-sized machine
// would only need BitsCount, BitMask and the nibble count in adc to
// change.
const BitsCount = 16

// BitMask masks a value down to BitsCount bits.
const BitMask = (1 << BitsCount) - 1

const nibbles = BitsCount / 4

// CPU holds the architectural state of one bit-sliced processor: the
// register file and the two address/XWR-sideband latches that model
// the chip's one-cycle pipeline delay. WR, XWR and every Reg entry are
// always kept in [0, BitMask].
type CPU struct {
	Reg [8]uint16 // general registers (РОН0..РОН7); Reg[7] doubles as the program counter
	WR  uint16    // working register
	XWR uint16    // extension register

	bufDA  uint16 // address-bus value latched at the end of the previous Execute
	bufXWR uint16 // XWR value latched at the end of the previous Execute, for the XWR0/XWR3 sideband flags
}

// New returns a CPU with all registers and latches cleared.
func New() *CPU {
	return &CPU{}
}

// Reset clears all architectural state, including the pipeline latches.
func (c *CPU) Reset() {
	*c = CPU{}
}

// readOperand fetches the value named by op, before any MINUS
// inversion. di is the current input data bus value; reg is the
// register selected by the opcode's register-select field.
func (c *CPU) readOperand(op catalog.Operand, di uint16, reg int) uint16 {
	switch op {
	case catalog.OperandWR, catalog.OperandWRXWR:
		return c.WR
	case catalog.OperandXWR:
		return c.XWR
	case catalog.OperandReg:
		return c.Reg[reg&7]
	case catalog.OperandIn:
		return di
	case catalog.OperandOne:
		return 1
	default:
		return 0
	}
}

// adc performs an N-bit add of a and b with carry-in cin, computed as
// cascaded 4-bit slices, matching the cascade of physical ALU chips
// this design generalizes. It returns the masked sum and the carry-out
// of every nibble (sliceCarry[0] is the least-significant slice,
// sliceCarry[nibbles-1] — slice 3 for N=16 — is CO, the overall carry
// out).
func adc(a, b uint16, cin bool) (sum uint16, sliceCarry [4]bool) {
	carry := uint32(0)
	if cin {
		carry = 1
	}
	for n := 0; n < nibbles; n++ {
		shift := uint(n * 4)
		an := (a >> shift) & 0xF
		bn := (b >> shift) & 0xF
		s := uint32(an) + uint32(bn) + carry
		sum |= uint16(s&0xF) << shift
		carry = (s >> 4) & 1
		sliceCarry[n] = carry != 0
	}
	return sum, sliceCarry
}

// aluFunctionIsArithmetic reports whether bit 3 of a 4-bit ALU function
// selector chooses the arithmetic (0) or logical (1) half of the table.
func aluFunctionIsArithmetic(fn int) bool {
	return fn&0x8 == 0
}

// aluFunction computes one of the 16 ALU functions. a and b are the
// operand values after any MINUS inversion has already been applied by
// the caller; cin is the carry bus value wired to this step (0 unless
// the function is arithmetic and the carry-in flag is set). The
// logical half never touches the adder and always reports clear
// per-nibble carries.
func aluFunction(fn int, a, b uint16, cin bool) (result uint16, sliceCarry [4]bool) {
	sel := fn & 0x7
	if aluFunctionIsArithmetic(fn) {
		switch sel {
		case 0:
			return adc(0, 0xFFFF, cin) // 0 if C else bit_mask
		case 1:
			return adc(^a, b, cin) // ~A + B + C
		case 2:
			return adc(a, ^b, cin) // A + ~B + C
		case 3:
			return adc(a, b, cin) // A + B + C
		case 4:
			return adc(0, b, cin) // B + C
		case 5:
			return adc(^b, 0, cin) // ~B + C
		case 6:
			return adc(a, 0, cin) // A + C
		default:
			return adc(^a, 0, cin) // ~A + C
		}
	}
	switch sel {
	case 0:
		return a & b, sliceCarry
	case 1:
		return a ^ b, sliceCarry
	case 2:
		return ^(a ^ b), sliceCarry
	case 3:
		return ^a & b, sliceCarry
	case 4:
		return a &^ b, sliceCarry
	case 5:
		return a | ^b, sliceCarry
	case 6:
		return ^a | b, sliceCarry
	default:
		return a | b, sliceCarry
	}
}

func setBit(v uint16, pos uint, set bool) uint16 {
	if set {
		return v | (1 << pos)
	}
	return v &^ (1 << pos)
}

// shiftFlags carries the four INVSL/INVSR toggle bits through one
// shift family's post-processing. Execute seeds them true before
// calling applyShift (see §3: "INVSL/INVSR bits start SET"), then they
// are XORed with captured bits below.
type shiftFlags struct {
	invsl1, invsr1, invsl2, invsr2 bool
}

// applyShift reshapes the adder's sum (result) into the shifted value
// for one of the six shift families, and updates xwr for the
// dual-register forms. p0 is the InP0 input flag, which disambiguates
// one SAL/SAR corner case. sign is always the top bit of result before
// this family's own reshaping.
func applyShift(fam catalog.Family, dual, p0 bool, result, xwr uint16, f shiftFlags) (uint16, uint16, shiftFlags) {
	sign := (result>>(BitsCount-1))&1 != 0

	switch fam {
	case catalog.FamilySAL:
		f.invsl1 = f.invsl1 != sign
		result = (result << 1) & BitMask
		if dual {
			var bit bool
			if p0 {
				bit = (xwr>>(BitsCount-1))&1 != 0
			} else {
				bit = (xwr>>(BitsCount-2))&1 != 0
			}
			xwr = (xwr << 1) & BitMask
			result = setBit(result, 0, bit)
			f.invsl2 = f.invsl2 != bit
			f.invsr1 = f.invsr1 != bit
			if !p0 {
				newTop := (result>>(BitsCount-1))&1 != 0
				xwr = setBit(xwr, BitsCount-1, newTop)
			}
		}

	case catalog.FamilySAR:
		bit := result&1 != 0
		f.invsr1 = f.invsr1 != bit
		result = setBit(result>>1, BitsCount-1, sign)
		if dual {
			xwrBit0 := xwr&1 != 0
			f.invsr2 = f.invsr2 != xwrBit0
			f.invsl2 = f.invsl2 != bit
			newXWR := xwr >> 1
			if p0 {
				newXWR = setBit(newXWR, BitsCount-1, bit)
			} else {
				newXWR = setBit(newXWR, BitsCount-1, sign)
				newXWR = setBit(newXWR, BitsCount-2, bit)
			}
			xwr = newXWR
		}

	case catalog.FamilySLL:
		f.invsl1 = f.invsl1 != sign
		result = (result << 1) & BitMask
		if dual {
			bit := (xwr>>(BitsCount-1))&1 != 0
			f.invsl2 = f.invsl2 != bit
			f.invsr1 = f.invsr1 != bit
			xwr = (xwr << 1) & BitMask
			result = setBit(result, 0, bit)
		}

	case catalog.FamilySLR:
		bit := result&1 != 0
		f.invsr1 = f.invsr1 != bit
		result >>= 1
		if dual {
			xwrBit0 := xwr&1 != 0
			f.invsr2 = f.invsr2 != xwrBit0
			f.invsl2 = f.invsl2 != bit
			xwr = setBit(xwr>>1, BitsCount-1, bit)
		}

	case catalog.FamilySCL:
		if dual {
			bit := (xwr>>(BitsCount-1))&1 != 0
			f.invsl1 = f.invsl1 != sign
			f.invsr2 = f.invsr2 != sign
			f.invsr1 = f.invsr1 != bit
			f.invsl2 = f.invsl2 != bit
			newResult := setBit((result<<1)&BitMask, 0, bit)
			newXWR := setBit((xwr<<1)&BitMask, 0, sign)
			result, xwr = newResult, newXWR
		} else {
			f.invsl1 = f.invsl1 != sign
			f.invsr1 = f.invsr1 != sign
			result = setBit((result<<1)&BitMask, 0, sign)
		}

	case catalog.FamilySCR:
		low := result&1 != 0
		if dual {
			bit := xwr&1 != 0
			f.invsr1 = f.invsr1 != low
			f.invsl2 = f.invsl2 != low
			f.invsl1 = f.invsl1 != bit
			f.invsr2 = f.invsr2 != bit
			newResult := setBit(result>>1, BitsCount-1, bit)
			newXWR := setBit(xwr>>1, BitsCount-1, low)
			result, xwr = newResult, newXWR
		} else {
			f.invsr1 = f.invsr1 != low
			f.invsl1 = f.invsl1 != low
			result = setBit(result>>1, BitsCount-1, low)
		}
	}

	return result & BitMask, xwr & BitMask, f
}

func bitSet(word uint32, bit int, set bool) uint32 {
	if set {
		return word | 1<<uint(bit)
	}
	return word &^ (1 << uint(bit))
}

// Execute runs one microinstruction. mi is the 9-bit opcode (higher
// bits, if any, are masked off); di is the input data bus value for
// this step; inFlags is the bitwise-OR of the flags.In* bits currently
// asserted (the driver is responsible for merging the opcode's own
// carry-value attribute into InCI before calling Execute).
//
// It returns the output data bus value do (driven combinationally —
// visible in the same step an entry targets it), the address bus value
// da, and the output flag word outFlags. da, XWR0 and XWR3 always
// reflect the values latched at the END of the PREVIOUS call to
// Execute, never this one: that one-microinstruction delay is the
// chip's pipeline register and is part of the observable contract.
//
// If mi matches no catalog entry (a NOP), Execute performs no state
// change at all — Reg[7] does not advance, and da/XWR0/XWR3 hold
// whatever the previous matching instruction last latched.
func (c *CPU) Execute(mi uint16, di uint16, inFlags uint32) (do uint16, da uint16, outFlags uint32) {
	mi &= 0x1FF

	da = c.bufDA
	outFlags = bitSet(outFlags, flags.OutXWR0, c.bufXWR&1 != 0)
	outFlags = bitSet(outFlags, flags.OutXWR3, (c.bufXWR>>(BitsCount-1))&1 != 0)

	entry, ok := catalog.Lookup(mi)
	if !ok {
		return 0, da, outFlags
	}

	reg := catalog.RegisterIndex(mi)
	a := c.readOperand(entry.OperandA, di, reg)
	b := c.readOperand(entry.OperandB, di, reg)
	if entry.MinusA {
		a = ^a
	}
	if entry.MinusB {
		b = ^b
	}

	outFlags = bitSet(outFlags, flags.OutA3, (a>>(BitsCount-1))&1 != 0)
	outFlags = bitSet(outFlags, flags.OutB3, (b>>(BitsCount-1))&1 != 0)

	ci := inFlags&flags.InCI != 0

	var result uint16
	var sliceCarry [4]bool
	sf := shiftFlags{}

	switch entry.Family {
	case catalog.FamilyALU:
		fn := catalog.ALUFunction(mi)
		cin := ci && aluFunctionIsArithmetic(fn)
		result, sliceCarry = aluFunction(fn, a, b, cin)
		if aluFunctionIsArithmetic(fn) {
			sf = shiftFlags{true, true, true, true}
		}

	case catalog.FamilySUM:
		cin := (entry.MinusA != entry.MinusB) || (entry.UsesCarryIn() && ci)
		result, sliceCarry = adc(a, b, cin)
		sf = shiftFlags{true, true, true, true}

	default: // shift families
		dual := entry.OperandA == catalog.OperandWRXWR
		// The dual-register forms declare XWR as their B operand so the
		// disassembler can show it as the shift chain's companion
		// register, but XWR only feeds the shift itself (via c.XWR
		// below): it is not summed into the preliminary adder pass.
		bAdder := b
		if dual {
			bAdder = 0
		}
		cin := entry.UsesCarryIn() && ci
		result, sliceCarry = adc(a, bAdder, cin)
		sf = shiftFlags{true, true, true, true}
		p0 := inFlags&flags.InP0 != 0
		var newXWR uint16
		result, newXWR, sf = applyShift(entry.Family, dual, p0, result&BitMask, c.XWR, sf)
		if dual {
			c.XWR = newXWR
		}
	}

	result &= BitMask

	switch entry.Dest {
	case catalog.DestWR:
		c.WR = result
	case catalog.DestXWR:
		c.XWR = result
	case catalog.DestReg:
		c.Reg[reg&7] = result
	case catalog.DestOut:
		do = result
	}

	outFlags = bitSet(outFlags, flags.OutCO, sliceCarry[nibbles-1])
	outFlags = bitSet(outFlags, flags.OutC0, sliceCarry[0])
	if nibbles > 1 {
		outFlags = bitSet(outFlags, flags.OutC1, sliceCarry[1])
	}
	if nibbles > 2 {
		outFlags = bitSet(outFlags, flags.OutC2, sliceCarry[2])
	}
	if nibbles > 3 {
		outFlags = bitSet(outFlags, flags.OutC3, sliceCarry[3])
	}
	outFlags = bitSet(outFlags, flags.OutINVSL1, sf.invsl1)
	outFlags = bitSet(outFlags, flags.OutINVSR1, sf.invsr1)
	outFlags = bitSet(outFlags, flags.OutINVSL2, sf.invsl2)
	outFlags = bitSet(outFlags, flags.OutINVSR2, sf.invsr2)

	if inFlags&flags.InINVPC == 0 {
		step := uint16(1)
		if inFlags&flags.InINC != 0 {
			step = 2
		}
		c.Reg[7] = (c.Reg[7] + step) & BitMask
	}

	switch {
	case inFlags&flags.InPR != 0:
		c.bufDA = c.Reg[7]
	case entry.EmitWR:
		c.bufDA = c.WR
	default:
		c.bufDA = c.XWR
	}
	c.bufXWR = c.XWR

	return do, da, outFlags
}

// HasCarryIn reports whether entry's adder is wired to the processor's
// external carry-in (CI) flag, as opposed to an internally forced
// carry (the "+1" of a two's-complement subtraction) or no carry input
// at all. For ALU entries this is always true in principle — whether
// the runtime-selected function actually consumes it depends on the
// opcode, see FindOperand.
func HasCarryIn(entry catalog.Entry) bool {
	return entry.UsesCarryIn()
}

// FindOperand reports whether entry, decoded from opcode, actually
// reads or writes class as one of its operands for this specific
// opcode. For non-ALU entries this only depends on the entry's static
// operand list; for ALU entries it depends on the runtime-selected
// function (§4.2).
func FindOperand(entry catalog.Entry, opcode uint16, class catalog.Operand) bool {
	if entry.Family != catalog.FamilyALU {
		if class == catalog.OperandCarry {
			return entry.UsesCarryIn()
		}
		return class == entry.OperandA || class == entry.OperandB
	}

	fn := catalog.ALUFunction(opcode & 0x1FF)
	if class == catalog.OperandCarry {
		return aluFunctionIsArithmetic(fn)
	}
	if !aluFunctionIsArithmetic(fn) {
		return class == entry.OperandA || class == entry.OperandB
	}
	switch fn & 0x7 {
	case 0:
		return false
	case 1, 2, 3:
		return class == entry.OperandA || class == entry.OperandB
	case 4, 5:
		return class == entry.OperandB
	default: // 6, 7
		return class == entry.OperandA
	}
}
