/*
 * x584 - Microinstruction formatter.
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

// Package disassemble renders a 16-bit microinstruction word as the
// Cyrillic register-transfer text the original tool printed, at three
// levels of detail: the bare operation family, the family plus the
// concrete ALU function when the family is the generic ALU, and
// additionally the selected register index when the word carries a
// register-select field.
package disassemble

import (
	"strconv"
	"strings"

	"github.com/rcornwell/x584/internal/catalog"
)

// NoOperation is printed for the two NOP opcodes and for any other
// opcode that matches no catalog entry.
const NoOperation = "<НОП>"

// Editor attribute bits of the 16-bit microinstruction word, above the
// 9-bit opcode field.
const (
	bitBreakpoint  = 1 << 15
	bitCarryValue  = 1 << 14
	bitCarryUsed   = 1 << 13
	opcodeMask     = 0x1FF
)

var destName = map[catalog.Dest]string{
	catalog.DestWR:  "РР",
	catalog.DestXWR: "РРР",
	catalog.DestReg: "РОН",
	catalog.DestOut: "ШИНвых",
}

var operandName = map[catalog.Operand]string{
	catalog.OperandWR:    "РР",
	catalog.OperandXWR:   "РРР",
	catalog.OperandWRXWR: "РР",
	catalog.OperandReg:   "РОН",
	catalog.OperandIn:    "ШИНвх",
	catalog.OperandOut:   "ШИНвых",
	catalog.OperandCarry: "П",
	catalog.OperandOne:   "1",
}

var familyName = map[catalog.Family]string{
	catalog.FamilySUM: "СУМ",
	catalog.FamilyALU: "АЛУ",
	catalog.FamilySAL: "SAL",
	catalog.FamilySAR: "SAR",
	catalog.FamilySLL: "SLL",
	catalog.FamilySLR: "SLR",
	catalog.FamilySCL: "SCL",
	catalog.FamilySCR: "SCR",
}

// operandText renders an operand name, substituting a concrete
// register number (formatReg) or the plain register-class symbol.
func operandText(op catalog.Operand, reg int, formatReg bool) string {
	if op == catalog.OperandReg {
		if formatReg {
			return "РОН" + strconv.Itoa(reg)
		}
		return "РОН"
	}
	return operandName[op]
}

// aluExpr renders the symbolic form of one of the sixteen ALU
// functions (§4.2: bit3=0 selects the eight arithmetic functions,
// bit3=1 the eight logical ones), given the already-rendered operand
// texts a and b.
func aluExpr(fn int, a, b string) string {
	switch fn {
	case 0:
		return "0"
	case 1:
		return "¬" + a + "+" + b
	case 2:
		return a + "+¬" + b
	case 3:
		return a + "+" + b
	case 4:
		return b
	case 5:
		return "¬" + b
	case 6:
		return a
	case 7:
		return "¬" + a
	case 8:
		return a + "∧" + b
	case 9:
		return a + "⊕" + b
	case 10:
		return "¬(" + a + "⊕" + b + ")"
	case 11:
		return "¬" + a + "∧" + b
	case 12:
		return a + "∧¬" + b
	case 13:
		return a + "∨¬" + b
	case 14:
		return "¬" + a + "∨" + b
	default: // 15
		return a + "∨" + b
	}
}

// Format renders word, the full 16-bit microinstruction word (opcode
// plus editor attribute bits), as Cyrillic register-transfer text.
//
//   - formatALU: when the opcode decodes to the generic ALU family,
//     render the runtime-selected function expression instead of a
//     neutral "АЛУ" placeholder.
//   - formatReg: when the opcode carries a register-select field,
//     render the concrete register number instead of the bare class
//     name.
//   - showCarry: if the word's carry-used attribute bit is set, append
//     " (П=1)" or " (П=0)" per the carry-value attribute bit.
func Format(word uint16, formatALU, formatReg, showCarry bool) string {
	opcode := word & opcodeMask
	if catalog.IsNOP(opcode) {
		return NoOperation
	}
	entry, ok := catalog.Lookup(opcode)
	if !ok {
		return NoOperation
	}

	reg := catalog.RegisterIndex(opcode)

	var b strings.Builder
	b.WriteString(destText(entry.Dest, reg, formatReg))
	b.WriteString(" := ")

	switch entry.Family {
	case catalog.FamilyALU:
		a := operandText(entry.OperandA, reg, formatReg)
		bb := operandText(entry.OperandB, reg, formatReg)
		if formatALU {
			b.WriteString(aluExpr(catalog.ALUFunction(opcode), a, bb))
		} else {
			b.WriteString(a)
			b.WriteString(" АЛУ ")
			b.WriteString(bb)
		}

	case catalog.FamilySUM:
		a := operandText(entry.OperandA, reg, formatReg)
		if entry.MinusA {
			a = "−" + a
		}
		b.WriteString(a)
		if entry.MinusB {
			b.WriteString(" − ")
		} else {
			b.WriteString(" + ")
		}
		b.WriteString(operandText(entry.OperandB, reg, formatReg))

	default: // shift families
		dual := entry.OperandA == catalog.OperandWRXWR
		b.WriteString(familyName[entry.Family])
		b.WriteByte('(')
		b.WriteString(operandText(entry.OperandA, reg, formatReg))
		b.WriteString(", ")
		b.WriteString(operandText(entry.OperandB, reg, formatReg))
		if dual {
			b.WriteString(", РРР)")
		} else {
			b.WriteByte(')')
		}
	}

	if showCarry && word&bitCarryUsed != 0 {
		if word&bitCarryValue != 0 {
			b.WriteString(" (П=1)")
		} else {
			b.WriteString(" (П=0)")
		}
	}

	return b.String()
}

// destText renders the destination named by dest, substituting a
// concrete register number when dest is DestReg and formatReg is set.
func destText(dest catalog.Dest, reg int, formatReg bool) string {
	if dest == catalog.DestReg && formatReg {
		return "РОН" + strconv.Itoa(reg)
	}
	return destName[dest]
}
