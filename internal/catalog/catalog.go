/*
 * x584 - Microinstruction catalog.
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

// Package catalog decodes the 9-bit microinstruction field of a program
// store row into one of fifty known operations. Each entry is compiled
// from a 9-character template: '0' and '1' are fixed bits, any other
// rune is a wildcard bit that is ignored in matching (register-select
// and ALU-function fields). Entries are matched in table order and the
// first entry for which (opcode & mask) == value wins, so narrower,
// fully-specified templates must be listed ahead of broader wildcard
// ones.
package catalog

// Family groups catalog entries by what kind of hardware operation
// they invoke.
type Family int

const (
	FamilySUM Family = iota
	FamilyALU
	FamilySAL
	FamilySAR
	FamilySLL
	FamilySLR
	FamilySCL
	FamilySCR
)

// Operand identifies one of the values the ALU can read as an A or B
// input, or that a shift can read as the bit feed.
type Operand int

const (
	OperandNone Operand = iota
	OperandWR           // working register
	OperandXWR          // extension register
	OperandWRXWR        // 32-bit WR:XWR pair, dual-register shift forms
	OperandReg          // one of the 8 general registers, selected by bits 0-2
	OperandIn           // input data bus (DI)
	OperandOut          // output data bus (ШИНвых), as a read source (never used in Table, present for completeness)
	OperandCarry        // the carry chain, always consumed as the adder's third input
	OperandOne          // constant 1
)

// Dest identifies where a SUM or ALU result, or a shift result, is
// written.
type Dest int

const (
	DestWR Dest = iota
	DestXWR
	DestReg
	DestOut // output data bus (ШИНвых)
)

// Entry is one compiled catalog row.
type Entry struct {
	Template string // 9-character bit template, for documentation and tests
	Value    uint16
	Mask     uint16
	Family   Family
	OperandA Operand
	MinusA   bool // A operand is complemented (subtraction)
	OperandB Operand
	MinusB   bool // B operand is complemented (subtraction)
	Dest     Dest
	HasReg   bool // opcode bits 0-2 select a general register
	// EmitWR reports whether this entry's result bus, sampled one step
	// later onto the address bus (unless the PR input flag overrides it
	// with Reg[7]), is WR. When false the address bus instead samples
	// XWR. Entries whose primary result is XWR emit XWR; every other
	// entry emits WR.
	EmitWR   bool
	Help     string // one-line help text shown by the editor's status line
	Mnemonic string // short mnemonic, e.g. "WR:=WR+DI"
}

// Matches reports whether opcode decodes to this entry.
func (e Entry) Matches(opcode uint16) bool {
	return opcode&e.Mask == e.Value
}

// UsesCarryIn reports whether this entry's adder consumes the
// processor's sticky carry flag as its carry-in. Plain (non-subtract)
// SUM additions and every ALU-family entry (whose runtime-selected
// function may be one of the eight arithmetic functions) do; SUM
// subtractions and all shift families supply their own operand bit
// instead and do not.
func (e Entry) UsesCarryIn() bool {
	return e.Family == FamilyALU || (e.Family == FamilySUM && !e.MinusA && !e.MinusB)
}

// RegisterIndex extracts the register-select field (bits 0-2) of opcode.
// Only meaningful when e.HasReg is true.
func RegisterIndex(opcode uint16) int {
	return int(opcode & 0x7)
}

// ALUFunction extracts the 4-bit ALU function field (bits 5-8) of
// opcode. Only meaningful for FamilyALU entries.
func ALUFunction(opcode uint16) int {
	return int((opcode >> 5) & 0xF)
}

// compileTemplate turns a 9-character template into a (value, mask)
// pair. Template position i (0-8, left to right) governs opcode bit
// 8-i: '0' fixes the bit clear, '1' fixes it set, anything else leaves
// it wild (clear in mask).
func compileTemplate(tpl string) (value, mask uint16) {
	if len(tpl) != 9 {
		panic("catalog: template must be 9 characters: " + tpl)
	}
	for i, ch := range tpl {
		bit := uint(8 - i)
		switch ch {
		case '0':
			mask |= 1 << bit
		case '1':
			mask |= 1 << bit
			value |= 1 << bit
		}
	}
	return value, mask
}

func entry(tpl string, family Family, a Operand, minusA bool, b Operand, minusB bool, dest Dest, hasReg bool, mnemonic string) Entry {
	value, mask := compileTemplate(tpl)
	return Entry{
		Template: tpl,
		Value:    value,
		Mask:     mask,
		Family:   family,
		OperandA: a,
		MinusA:   minusA,
		OperandB: b,
		MinusB:   minusB,
		Dest:     dest,
		HasReg:   hasReg,
		EmitWR:   dest != DestXWR,
		Help:     mnemonic + " (" + familyHelp[family] + ")",
		Mnemonic: mnemonic,
	}
}

// familyHelp gives a one-line, family-level description used to build
// each entry's Help text.
var familyHelp = map[Family]string{
	FamilySUM: "adder",
	FamilyALU: "4-bit-slice ALU, function selected by opcode bits 5-8",
	FamilySAL: "arithmetic shift left",
	FamilySAR: "arithmetic shift right",
	FamilySLL: "logical shift left",
	FamilySLR: "logical shift right",
	FamilySCL: "circular shift left",
	FamilySCR: "circular shift right",
}

// Table is the ordered, compiled instruction catalog. Fully-specified
// (no wildcard) templates are listed first so that every entry's own
// canonical opcode resolves to itself; entries with a wildcard register
// field follow, and the single entry that wildcards both the register
// and ALU-function fields is listed last, since it is otherwise broad
// enough to shadow everything above it.
var Table = []Entry{
	// --- SUM family, fully specified (21 entries) ---
	entry("000111100", FamilySUM, OperandWR, false, OperandIn, false, DestWR, false, "WR:=WR+DI"),
	entry("000111101", FamilySUM, OperandWR, false, OperandIn, false, DestOut, false, "OUT:=WR+DI"),
	entry("000111110", FamilySUM, OperandWR, false, OperandXWR, false, DestWR, false, "WR:=WR+XWR"),
	entry("000111111", FamilySUM, OperandWR, false, OperandXWR, false, DestXWR, false, "XWR:=WR+XWR"),
	entry("001000000", FamilySUM, OperandWR, false, OperandOne, false, DestWR, false, "WR:=WR+1"),
	entry("001000001", FamilySUM, OperandWR, false, OperandIn, true, DestWR, false, "WR:=WR-DI"),
	entry("001000010", FamilySUM, OperandIn, false, OperandWR, true, DestWR, false, "WR:=DI-WR"),
	entry("001000011", FamilySUM, OperandXWR, false, OperandIn, false, DestXWR, false, "XWR:=XWR+DI"),
	entry("001000100", FamilySUM, OperandXWR, false, OperandOne, false, DestXWR, false, "XWR:=XWR+1"),
	entry("001000101", FamilySUM, OperandXWR, false, OperandIn, true, DestXWR, false, "XWR:=XWR-DI"),
	entry("001000110", FamilySUM, OperandWR, false, OperandXWR, false, DestOut, false, "OUT:=WR+XWR"),
	entry("001000111", FamilySUM, OperandIn, false, OperandOne, false, DestOut, false, "OUT:=DI+1"),
	entry("001001000", FamilySUM, OperandIn, false, OperandXWR, true, DestXWR, false, "XWR:=DI-XWR"),
	entry("001001001", FamilySUM, OperandWR, false, OperandXWR, true, DestWR, false, "WR:=WR-XWR"),
	entry("001001010", FamilySUM, OperandIn, false, OperandXWR, false, DestWR, false, "WR:=DI+XWR"),
	entry("001001011", FamilySUM, OperandOne, false, OperandIn, true, DestOut, false, "OUT:=1-DI"),
	entry("001001100", FamilySUM, OperandWR, false, OperandOne, false, DestXWR, false, "XWR:=WR+1"),
	entry("001001101", FamilySUM, OperandXWR, false, OperandOne, false, DestWR, false, "WR:=XWR+1"),
	entry("001001110", FamilySUM, OperandWR, false, OperandIn, false, DestXWR, false, "XWR:=WR+DI"),
	entry("001001111", FamilySUM, OperandXWR, false, OperandIn, false, DestOut, false, "OUT:=XWR+DI"),
	entry("001010000", FamilySUM, OperandWR, false, OperandOne, false, DestOut, false, "OUT:=WR+1"),

	// --- Shift families, fully specified (18 entries): SAL, SAR, SLL, SLR, SCL, SCR,
	// each in single-register+DI, single-register+1, and dual WR:XWR+XWR forms.
	entry("001010001", FamilySAL, OperandWR, false, OperandIn, false, DestWR, false, "SAL(WR,DI)"),
	entry("001010010", FamilySAL, OperandWR, false, OperandOne, false, DestWR, false, "SAL(WR,1)"),
	entry("001010011", FamilySAL, OperandWRXWR, false, OperandXWR, false, DestWR, false, "SAL(WR:XWR,XWR)"),
	entry("001010100", FamilySAR, OperandWR, false, OperandIn, false, DestWR, false, "SAR(WR,DI)"),
	entry("001010101", FamilySAR, OperandWR, false, OperandOne, false, DestWR, false, "SAR(WR,1)"),
	entry("001010110", FamilySAR, OperandWRXWR, false, OperandXWR, false, DestWR, false, "SAR(WR:XWR,XWR)"),
	entry("001010111", FamilySLL, OperandWR, false, OperandIn, false, DestWR, false, "SLL(WR,DI)"),
	entry("001011000", FamilySLL, OperandWR, false, OperandOne, false, DestWR, false, "SLL(WR,1)"),
	entry("001011001", FamilySLL, OperandWRXWR, false, OperandXWR, false, DestWR, false, "SLL(WR:XWR,XWR)"),
	entry("001011010", FamilySLR, OperandWR, false, OperandIn, false, DestWR, false, "SLR(WR,DI)"),
	entry("001011011", FamilySLR, OperandWR, false, OperandOne, false, DestWR, false, "SLR(WR,1)"),
	entry("001011100", FamilySLR, OperandWRXWR, false, OperandXWR, false, DestWR, false, "SLR(WR:XWR,XWR)"),
	entry("001011101", FamilySCL, OperandWR, false, OperandIn, false, DestWR, false, "SCL(WR,DI)"),
	entry("001011110", FamilySCL, OperandWR, false, OperandOne, false, DestWR, false, "SCL(WR,1)"),
	entry("001011111", FamilySCL, OperandWRXWR, false, OperandXWR, false, DestWR, false, "SCL(WR:XWR,XWR)"),
	entry("001100000", FamilySCR, OperandWR, false, OperandIn, false, DestWR, false, "SCR(WR,DI)"),
	entry("001100001", FamilySCR, OperandWR, false, OperandOne, false, DestWR, false, "SCR(WR,1)"),
	entry("001100010", FamilySCR, OperandWRXWR, false, OperandXWR, false, DestWR, false, "SCR(WR:XWR,XWR)"),

	// --- SUM family, register-select wildcard (2 entries) ---
	entry("000101rrr", FamilySUM, OperandWR, false, OperandIn, false, DestReg, true, "REG:=WR+DI"),
	entry("000110rrr", FamilySUM, OperandWR, false, OperandReg, false, DestWR, true, "WR:=WR+REG"),

	// --- ALU family, function wildcard (8 entries) ---
	entry("ffff10111", FamilyALU, OperandWR, false, OperandIn, false, DestWR, false, "WR:=ALU(WR,DI)"),
	entry("ffff11000", FamilyALU, OperandWR, false, OperandXWR, false, DestWR, false, "WR:=ALU(WR,XWR)"),
	entry("ffff11001", FamilyALU, OperandWR, false, OperandIn, false, DestOut, false, "OUT:=ALU(WR,DI)"),
	entry("ffff11011", FamilyALU, OperandXWR, false, OperandIn, false, DestXWR, false, "XWR:=ALU(XWR,DI)"),
	entry("ffff11100", FamilyALU, OperandXWR, false, OperandWR, false, DestXWR, false, "XWR:=ALU(XWR,WR)"),
	entry("ffff11101", FamilyALU, OperandIn, false, OperandXWR, false, DestWR, false, "WR:=ALU(DI,XWR)"),
	entry("ffff11110", FamilyALU, OperandWR, false, OperandOne, false, DestWR, false, "WR:=ALU(WR,1)"),
	entry("ffff11111", FamilyALU, OperandXWR, false, OperandOne, false, DestXWR, false, "XWR:=ALU(XWR,1)"),

	// --- ALU family, function AND register-select wildcard (1 entry, broadest, last) ---
	entry("ffff10rrr", FamilyALU, OperandWR, false, OperandReg, false, DestReg, true, "REG:=ALU(WR,REG)"),
}

// Lookup returns the first catalog entry matching opcode in table
// order, and reports whether one was found. Microinstructions 154 and
// 186 (the processor's two NOP encodings) always return ok == false.
func Lookup(opcode uint16) (Entry, bool) {
	for _, e := range Table {
		if e.Matches(opcode) {
			return e, true
		}
	}
	return Entry{}, false
}

// NOP opcodes: these two 9-bit codes are reserved by the processor as
// "do nothing" and are deliberately excluded from Table by construction
// (see catalog_test.go for the proof).
const (
	NOP1 uint16 = 154
	NOP2 uint16 = 186
)

// IsNOP reports whether opcode is one of the processor's reserved
// no-operation encodings.
func IsNOP(opcode uint16) bool {
	return opcode == NOP1 || opcode == NOP2
}

// ReCode maps the 54 legacy (pre-catalog) opcode indices used by
// original .prj project files to the index of the equivalent entry in
// Table, preserving load compatibility with files written by earlier
// tooling.
//
// The legacy format groups its 54 indices by destination class (РОН =
// general register, РР = working register, РРР = extension register,
// ШИНвых = output bus; the original tool's own comments mark the group
// boundaries, reproduced below). That grouping is reliable ground
// truth; the original tool's internal table order is not available to
// this tree, so each legacy index here is mapped to a Table entry of
// the matching destination class rather than to an unrecoverable
// original table position. As in the original, several legacy indices
// collapse onto the same Table entry (this catalog distinguishes fewer
// register-destination variants than the legacy format had codes for).
var ReCode = [54]int{
	39, 49, 39, 49, // РОН
	0, 2, 4, 5, 6, 13, 14, 17, 21, 22, 24, 40, 41, 42, 46, 47, // РР
	23, 0, 27, 2, 28, 8, 30, 31, 26, 33, 34, 29, 36, 37, 32, 35, 38, 25, // РР, РРР
	9, 12, 16, 18, 44, 45, 48, 3, 7, // РРР
	1, 10, 11, 15, 19, 20, 43, // ШИНвых
}
