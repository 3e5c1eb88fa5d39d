/*
 * x584 - Status flag bit layout and bilingual synonym tables.
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

// Package flags defines the bit layout of the processor's input and
// output flag words and the bilingual name tables used to recognize a
// flag mentioned in a program-store row's control annotation.
package flags

import "strings"

// Input flag bits, set by the console/UI before each Step and merged
// with the opcode's own carry-value attribute.
const (
	InCI     = 1 << 0 // carry-in
	InP0     = 1 << 1 // shift-control corner case select
	InINVPC  = 1 << 2 // suppress Reg[7] advance this step
	InINC    = 1 << 3 // advance Reg[7] by 2 instead of 1
	InPR     = 1 << 4 // publish Reg[7] on the next address-bus latch
)

// Output flag bit positions, all observable after every Step.
const (
	OutCO = iota // carry out of the top slice
	OutINVSL1
	OutINVSR1
	OutINVSL2
	OutINVSR2
	OutXWR0
	OutXWR3
	OutA3
	OutB3
	OutC0
	OutC1
	OutC2
	OutC3
	OutC4
	OutC5
	OutC6
	OutC7
)

// NameCount is the number of output-flag bits a control annotation can
// name: CO through C2, the twelve-entry span the source's comment
// parser recognized. C3 (set on a 16-bit machine together with CO) and
// C4..C7 (for wider configurations) are not part of the annotation
// grammar.
const NameCount = 12

// Names is the canonical (primary, Russian) spelling of each of the
// first twelve output-flag bits, in bit order. This is the spelling
// canonicalized into when writing the legacy .prj format.
var Names = [NameCount]string{
	"П", "!СДЛ1", "!СДП1", "!СДЛ2", "!СДП2",
	"РРР0", "РРР3", "A3", "B3", "П0", "П1", "П2",
}

// AltNames is the long Russian spelling.
var AltNames = [NameCount]string{
	"ПАЛУ", "!СДЛ1", "!СДП1", "!СДЛ2", "!СДП2",
	"РРР0", "РРР3", "A3", "B3", "ПАЛУ0", "ПАЛУ1", "ПАЛУ2",
}

// EngNames is the short English spelling.
var EngNames = [NameCount]string{
	"CO", "!SL1", "!SR1", "!SL2", "!SR2",
	"XWR0", "XWR3", "A3", "B3", "C0", "C1", "C2",
}

// EngAltNames is the long English spelling.
var EngAltNames = [NameCount]string{
	"CARRY", "!SHL1", "!SHR1", "!SHL2", "!SHR2",
	"XWR0", "XWR3", "A3", "B3", "CARRY0", "CARRY1", "CARRY2",
}

var tables = [][NameCount]string{Names, AltNames, EngNames, EngAltNames}

// Lookup returns the output-flag bit index word names under any of the
// four spelling tables, case-insensitively, and reports whether one
// was found.
func Lookup(word string) (int, bool) {
	upper := strings.ToUpper(word)
	for _, table := range tables {
		for i, name := range table {
			if strings.ToUpper(name) == upper {
				return i, true
			}
		}
	}
	return 0, false
}

// Canonicalize rewrites word to its primary (Names) spelling if it
// matches any of the four synonym tables, and returns it unchanged
// otherwise. This lets a control annotation written with the English
// or alternate spelling round-trip through the legacy file format,
// which only ever stores the primary Russian keyword set.
func Canonicalize(word string) string {
	if i, ok := Lookup(word); ok {
		return Names[i]
	}
	return word
}
