/*
 * x584 - Program-store row comment parser.
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

// Package comment parses the free-text comment attached to a program
// store row for the two directives the driver acts on: a control-flow
// annotation (conditional or unconditional jump) and an input-literal
// binding. Both the Russian and English keyword spellings are
// accepted, matching the bilingual tool the format was inherited from.
package comment

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rcornwell/x584/internal/flags"
)

// Kind identifies which control-flow directive a comment encodes.
type Kind int

const (
	KindNone Kind = iota
	KindGoto
	KindIf
)

// storeSize is the number of rows in the program store (driver.StoreSize,
// duplicated here to avoid an import cycle): a GOTO/THEN/ELSE target
// outside [0, storeSize) cannot name a real row and is not a directive.
const storeSize = 1024

// Directive is the parsed control-flow annotation of a row's comment.
type Directive struct {
	Kind      Kind
	FlagIndex int    // valid when Kind == KindIf
	Then      uint16 // target row when Kind == KindIf and the flag is set, or the only target for KindGoto
	Else      uint16 // target row when Kind == KindIf and the flag is clear
	HasElse   bool
}

func tokenIs(tok string, names ...string) bool {
	for _, n := range names {
		if strings.EqualFold(tok, n) {
			return true
		}
	}
	return false
}

// ParseControl parses a row comment for a GOTO/ИДИ_НА or
// IF/ЕСЛИ ... THEN/ТО ... [ELSE/ИНАЧЕ ...] directive. It reports false
// if the comment is plain text carrying no recognized directive.
func ParseControl(s string) (Directive, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Directive{}, false
	}

	switch {
	case tokenIs(fields[0], "GOTO", "ИДИ_НА"):
		if len(fields) != 2 {
			return Directive{}, false
		}
		target, ok := parseAddr(fields[1])
		if !ok {
			return Directive{}, false
		}
		return Directive{Kind: KindGoto, Then: target}, true

	case tokenIs(fields[0], "IF", "ЕСЛИ"):
		if len(fields) != 4 && len(fields) != 6 {
			return Directive{}, false
		}
		idx, ok := flags.Lookup(fields[1])
		if !ok {
			return Directive{}, false
		}
		if !tokenIs(fields[2], "THEN", "ТО") {
			return Directive{}, false
		}
		thenAddr, ok := parseAddr(fields[3])
		if !ok {
			return Directive{}, false
		}
		d := Directive{Kind: KindIf, FlagIndex: idx, Then: thenAddr}
		if len(fields) == 6 {
			if !tokenIs(fields[4], "ELSE", "ИНАЧЕ") {
				return Directive{}, false
			}
			elseAddr, ok := parseAddr(fields[5])
			if !ok {
				return Directive{}, false
			}
			d.HasElse = true
			d.Else = elseAddr
		}
		return d, true
	}

	return Directive{}, false
}

// parseAddr parses tok as a program-store row address, valid only in
// [0, storeSize): §4.5 requires both GOTO and IF/THEN/ELSE targets to
// name a real row.
func parseAddr(tok string) (uint16, bool) {
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 || n >= storeSize {
		return 0, false
	}
	return uint16(n), true
}

var (
	bits16     = regexp.MustCompile(`^[01]{16}$`)
	bits4Group = regexp.MustCompile(`^[01]{4} [01]{4} [01]{4} [01]{4}$`)
)

// ParseInput parses a row comment for an INPUT/ВВОД directive: the
// keyword followed by a bare 16-bit binary string (with or without the
// four 4-bit group spaces normally displayed), or a signed decimal in
// [-32768, 65535], which is reduced modulo 65536 to the unsigned
// 16-bit bus value. It reports false if s does not open with the
// keyword or its value is malformed.
func ParseInput(s string) (uint16, bool) {
	fields := strings.Fields(s)
	if len(fields) < 2 || !tokenIs(fields[0], "INPUT", "ВВОД") {
		return 0, false
	}
	s = strings.TrimSpace(strings.Join(fields[1:], " "))

	switch {
	case bits16.MatchString(s):
		return parseBinary(s), true
	case bits4Group.MatchString(s):
		return parseBinary(strings.ReplaceAll(s, " ", "")), true
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < -32768 || n > 65535 {
		return 0, false
	}
	return uint16(int32(n) & 0xFFFF), true
}

func parseBinary(s string) uint16 {
	var v uint16
	for _, ch := range s {
		v <<= 1
		if ch == '1' {
			v |= 1
		}
	}
	return v
}
