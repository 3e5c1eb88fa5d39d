/*
 * x584 - Program store file format: native .x584 and legacy .prj.
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

// Package filecodec reads and writes program stores in the two file
// formats the tool has used: the native binary .x584 format (always
// paired with a "V2.0" trailer carrying full-Unicode control/comment
// text) and the legacy fixed-column .prj text format, written in the
// CP1251 code page, that predates the instruction catalog.
package filecodec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/rcornwell/x584/internal/catalog"
	"github.com/rcornwell/x584/internal/comment"
	"github.com/rcornwell/x584/internal/driver"
	"github.com/rcornwell/x584/internal/flags"
)

// On-disk signatures. Each is written little-endian, which is what
// makes the four bytes on disk spell out the ASCII text below.
const (
	SignatureX584 uint32 = 0x34383558 // "X584"
	SignatureV2   uint32 = 0x302E3256 // "V2.0"
)

// ErrBadSignature is returned by ReadX584 when the file does not open
// with the expected four-byte signature.
var ErrBadSignature = fmt.Errorf("filecodec: not an X584 program store")

// maxLegacyAnnotation is the longest single-byte legacy annotation
// WriteX584 will emit, even though the one-byte length prefix could
// address up to 255.
const maxLegacyAnnotation = 128

// Document is a full program store as read from or about to be
// written to disk.
type Document struct {
	Rows [driver.StoreSize]driver.Row
}

// WriteX584 writes doc in the native binary format: 1024 rows of
// (code, legacy CP1251 annotation), followed unconditionally by the
// V2 trailer carrying both the control and comment annotations
// verbatim as UTF-8.
func WriteX584(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, SignatureX584); err != nil {
		return err
	}

	enc := charmap.Windows1251.NewEncoder()
	for _, row := range doc.Rows {
		code := row.Code
		if code == 0 {
			code = catalog.NOP1 // an empty row is written as the NOP opcode
		}
		if err := binary.Write(bw, binary.LittleEndian, code); err != nil {
			return err
		}
		text := legacyAnnotation(row)
		cp1251, err := enc.String(text)
		if err != nil {
			cp1251 = "" // characters outside CP1251 are only preserved via the V2 trailer
		}
		if len(cp1251) > maxLegacyAnnotation {
			cp1251 = cp1251[:maxLegacyAnnotation]
		}
		if err := writeLPString8(bw, cp1251); err != nil {
			return err
		}
	}

	if err := binary.Write(bw, binary.LittleEndian, SignatureV2); err != nil {
		return err
	}
	for _, row := range doc.Rows {
		if err := writeVarintString(bw, row.Control); err != nil {
			return err
		}
		if err := writeVarintString(bw, row.Comment); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ReadX584 reads a program store from the native binary format. A
// file with no V2 trailer (predating it) uses its single legacy
// annotation as both the row's control and comment text.
func ReadX584(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)

	var sig uint32
	if err := binary.Read(br, binary.LittleEndian, &sig); err != nil {
		return nil, err
	}
	if sig != SignatureX584 {
		return nil, ErrBadSignature
	}

	doc := &Document{}
	dec := charmap.Windows1251.NewDecoder()
	for i := range doc.Rows {
		var code uint16
		if err := binary.Read(br, binary.LittleEndian, &code); err != nil {
			return nil, err
		}
		raw, err := readLPString8(br)
		if err != nil {
			return nil, err
		}
		text, err := dec.String(raw)
		if err != nil {
			text = raw
		}
		doc.Rows[i] = driver.Row{Code: code, Control: text, Comment: text}
	}

	var trailerSig uint32
	if err := binary.Read(br, binary.LittleEndian, &trailerSig); err != nil {
		return doc, nil // no trailer: the file predates V2
	}
	if trailerSig != SignatureV2 {
		return doc, nil
	}
	for i := range doc.Rows {
		control, err := readVarintString(br)
		if err != nil {
			return nil, err
		}
		cmt, err := readVarintString(br)
		if err != nil {
			return nil, err
		}
		doc.Rows[i].Control = control
		doc.Rows[i].Comment = cmt
	}
	return doc, nil
}

// legacyAnnotation picks the one annotation a legacy reader gets: the
// control text, canonicalized to primary-spelling flag names, unless
// it is empty or itself parses as an input directive, in which case
// the comment text is used instead.
func legacyAnnotation(row driver.Row) string {
	if row.Control != "" {
		if _, isInput := comment.ParseInput(row.Control); !isInput {
			return canonicalizeComment(row.Control)
		}
	}
	return row.Comment
}

func writeLPString8(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readLPString8(r io.Reader) (string, error) {
	var n uint8
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeVarintString(w *bufio.Writer, s string) error {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readVarintString(r *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// prjAbsent is the sentinel written for a register-index or
// ALU-function field that does not apply to a row's opcode.
const prjAbsent = 0xFF

const (
	prjHeader1 = "Проект Микропрограммы Процессора К-584"
	prjHeader2 = "Код РОН П Л/Аоп.           Коментарии"
)

// WritePRJ writes doc in the legacy fixed-column text format, CP1251
// encoded: two literal header lines, then one line per row giving the
// legacy opcode index, register-index byte, carry bit, ALU-function
// byte, and free-text annotation at fixed character offsets (§6).
// Comment flag names are canonicalized to their primary (Russian)
// spelling so a file written from an English-spelled annotation still
// round-trips through older tooling.
func WritePRJ(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	enc := charmap.Windows1251.NewEncoder()

	for _, header := range []string{prjHeader1, prjHeader2} {
		cp1251, err := enc.String(header)
		if err != nil {
			cp1251 = header
		}
		if _, err := fmt.Fprintln(bw, cp1251); err != nil {
			return err
		}
	}

	for _, row := range doc.Rows {
		legacy := legacyIndexFor(row.Code)
		opcode := row.Opcode()
		entry, ok := catalog.Lookup(opcode)

		regField, aluField := prjAbsent, prjAbsent
		if ok {
			if entry.HasReg {
				regField = catalog.RegisterIndex(opcode)
			}
			if entry.Family == catalog.FamilyALU {
				aluField = catalog.ALUFunction(opcode)
			}
		}
		carryChar := byte('0')
		if row.CarryValue() {
			carryChar = '1'
		}

		text := canonicalizeComment(legacyAnnotation(row))
		cp1251, err := enc.String(text)
		if err != nil {
			cp1251 = text
		}

		line := fmt.Sprintf("%3d %3d %c %3d %s", legacy, regField, carryChar, aluField, cp1251)
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadPRJ reads a program store from the legacy fixed-column text
// format, translating each legacy opcode index through catalog.ReCode
// into the equivalent catalog entry, and filling back in the
// register-index and ALU-function bits the legacy format stores
// alongside it.
func ReadPRJ(r io.Reader) (*Document, error) {
	doc := &Document{}
	dec := charmap.Windows1251.NewDecoder()

	scanner := bufio.NewScanner(r)
	for i := 0; i < 2 && scanner.Scan(); i++ {
		// header lines carry no row data
	}

	for row := 0; row < driver.StoreSize && scanner.Scan(); row++ {
		line := scanner.Text()
		if len(line) < 13 {
			continue
		}
		legacy, err := strconv.Atoi(strings.TrimSpace(line[0:3]))
		if err != nil {
			return nil, fmt.Errorf("filecodec: .prj row %d: bad opcode index: %w", row, err)
		}
		if legacy < 0 || legacy >= len(catalog.ReCode) {
			continue
		}
		regByte := prjFieldByte(line[4:7])
		carryValue := len(line) > 8 && line[8] == '1'
		aluByte := prjFieldByte(line[10:13])

		text := ""
		if len(line) > 14 {
			text = line[14:]
		}
		decoded, err := dec.String(text)
		if err != nil {
			decoded = text
		}

		entry := catalog.Table[catalog.ReCode[legacy]]
		code := entry.Value
		if entry.HasReg && regByte != prjAbsent {
			code |= uint16(regByte) & 0x7
		}
		if entry.Family == catalog.FamilyALU && aluByte != prjAbsent {
			code |= (uint16(aluByte) & 0xF) << 5
		}
		code |= driver.BitCarryUsed
		if carryValue {
			code |= driver.BitCarryValue
		}

		doc.Rows[row] = driver.Row{Code: code, Control: decoded, Comment: decoded}
	}
	return doc, scanner.Err()
}

// prjFieldByte parses a 3-character legacy field, returning prjAbsent
// if it is not a valid number or is the "255" absent sentinel.
func prjFieldByte(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n == prjAbsent {
		return prjAbsent
	}
	return n
}

// legacyIndexFor returns the first legacy ReCode index whose target is
// the catalog entry code decodes to, ignoring the register-select and
// ALU-function bits (WritePRJ stores those in their own columns), or
// prjAbsent if code decodes to no entry or no legacy index targets it.
func legacyIndexFor(code uint16) int {
	entry, ok := catalog.Lookup(code & driver.OpcodeMask)
	if !ok {
		return prjAbsent
	}
	for legacy, tableIdx := range catalog.ReCode {
		if catalog.Table[tableIdx].Value == entry.Value {
			return legacy
		}
	}
	return prjAbsent
}

// canonicalizeComment rewrites every word in s that names one of the
// twelve status flags, under any spelling, to its primary (Names)
// spelling, leaving keywords and addresses untouched.
func canonicalizeComment(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = flags.Canonicalize(f)
	}
	return strings.Join(fields, " ")
}
