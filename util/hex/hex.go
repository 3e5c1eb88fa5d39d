/*
 * x584 - Convert numeric machine words to text.
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

// Package hex renders the fixed-width numeric fields the console
// prints: 16-bit register words (as hex or binary) and 10-bit
// program-store addresses.
package hex

import "strings"

var hexMap = "0123456789ABCDEF"

// FormatHalf writes a 16-bit word as four hex digits.
func FormatHalf(str *strings.Builder, word uint16) {
	shift := 12
	for range 4 {
		str.WriteByte(hexMap[(word>>shift)&0xf])
		shift -= 4
	}
}

// FormatAddr writes a program-store row address (0..1023) as three
// hex digits.
func FormatAddr(str *strings.Builder, addr uint16) {
	str.WriteByte(hexMap[(addr>>8)&0xf])
	str.WriteByte(hexMap[(addr>>4)&0xf])
	str.WriteByte(hexMap[addr&0xf])
}

// FormatBinary writes the low width bits of v as '0'/'1' characters,
// most significant bit first.
func FormatBinary(str *strings.Builder, v uint16, width int) {
	for shift := width - 1; shift >= 0; shift-- {
		if (v>>shift)&1 != 0 {
			str.WriteByte('1')
		} else {
			str.WriteByte('0')
		}
	}
}

// Half renders a 16-bit word as four hex digits.
func Half(word uint16) string {
	var str strings.Builder
	FormatHalf(&str, word)
	return str.String()
}

// Binary renders the low width bits of v as a string of '0'/'1' characters.
func Binary(v uint16, width int) string {
	var str strings.Builder
	FormatBinary(&str, v, width)
	return str.String()
}
