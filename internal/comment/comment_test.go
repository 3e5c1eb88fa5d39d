/*
 * x584 - Comment parser tests.
 *
 * Copyright 2024, Richard Cornwell
 */

package comment

import "testing"

func TestParseControlGoto(t *testing.T) {
	for _, s := range []string{"GOTO 17", "ИДИ_НА 17", "goto 17"} {
		d, ok := ParseControl(s)
		if !ok || d.Kind != KindGoto || d.Then != 17 {
			t.Errorf("ParseControl(%q) = %+v, %v; want KindGoto target 17", s, d, ok)
		}
	}
}

func TestParseControlIfThenElse(t *testing.T) {
	for _, s := range []string{
		"IF ПАЛУ3 THEN 10 ELSE 20",
		"ЕСЛИ CO3 ТО 10 ИНАЧЕ 20",
		"if co3 then 10 else 20",
	} {
		d, ok := ParseControl(s)
		if !ok || d.Kind != KindIf || d.Then != 10 || !d.HasElse || d.Else != 20 {
			t.Errorf("ParseControl(%q) = %+v, %v; want KindIf 10/20", s, d, ok)
		}
	}
}

func TestParseControlIfThenOnly(t *testing.T) {
	d, ok := ParseControl("IF A3 THEN 5")
	if !ok || d.Kind != KindIf || d.Then != 5 || d.HasElse {
		t.Errorf("ParseControl = %+v, %v; want KindIf 5 no-else", d, ok)
	}
}

func TestParseControlPlainTextIsNotADirective(t *testing.T) {
	if _, ok := ParseControl("load accumulator from memory"); ok {
		t.Error("plain comment text should not parse as a directive")
	}
}

func TestParseControlUnknownFlagFails(t *testing.T) {
	if _, ok := ParseControl("IF NOSUCHFLAG THEN 1"); ok {
		t.Error("unknown flag name should not parse")
	}
}

func TestParseControlAddressOutOfRangeFails(t *testing.T) {
	if _, ok := ParseControl("GOTO 1024"); ok {
		t.Error("GOTO target 1024 is out of [0, 1024) and should not parse")
	}
	if _, ok := ParseControl("GOTO -1"); ok {
		t.Error("negative GOTO target should not parse")
	}
	if _, ok := ParseControl("IF A3 THEN 1024"); ok {
		t.Error("IF THEN target 1024 is out of [0, 1024) and should not parse")
	}
	if _, ok := ParseControl("IF A3 THEN 5 ELSE 1024"); ok {
		t.Error("IF ELSE target 1024 is out of [0, 1024) and should not parse")
	}
}

func TestParseControlTrailingTokensFail(t *testing.T) {
	if _, ok := ParseControl("GOTO 5 extra"); ok {
		t.Error("trailing tokens after a GOTO target should invalidate the match")
	}
	if _, ok := ParseControl("IF A3 THEN 5 extra"); ok {
		t.Error("trailing tokens after an IF THEN target should invalidate the match")
	}
}

func TestParseInputBinary(t *testing.T) {
	v, ok := ParseInput("INPUT 0000000000000101")
	if !ok || v != 5 {
		t.Errorf("ParseInput = %d, %v; want 5, true", v, ok)
	}
}

func TestParseInputGroupedBinary(t *testing.T) {
	v, ok := ParseInput("ВВОД 0000 0000 0000 0101")
	if !ok || v != 5 {
		t.Errorf("ParseInput = %d, %v; want 5, true", v, ok)
	}
}

func TestParseInputDecimal(t *testing.T) {
	cases := map[string]uint16{
		"5":      5,
		"-1":     0xFFFF,
		"65535":  0xFFFF,
		"-32768": 0x8000,
	}
	for s, want := range cases {
		v, ok := ParseInput("INPUT " + s)
		if !ok || v != want {
			t.Errorf("ParseInput(%q) = %d, %v; want %d, true", s, v, ok, want)
		}
	}
}

func TestParseInputWithKeyword(t *testing.T) {
	v, ok := ParseInput("ВВОД 42")
	if !ok || v != 42 {
		t.Errorf("ParseInput = %d, %v; want 42, true", v, ok)
	}
	v, ok = ParseInput("INPUT 42")
	if !ok || v != 42 {
		t.Errorf("ParseInput = %d, %v; want 42, true", v, ok)
	}
	v, ok = ParseInput("input 42")
	if !ok || v != 42 {
		t.Errorf("ParseInput = %d, %v; want 42, true (case-insensitive)", v, ok)
	}
}

func TestParseInputWithoutKeywordFails(t *testing.T) {
	if _, ok := ParseInput("42"); ok {
		t.Error("a bare value with no INPUT/ВВОД keyword should not parse")
	}
	if _, ok := ParseInput("0000000000000101"); ok {
		t.Error("a bare binary literal with no keyword should not parse")
	}
}

func TestParseInputOutOfRangeFails(t *testing.T) {
	if _, ok := ParseInput("INPUT 65536"); ok {
		t.Error("65536 is out of uint16 range and should fail")
	}
	if _, ok := ParseInput("INPUT -32769"); ok {
		t.Error("-32769 is out of range and should fail")
	}
}
