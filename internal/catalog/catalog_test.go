/*
 * x584 - Catalog tests.
 *
 * Copyright 2024, Richard Cornwell
 */

package catalog

import "testing"

func TestNOPNeverMatches(t *testing.T) {
	for _, op := range []uint16{NOP1, NOP2} {
		if _, ok := Lookup(op); ok {
			t.Fatalf("opcode %d (NOP) unexpectedly matched a catalog entry", op)
		}
	}
}

func TestEveryEntryResolvesToItself(t *testing.T) {
	for i, e := range Table {
		got, ok := Lookup(e.Value)
		if !ok {
			t.Fatalf("entry %d (%s) canonical opcode %d matched nothing", i, e.Mnemonic, e.Value)
		}
		if got.Mnemonic != e.Mnemonic {
			t.Fatalf("entry %d (%s): canonical opcode %d matched %q instead of itself",
				i, e.Mnemonic, e.Value, got.Mnemonic)
		}
	}
}

func TestCompileTemplate(t *testing.T) {
	cases := []struct {
		tpl        string
		value,mask uint16
	}{
		{"000000000", 0, 0x1FF},
		{"111111111", 0x1FF, 0x1FF},
		{"fffffffff", 0, 0},
		{"000101rrr", 40, 504},
		{"ffff10rrr", 16, 24},
	}
	for _, c := range cases {
		value, mask := compileTemplate(c.tpl)
		if value != c.value || mask != c.mask {
			t.Errorf("compileTemplate(%q) = (%d,%d), want (%d,%d)", c.tpl, value, mask, c.value, c.mask)
		}
	}
}

func TestRegisterIndexWildcard(t *testing.T) {
	// REG:=WR+DI (value 40, mask 504) must match for every register 0-7.
	for r := uint16(0); r < 8; r++ {
		op := 40 | r
		e, ok := Lookup(op)
		if !ok || e.Mnemonic != "REG:=WR+DI" {
			t.Fatalf("opcode %d: want REG:=WR+DI, got %+v ok=%v", op, e, ok)
		}
		if RegisterIndex(op) != int(r) {
			t.Errorf("RegisterIndex(%d) = %d, want %d", op, RegisterIndex(op), r)
		}
	}
}

func TestALUFunctionWildcard(t *testing.T) {
	base := uint16(23) // WR:=ALU(WR,DI)
	for f := 0; f < 16; f++ {
		op := base | uint16(f<<5)
		e, ok := Lookup(op)
		if !ok || e.Family != FamilyALU || e.Mnemonic != "WR:=ALU(WR,DI)" {
			t.Fatalf("opcode %d func %d: want WR:=ALU(WR,DI), got %+v ok=%v", op, f, e, ok)
		}
		if ALUFunction(op) != f {
			t.Errorf("ALUFunction(%d) = %d, want %d", op, ALUFunction(op), f)
		}
	}
}

func TestReCodeLength(t *testing.T) {
	if len(ReCode) != 54 {
		t.Fatalf("ReCode has %d entries, want 54", len(ReCode))
	}
	for i, idx := range ReCode {
		if idx < 0 || idx >= len(Table) {
			t.Errorf("ReCode[%d] = %d out of range", i, idx)
		}
	}
}
