/*
 * x584 - Processor core tests.
 *
 * Copyright 2024, Richard Cornwell
 */

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcornwell/x584/internal/catalog"
	"github.com/rcornwell/x584/internal/flags"
)

// opcodeFor returns the canonical opcode for the catalog entry whose
// mnemonic matches name.
func opcodeFor(t *testing.T, name string) uint16 {
	t.Helper()
	for _, e := range catalog.Table {
		if e.Mnemonic == name {
			return e.Value
		}
	}
	t.Fatalf("no catalog entry named %q", name)
	return 0
}

func TestAddWithCarry(t *testing.T) {
	c := New()
	c.WR = 0x00FF
	op := opcodeFor(t, "WR:=WR+DI")

	_, _, outFlags := c.Execute(op, 1, flags.InCI)

	// register writes are immediate, not latched
	assert.Equal(t, uint16(0x0101), c.WR)
	assert.Equal(t, uint32(0), outFlags&(1<<flags.OutCO), "no overall carry out")
	assert.NotEqual(t, uint32(0), outFlags&(1<<flags.OutC0), "slice 0 carries out")
}

func TestLogicalXOR(t *testing.T) {
	c := New()
	c.WR = 0xAAAA
	op := opcodeFor(t, "WR:=ALU(WR,DI)") | uint16(9<<5) // function 9 = logical XOR
	c.Execute(op, 0x5555, 0)
	assert.Equal(t, uint16(0xFFFF), c.WR)
}

func TestShiftArithmeticRightDual(t *testing.T) {
	c := New()
	c.WR = 0x8001
	c.XWR = 0x0002
	op := opcodeFor(t, "SAR(WR:XWR,XWR)")
	c.Execute(op, 0, 0)
	assert.Equal(t, uint16(0xC000), c.WR)
	assert.Equal(t, uint16(0xC001), c.XWR)
}

func TestRegisterWriteIsImmediate(t *testing.T) {
	c := New()
	c.WR = 5
	c.Reg[3] = 99
	regWrite := opcodeFor(t, "REG:=WR+DI") | 3 // register 3

	c.Execute(regWrite, 10, 0)
	assert.Equal(t, uint16(15), c.Reg[3], "register writes are not delayed")
}

func TestAddressBusLatchedOneStep(t *testing.T) {
	c := New()
	c.WR = 0x1111
	op := opcodeFor(t, "WR:=WR+1")

	_, da, _ := c.Execute(op, 0, 0)
	assert.Equal(t, uint16(0), da, "address bus reflects the previous step, not this one")

	_, da, _ = c.Execute(catalog.NOP1, 0, 0)
	assert.Equal(t, uint16(0x1112), da, "address bus now reflects the WR value latched last step")
}

func TestOutputBusIsCombinational(t *testing.T) {
	c := New()
	c.WR = 7
	op := opcodeFor(t, "OUT:=WR+DI")
	do, _, _ := c.Execute(op, 3, 0)
	assert.Equal(t, uint16(10), do, "output bus reflects the result the same step it is driven")
}

func TestHasCarryIn(t *testing.T) {
	plusEntry, _ := catalog.Lookup(opcodeFor(t, "WR:=WR+DI"))
	minusEntry, _ := catalog.Lookup(opcodeFor(t, "WR:=WR-DI"))
	assert.True(t, HasCarryIn(plusEntry))
	assert.False(t, HasCarryIn(minusEntry))
}

func TestNOPLeavesStateUnchanged(t *testing.T) {
	c := New()
	c.WR, c.XWR = 0x1234, 0x5678
	c.Reg[0] = 0xAAAA
	c.Reg[7] = 100
	for _, op := range []uint16{catalog.NOP1, catalog.NOP2} {
		c.Execute(op, 0xFFFF, flags.InCI)
		assert.Equal(t, uint16(0x1234), c.WR)
		assert.Equal(t, uint16(0x5678), c.XWR)
		assert.Equal(t, uint16(0xAAAA), c.Reg[0])
		assert.Equal(t, uint16(100), c.Reg[7], "NOP does not advance the program counter")
	}
}

func TestProgramCounterAdvances(t *testing.T) {
	c := New()
	op := opcodeFor(t, "WR:=WR+1")

	c.Execute(op, 0, 0)
	assert.Equal(t, uint16(1), c.Reg[7])

	c.Execute(op, 0, flags.InINC)
	assert.Equal(t, uint16(3), c.Reg[7])

	c.Execute(op, 0, flags.InINVPC)
	assert.Equal(t, uint16(3), c.Reg[7], "INVPC suppresses the advance")
}
