/*
 * x584 - Driver tests.
 *
 * Copyright 2024, Richard Cornwell
 */

package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func wrPlusDI() uint16 { return 60 } // WR:=WR+DI, see internal/catalog

func TestUnconditionalGoto(t *testing.T) {
	d := New()
	d.Load([]Row{
		{Code: wrPlusDI(), Control: "GOTO 100"},
	})
	d.StepOnce()
	assert.Equal(t, uint16(100), d.IP)
	assert.Equal(t, uint16(0), d.OldIP)
}

func TestConditionalBranchTakenAndNotTaken(t *testing.T) {
	d := New()
	d.Load([]Row{
		{Code: wrPlusDI(), Control: "IF A3 THEN 50 ELSE 51"},
	})
	d.CPU.WR = 0x8000 // sign bit set: the add's A operand carries A3=true
	d.StepOnce()
	assert.Equal(t, uint16(50), d.IP)

	d2 := New()
	d2.Load([]Row{
		{Code: wrPlusDI(), Control: "IF A3 THEN 50 ELSE 51"},
	})
	d2.StepOnce()
	assert.Equal(t, uint16(51), d2.IP)
}

func TestFallthroughWithoutDirective(t *testing.T) {
	d := New()
	d.Load([]Row{
		{Code: wrPlusDI(), Comment: "just a note"},
		{Code: wrPlusDI(), Comment: ""},
	})
	d.StepOnce()
	assert.Equal(t, uint16(1), d.IP)
}

func TestBreakpointSurfacesAsEvent(t *testing.T) {
	d := New()
	d.Load([]Row{
		{Code: wrPlusDI(), Comment: ""},
		{Code: wrPlusDI(), Comment: ""},
	})
	d.SetBreakpoint(1, true)

	go d.Start()
	defer d.Stop()

	d.Run()
	ev := <-d.Events
	assert.True(t, ev.BreakpointHit)
	assert.Equal(t, uint16(1), ev.IP)
}

func TestInputLiteralFeedsOperand(t *testing.T) {
	d := New()
	d.Load([]Row{
		{Code: wrPlusDI(), Control: "ВВОД 7"},
	})
	d.CPU.WR = 0
	d.StepOnce()
	assert.Equal(t, uint16(7), d.CPU.WR)
}

func TestWrapsAtStoreBoundary(t *testing.T) {
	d := New()
	rows := make([]Row, StoreSize)
	rows[StoreSize-1] = Row{Code: wrPlusDI(), Comment: ""}
	d.Load(rows)
	d.IP = StoreSize - 1
	d.StepOnce()
	assert.Equal(t, uint16(0), d.IP)
}

func TestRowCarryAttributeOverridesConsoleCI(t *testing.T) {
	d := New()
	d.Load([]Row{
		{Code: wrPlusDI() | BitCarryUsed | BitCarryValue, Comment: ""},
	})
	d.CPU.WR = 0xFFFF
	d.InFlags = 0 // console CI clear; the row's own attribute forces CI=1
	d.StepOnce()
	assert.Equal(t, uint16(0), d.CPU.WR, "0xFFFF + 0 + 1 wraps to 0")
}

// cancelledInput always reports cancellation, simulating a console
// input request interrupted by Stop.
type cancelledInput struct{}

func (cancelledInput) RequestInput(ctx context.Context) (uint16, bool) { return 0, false }

func TestCancelledInputAbandonsStep(t *testing.T) {
	d := New()
	d.Input = cancelledInput{}
	aluWRDI := uint16(23) | uint16(3<<5) // WR:=ALU(WR,DI), function 3 (A+B+C) reads DI
	d.Load([]Row{
		{Code: aluWRDI, Comment: ""}, // no input-literal comment: falls to the provider
	})
	d.CPU.WR = 0x1234
	_, cancelled := d.StepOnce()
	assert.True(t, cancelled)
	assert.Equal(t, uint16(0x1234), d.CPU.WR, "cancelled step must not execute")
	assert.Equal(t, uint16(0), d.IP, "cancelled step must not advance IP")
}
