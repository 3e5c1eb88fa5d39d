/*
 * x584 - Execution driver: the 1024-row program store and run loop.
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

// Package driver holds the 1024-row microprogram store and steps the
// processor core through it, following each row's control annotation
// to decide the next row. It runs its own goroutine loop in the style
// of the emulator core it was adapted from, accepting Step/Run/
// RunToCursor requests over a channel so a console or future UI can
// drive it without blocking on single-instruction latency.
package driver

import (
	"context"
	"sync"
	"time"

	"github.com/rcornwell/x584/internal/catalog"
	"github.com/rcornwell/x584/internal/comment"
	"github.com/rcornwell/x584/internal/cpu"
	"github.com/rcornwell/x584/internal/flags"
)

// StoreSize is the number of rows in the microprogram store.
const StoreSize = 1024

// Editor attribute bits layered above the 9-bit opcode field of a
// row's Code word.
const (
	BitBreakpoint = 1 << 15
	BitCarryValue = 1 << 14
	BitCarryUsed  = 1 << 13
	OpcodeMask    = 0x1FF
)

// Row is one microprogram store entry: a 16-bit microinstruction word
// (9-bit opcode plus the breakpoint and carry-attribute editor bits),
// its control annotation (a GOTO/IF directive, §4.5, or an
// input-literal binding), and its free-text descriptive comment.
type Row struct {
	Code    uint16
	Control string
	Comment string
}

// Opcode returns the 9-bit opcode field of r.Code.
func (r Row) Opcode() uint16 { return r.Code & OpcodeMask }

// Breakpoint reports whether r's breakpoint editor attribute is set.
func (r Row) Breakpoint() bool { return r.Code&BitBreakpoint != 0 }

// CarryUsed reports whether r's opcode carries its own carry-in value,
// overriding the console's CI setting for the step that executes it.
func (r Row) CarryUsed() bool { return r.Code&BitCarryUsed != 0 }

// CarryValue reports the carry-in value r's opcode forces when
// CarryUsed is true.
func (r Row) CarryValue() bool { return r.Code&BitCarryValue != 0 }

// carryOverride reports whether r's opcode carries its own carry-in
// value (used, value), overriding the console's CI setting for the
// step that executes it.
func (r Row) carryOverride() (used, value bool) {
	return r.CarryUsed(), r.CarryValue()
}

// InputProvider supplies a 16-bit datum from an external source when a
// row's control annotation does not resolve an input-literal directive
// (§4.5).
// RequestInput may block; it reports ok == false if ctx is cancelled
// before a value arrives, in which case the driver abandons the step
// without executing it.
type InputProvider interface {
	RequestInput(ctx context.Context) (value uint16, ok bool)
}

// zeroInputProvider is the default InputProvider: it returns 0
// immediately, so a driver with no console attached can still run a
// program whose IN operands are all resolved by input-literal
// control annotations.
type zeroInputProvider struct{}

func (zeroInputProvider) RequestInput(context.Context) (uint16, bool) { return 0, true }

// Mode selects how Run advances once started.
type Mode int

const (
	ModeStep Mode = iota
	ModeRun
	ModeRunToCursor
)

// Event reports something the host loop should notice: a breakpoint
// was hit, an input request was cancelled, or a Run/RunToCursor
// request finished.
type Event struct {
	IP            uint16
	BreakpointHit bool
	Cancelled     bool
	Done          bool
}

type request struct {
	mode   Mode
	cursor uint16
}

// Driver owns the program store, the processor core, and the input
// and output flag words, and serializes all of them behind its own
// goroutine.
type Driver struct {
	Store [StoreSize]Row
	CPU   *cpu.CPU
	IP    uint16
	OldIP uint16

	// InFlags is the console-controlled input flag word (CI and P0 from
	// the UI, INVPC/INC/PR as set by the loaded program's needs). The
	// driver overrides its CI bit per-step with a row's own carry
	// attribute, when that row declares one.
	InFlags uint32
	// OutFlags is the output flag word computed by the most recent
	// Execute call.
	OutFlags uint32

	Input InputProvider

	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	commands chan request
	Events   chan Event
}

// New returns an idle Driver with a cleared program store and a fresh
// processor core.
func New() *Driver {
	ctx, cancel := context.WithCancel(context.Background())
	return &Driver{
		CPU:      cpu.New(),
		Input:    zeroInputProvider{},
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		commands: make(chan request, 1),
		Events:   make(chan Event, StoreSize),
	}
}

// Load replaces the program store with rows (truncated or zero-padded
// to StoreSize) and resets the instruction pointer and processor core.
func (d *Driver) Load(rows []Row) {
	d.Store = [StoreSize]Row{}
	n := len(rows)
	if n > StoreSize {
		n = StoreSize
	}
	copy(d.Store[:n], rows[:n])
	d.IP = 0
	d.OldIP = 0
	d.OutFlags = 0
	d.CPU.Reset()
}

// Start runs the driver's command loop until Stop is called. It is
// meant to be run in its own goroutine, mirroring the emulator core's
// select-over-done/commands loop.
func (d *Driver) Start() {
	d.wg.Add(1)
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case req := <-d.commands:
			d.run(req)
		}
	}
}

// Stop halts the command loop and unblocks any pending input request,
// waiting up to one second for the goroutine started by Start to exit.
func (d *Driver) Stop() {
	d.cancel()
	close(d.done)
	waitCh := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(time.Second):
	}
}

// Step requests a single microinstruction step.
func (d *Driver) Step() {
	d.commands <- request{mode: ModeStep}
}

// Run requests free running until a breakpoint is hit, the instruction
// pointer passes from the last row to row 0, Stop is called, an input
// request is cancelled, or StoreSize*StoreSize steps have run.
func (d *Driver) Run() {
	d.commands <- request{mode: ModeRun}
}

// RunToCursor requests running until the instruction pointer reaches
// cursor, a breakpoint is hit, Stop is called, or an input request is
// cancelled, whichever comes first.
func (d *Driver) RunToCursor(cursor uint16) {
	d.commands <- request{mode: ModeRunToCursor, cursor: cursor}
}

// run executes req synchronously against the current store and core.
func (d *Driver) run(req request) {
	switch req.mode {
	case ModeStep:
		_, cancelled := d.stepOnce()
		d.Events <- Event{IP: d.IP, BreakpointHit: d.Store[d.IP].Breakpoint(), Cancelled: cancelled, Done: true}

	case ModeRun:
		for i := 0; i < StoreSize*StoreSize; i++ {
			if d.ctx.Err() != nil {
				d.Events <- Event{IP: d.IP, Done: true}
				return
			}
			_, cancelled := d.stepOnce()
			if cancelled {
				d.Events <- Event{IP: d.IP, Cancelled: true, Done: true}
				return
			}
			if d.Store[d.IP].Breakpoint() {
				d.Events <- Event{IP: d.IP, BreakpointHit: true, Done: true}
				return
			}
			if d.OldIP == StoreSize-1 && d.IP == 0 {
				d.Events <- Event{IP: d.IP, Done: true}
				return
			}
		}
		d.Events <- Event{IP: d.IP, Done: true}

	case ModeRunToCursor:
		for i := 0; i < StoreSize*StoreSize; i++ {
			if d.ctx.Err() != nil {
				d.Events <- Event{IP: d.IP, Done: true}
				return
			}
			_, cancelled := d.stepOnce()
			if cancelled {
				d.Events <- Event{IP: d.IP, Cancelled: true, Done: true}
				return
			}
			if d.IP == req.cursor {
				d.Events <- Event{IP: d.IP, Done: true}
				return
			}
			if d.Store[d.IP].Breakpoint() {
				d.Events <- Event{IP: d.IP, BreakpointHit: true, Done: true}
				return
			}
		}
		d.Events <- Event{IP: d.IP, Done: true}
	}
}

// StepOnce executes exactly one microinstruction synchronously,
// without going through the command channel. Tests and embedding code
// that do not need the goroutine loop can call it directly.
func (d *Driver) StepOnce() (out uint16, cancelled bool) {
	return d.stepOnce()
}

func (d *Driver) stepOnce() (do uint16, cancelled bool) {
	row := d.Store[d.IP]
	opcode := row.Opcode()

	di := uint16(0)
	if entry, ok := catalog.Lookup(opcode); ok && cpu.FindOperand(entry, opcode, catalog.OperandIn) {
		if v, ok := comment.ParseInput(row.Control); ok {
			di = v
		} else {
			v, ok := d.Input.RequestInput(d.ctx)
			if !ok {
				return 0, true
			}
			di = v
		}
	}

	inFlags := d.InFlags
	if used, value := row.carryOverride(); used {
		if value {
			inFlags |= flags.InCI
		} else {
			inFlags &^= flags.InCI
		}
	}

	do, _, outFlags := d.CPU.Execute(opcode, di, inFlags)
	d.OutFlags = outFlags

	d.OldIP = d.IP
	d.IP = d.nextAddress(row, outFlags)
	return do, false
}

// nextAddress decides the row to execute after row, following its
// control annotation if it has one, or else falling through to the
// next row in sequence.
func (d *Driver) nextAddress(row Row, outFlags uint32) uint16 {
	dir, ok := comment.ParseControl(row.Control)
	if !ok {
		return (d.IP + 1) % StoreSize
	}
	switch dir.Kind {
	case comment.KindGoto:
		return dir.Then % StoreSize
	case comment.KindIf:
		if outFlags&(1<<uint(dir.FlagIndex)) != 0 {
			return dir.Then % StoreSize
		}
		if dir.HasElse {
			return dir.Else % StoreSize
		}
		return (d.IP + 1) % StoreSize
	default:
		return (d.IP + 1) % StoreSize
	}
}

// SetBreakpoint sets or clears the breakpoint attribute on row addr.
func (d *Driver) SetBreakpoint(addr uint16, set bool) {
	addr %= StoreSize
	if set {
		d.Store[addr].Code |= BitBreakpoint
	} else {
		d.Store[addr].Code &^= BitBreakpoint
	}
}
