/*
 * x584 - Console command adapter binding the driver to command.Command.
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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcornwell/x584/internal/driver"
	"github.com/rcornwell/x584/internal/filecodec"

	"github.com/rcornwell/x584/command/command"
	"github.com/rcornwell/x584/util/hex"
)

// machine adapts a driver.Driver to the console command.Command
// interface: attaching a program store file, setting breakpoints, and
// showing instruction-pointer and register state.
type machine struct {
	drv  *driver.Driver
	path string
}

func newMachine(drv *driver.Driver) *machine {
	return &machine{drv: drv}
}

func (m *machine) Options(opt string) []command.Options {
	switch opt {
	case "attach":
		return []command.Options{
			{Name: "file", OptionType: command.OptionFile, OptionValid: command.ValidAttach},
		}
	case "set":
		return []command.Options{
			{Name: "break", OptionType: command.OptionNumber, OptionValid: command.ValidSet},
		}
	default:
		return nil
	}
}

func (m *machine) Attach(options []*command.CmdOption) error {
	var path string
	for _, o := range options {
		if o.Name == "file" {
			path = o.EqualOpt
		}
	}
	if path == "" {
		return fmt.Errorf("machine: attach requires a file option")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var doc *filecodec.Document
	if strings.EqualFold(filepath.Ext(path), ".prj") {
		doc, err = filecodec.ReadPRJ(f)
	} else {
		doc, err = filecodec.ReadX584(f)
	}
	if err != nil {
		return err
	}

	m.drv.Load(doc.Rows[:])
	m.path = path
	return nil
}

func (m *machine) Detach() error {
	m.drv.Load(nil)
	m.path = ""
	return nil
}

func (m *machine) Set(set bool, options []*command.CmdOption) error {
	for _, o := range options {
		if o.Name == "break" {
			m.drv.SetBreakpoint(uint16(o.Value), set)
		}
	}
	return nil
}

func (m *machine) Show(options []*command.CmdOption) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "file:  %s\n", m.path)

	b.WriteString("IP:    ")
	hex.FormatAddr(&b, m.drv.IP)
	b.WriteString(" (was ")
	hex.FormatAddr(&b, m.drv.OldIP)
	b.WriteString(")\n")

	b.WriteString("WR:    ")
	hex.FormatHalf(&b, m.drv.CPU.WR)
	b.WriteString("  ")
	hex.FormatBinary(&b, m.drv.CPU.WR, 16)
	b.WriteString("\nXWR:   ")
	hex.FormatHalf(&b, m.drv.CPU.XWR)
	b.WriteString("  ")
	hex.FormatBinary(&b, m.drv.CPU.XWR, 16)
	b.WriteByte('\n')

	for i, r := range m.drv.CPU.Reg {
		fmt.Fprintf(&b, "РОН%d:  %s\n", i, hex.Half(r))
	}
	return b.String(), nil
}
