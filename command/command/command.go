/*
 * x584 - Command interface
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

// Package command defines the console command surface used by the x584
// REPL to drive a running machine: loading a program store, stepping or
// running it, and inspecting or changing its state.
package command

// CmdOption is a single parsed "name" or "name=value" console argument.
type CmdOption struct {
	Name     string // Name of option.
	EqualOpt string // Value of string after =.
	Value    int    // Numeric value, if EqualOpt parses as one.
}

// Option argument kinds.
const (
	OptionSwitch = 1 + iota
	OptionFile
	OptionNumber
	OptionName
	OptionList
)

// Bitmask of which verbs an Options entry applies to.
const (
	ValidAttach = 1 << iota
	ValidSet
	ValidShow
)

// Options describes one named console argument accepted by a command.
type Options struct {
	Name        string   // Name of option.
	OptionType  int      // Type of argument.
	OptionValid int      // Option valid for command type.
	OptionList  []string // List of valid options for this option.
}

// Command is implemented by anything the console REPL can attach a file
// to, step or run, and query. The driver satisfies this for "machine",
// and individual breakpoint/watch facilities can satisfy it too.
type Command interface {
	Options(opt string) []Options               // Return list of supported options.
	Attach(options []*CmdOption) error          // Load a program store from file.
	Detach() error                              // Unload the current program store.
	Set(set bool, options []*CmdOption) error   // Do set/unset command (breakpoint, input, IP).
	Show(options []*CmdOption) (string, error)  // Do show command (registers, flags, trace).
}
