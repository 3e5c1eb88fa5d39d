/*
 * x584 - Main process.
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
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	getopt "github.com/pborman/getopt/v2"
	"github.com/peterh/liner"

	"github.com/rcornwell/x584/command/command"
	"github.com/rcornwell/x584/internal/disassemble"
	"github.com/rcornwell/x584/internal/driver"
	"github.com/rcornwell/x584/util/logger"
)

var Logger *slog.Logger

func main() {
	optProgram := getopt.StringLong("program", 'p', "", "Program store file to load (.x584 or .prj)")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if optLogFile != nil && *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, false))
	slog.SetDefault(Logger)

	Logger.Info("x584 started")

	drv := driver.New()
	mach := newMachine(drv)

	if optProgram != nil && *optProgram != "" {
		if err := mach.Attach([]*command.CmdOption{{Name: "file", EqualOpt: *optProgram}}); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
		Logger.Info("loaded program store", "file", *optProgram)
	}

	go drv.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nGot quit signal")
		drv.Stop()
		os.Exit(0)
	}()

	runREPL(mach, drv)

	Logger.Info("Shutting down")
	drv.Stop()
}

// runREPL drives a peterh/liner console reading commands until "quit"
// or EOF.
func runREPL(mach *machine, drv *driver.Driver) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("x584> ")
		if err != nil {
			return
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return

		case "step":
			drv.Step()
			ev := <-drv.Events
			fmt.Printf("IP=%04d %s\n", ev.IP, disassemble.Format(drv.Store[ev.IP].Code, true, true, true))

		case "run":
			drv.Run()
			ev := <-drv.Events
			reportEvent(ev)

		case "runto":
			if len(fields) < 2 {
				fmt.Println("usage: runto <row>")
				continue
			}
			addr, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("bad row number:", fields[1])
				continue
			}
			drv.RunToCursor(uint16(addr))
			ev := <-drv.Events
			reportEvent(ev)

		case "break":
			if len(fields) < 2 {
				fmt.Println("usage: break <row>")
				continue
			}
			addr, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("bad row number:", fields[1])
				continue
			}
			if err := mach.Set(true, []*command.CmdOption{{Name: "break", Value: addr}}); err != nil {
				fmt.Println(err)
			}

		case "show":
			text, err := mach.Show(nil)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println(text)

		case "attach":
			if len(fields) < 2 {
				fmt.Println("usage: attach <file>")
				continue
			}
			if err := mach.Attach([]*command.CmdOption{{Name: "file", EqualOpt: fields[1]}}); err != nil {
				fmt.Println(err)
			}

		case "detach":
			if err := mach.Detach(); err != nil {
				fmt.Println(err)
			}

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func reportEvent(ev driver.Event) {
	if ev.BreakpointHit {
		fmt.Printf("stopped at breakpoint, IP=%04d\n", ev.IP)
		return
	}
	fmt.Printf("stopped, IP=%04d\n", ev.IP)
}
