// Command cpurunner runs a ROM headlessly with optional per-instruction
// tracing, for debugging the CPU/Bus/PPU wiring without a window.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pixelpocket/handheldcore/internal/emu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	frames := flag.Int("frames", 60, "frames to run")
	trace := flag.Bool("trace", false, "print PC/cycle count/register state at every instruction boundary")
	dump := flag.Bool("dump", false, "print a full register dump after the run")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s); 0 disables")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}

	m := emu.New(emu.Config{Trace: *trace})
	if err := m.LoadROM(rom); err != nil {
		log.Fatalf("load rom: %v", err)
	}

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}

	for i := 0; i < *frames; i++ {
		m.StepFrame()
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("timeout after %s, %d/%d frames\n", time.Since(start).Truncate(time.Millisecond), i+1, *frames)
			os.Exit(2)
		}
	}
	fmt.Printf("done: frames=%d elapsed=%s\n", *frames, time.Since(start).Truncate(time.Millisecond))
	if *dump {
		fmt.Print(m.CPU().Dump())
	}
}
