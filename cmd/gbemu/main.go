package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pixelpocket/handheldcore/internal/emu"
	"github.com/pixelpocket/handheldcore/internal/ui"
)

type cliFlags struct {
	ROMPath string
	Scale   int
	Title   string
	Trace   bool
	SaveRAM bool

	Headless bool
	Frames   int
	PNGOut   string
	Expect   string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb)")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "handheldcore", "window title")
	flag.BoolVar(&f.Trace, "trace", false, "log each instruction boundary")
	flag.BoolVar(&f.SaveRAM, "save", true, "persist battery RAM to ROM.sav on exit and load on start")

	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write the last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert the grayscale framebuffer's CRC32 (hex)")
	flag.Parse()
	return f
}

func runHeadless(m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		m.StepFrame()
	}
	dur := time.Since(start)

	rgba := framebufferToRGBA(m.Framebuffer())
	crc := crc32.ChecksumIEEE(rgba)
	fps := float64(frames) / dur.Seconds()

	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(rgba, 160, 144, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

// framebufferToRGBA expands the 2-bit shade framebuffer into grayscale RGBA
// for PNG export and checksumming, independent of the UI's color palette.
func framebufferToRGBA(frame *[144][160]byte) []byte {
	pix := make([]byte, 160*144*4)
	shades := [4]byte{0xFF, 0xAA, 0x55, 0x00}
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			v := shades[frame[y][x]&0x03]
			i := (y*160 + x) * 4
			pix[i+0], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 0xFF
		}
	}
	return pix
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{
		Pix:    pix,
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	f := parseFlags()
	if f.ROMPath == "" {
		log.Fatal("-rom is required")
	}

	m := emu.New(emu.Config{Trace: f.Trace})
	if err := m.LoadROMFromFile(f.ROMPath); err != nil {
		log.Fatalf("load rom: %v", err)
	}
	log.Printf("ROM: %q", m.ROMTitle())

	savPath := strings.TrimSuffix(f.ROMPath, ".gb") + ".sav"
	if f.SaveRAM {
		if data, err := os.ReadFile(savPath); err == nil {
			if m.LoadBattery(data) {
				log.Printf("loaded save RAM: %s (%d bytes)", savPath, len(data))
			}
		}
	}

	if f.Headless {
		if err := runHeadless(m, f.Frames, f.PNGOut, f.Expect); err != nil {
			log.Fatal(err)
		}
		writeBattery(m, f.SaveRAM, savPath)
		return
	}

	uiCfg := ui.Config{Title: f.Title, Scale: f.Scale}
	app := ui.NewApp(uiCfg, m)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
	writeBattery(m, f.SaveRAM, savPath)
}

func writeBattery(m *emu.Machine, enabled bool, path string) {
	if !enabled {
		return
	}
	data, ok := m.SaveBattery()
	if !ok {
		return
	}
	if err := os.WriteFile(path, data, 0644); err == nil {
		log.Printf("wrote %s", path)
	}
}
