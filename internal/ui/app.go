// Package ui hosts the emulator behind an ebiten window: it drives an
// emu.Machine to one finished frame per Update, polls the keyboard for the
// joypad matrix, and paints the framebuffer through the configured shade
// palette.
package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/pixelpocket/handheldcore/internal/emu"
)

// App is an ebiten.Game driving one emu.Machine.
type App struct {
	cfg Config
	m   *emu.Machine

	tex *ebiten.Image
}

// NewApp constructs an App over an already-loaded Machine.
func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	title := cfg.Title
	if t := m.ROMTitle(); t != "" {
		title = cfg.Title + " - " + t
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)

	return &App{cfg: cfg, m: m, tex: ebiten.NewImage(160, 144)}
}

// Run starts the ebiten game loop.
func (a *App) Run() error { return ebiten.RunGame(a) }

// Update drives the Machine for one presented frame per host tick, close
// enough to the DMG's native ~59.7Hz that no separate throttle is needed
// against ebiten's ~60Hz default.
func (a *App) Update() error {
	if quitPressed() {
		return ebiten.Termination
	}
	a.m.SetButtons(pollButtons())
	a.m.StepFrame()
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	frame := a.m.Framebuffer()
	pix := make([]byte, 160*144*4)
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			shade := frame[y][x] & 0x03
			c := a.cfg.Palette[shade]
			i := (y*160 + x) * 4
			pix[i+0], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	a.tex.WritePixels(pix)

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w)/160, float64(h)/144)
	screen.DrawImage(a.tex, op)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// pollButtons reads the keyboard for the eight Game Boy inputs (§6's
// "must not block" joypad provider requirement).
func pollButtons() emu.Buttons {
	return emu.Buttons{
		Up:     ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:   ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Left:   ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:  ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		A:      ebiten.IsKeyPressed(ebiten.KeyZ),
		B:      ebiten.IsKeyPressed(ebiten.KeyX),
		Select: ebiten.IsKeyPressed(ebiten.KeyShift),
		Start:  ebiten.IsKeyPressed(ebiten.KeyEnter),
	}
}

// quitPressed reports whether the host requested a clean shutdown.
func quitPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}
