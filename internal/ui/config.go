package ui

import "image/color"

// Config contains window and presentation settings for the ebiten host.
type Config struct {
	Title string // window title
	Scale int    // integer upscaling factor

	// Palette maps the four 2-bit DMG shades (0=lightest, 3=darkest) to an
	// RGBA color. Defaults to the classic four-shade green-gray ramp.
	Palette [4]color.RGBA
}

// Defaults fills missing fields with the classic DMG presentation.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "handheldcore"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.Palette == ([4]color.RGBA{}) {
		c.Palette = [4]color.RGBA{
			{R: 0xE0, G: 0xF0, B: 0xD0, A: 0xFF},
			{R: 0x88, G: 0xC0, B: 0x70, A: 0xFF},
			{R: 0x34, G: 0x68, B: 0x56, A: 0xFF},
			{R: 0x08, G: 0x18, B: 0x20, A: 0xFF},
		}
	}
}
