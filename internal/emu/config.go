package emu

// Config contains settings that affect emulation behavior but not its
// semantics: tracing and any future fast-forward/debug toggles.
type Config struct {
	Trace bool // log each instruction boundary via traceLine
}
