// Package cart implements the cartridge-loader boundary of spec.md §6:
// parsing the ROM header for its title and declared type, and exposing a
// Cartridge the Bus reads and writes through for the ROM (0000-7FFF) and
// external-RAM (A000-BFFF) regions.
//
// Only the no-mapper base case is modeled. spec.md §1's Non-goals place
// "mapper/bank-switch logic beyond the no-mapper base case" out of scope,
// so the header's cartridge-type byte is surfaced for diagnostics only —
// it never changes how reads and writes are served.
package cart

// Cartridge is the minimal interface the Bus needs: serve ROM reads and
// external-RAM reads/writes, and swallow mapper-control writes into the
// ROM region the way real hardware's mapper latches would (spec §4.1).
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// BatteryBacked is satisfied by a cartridge whose external RAM should
// survive a restart. The base-case ROMOnly cartridge carries no RAM and
// doesn't implement it; the interface exists so emu.Machine's
// SaveBattery/LoadBattery path has somewhere to type-assert into without
// that call site needing to change if a RAM-bearing cartridge is added
// later.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// NewCartridge always returns the no-mapper base case: every ROM,
// regardless of what its header's cartridge-type byte claims, is served
// as fixed, unbanked ROM with mapper-control writes discarded.
func NewCartridge(rom []byte) Cartridge {
	return NewROMOnly(rom)
}
