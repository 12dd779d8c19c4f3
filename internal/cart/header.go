package cart

import (
	"errors"
	"strings"
)

// headerEnd is the last byte offset of the fixed-size cartridge header.
const headerEnd = 0x014F

// Header is the subset of the cartridge header spec.md §6 and §1 care
// about: the ASCII title and the declared (but unsupported) mapper type.
// The header checksum is deliberately not validated — spec §6 states the
// core does not check it in the base case.
type Header struct {
	Title       string // trimmed ASCII, offset 0x0134-0x0143
	CartType    byte   // offset 0x0147
	CartTypeStr string // human-readable form of CartType, for logs
}

var errShortHeader = errors.New("cart: rom too small to contain a header")

// ParseHeader reads the title and declared cartridge type out of the
// fixed header offsets. The only hard requirement is that rom be large
// enough to contain the header; spec §6 places header-checksum
// validation and mapper-type enforcement out of scope.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) <= headerEnd {
		return nil, errShortHeader
	}
	cartType := rom[0x0147]
	return &Header{
		Title:       strings.TrimRight(string(rom[0x0134:0x0144]), "\x00"),
		CartType:    cartType,
		CartTypeStr: cartTypeString(cartType),
	}, nil
}

// cartTypeString names the declared mapper for diagnostics. Every value
// maps to the same runtime behavior: NewCartridge always returns the
// no-mapper base case (spec §1 Non-goals).
func cartTypeString(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01, 0x02, 0x03:
		return "MBC1 (unsupported, run as ROM-only)"
	case 0x05, 0x06:
		return "MBC2 (unsupported, run as ROM-only)"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3 (unsupported, run as ROM-only)"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5 (unsupported, run as ROM-only)"
	default:
		return "unknown (run as ROM-only)"
	}
}
