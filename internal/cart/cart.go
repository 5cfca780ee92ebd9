package cart

import "github.com/dmgcore/gbcore/internal/bus"

// NewCartridge constructs an MBC1 cartridge from a raw ROM image,
// sizing external RAM from the header when present. MBC type is fixed
// to MBC1 for this core's stated scope; the header's CartType byte is
// not consulted for bank-controller selection.
func NewCartridge(b *bus.Bus, rom []byte) *MBC1 {
	ramSize := 0
	if h, err := ParseHeader(rom); err == nil {
		ramSize = h.RAMSizeBytes
	}
	var ram []byte
	if ramSize > 0 {
		ram = make([]byte, ramSize)
	}
	return NewMBC1(b, rom, ram)
}
