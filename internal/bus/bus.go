package bus

import (
	"errors"
	"fmt"
	"sort"
)

// Detailed Memory Map of the NES CPU bus:
//
// $0000-$07FF: Internal RAM
//
//	This is the primary working RAM of the NES.
//	It is 2KB in size and can store variables, stack, and other temporary data.
//
// $0800-$1FFF: Mirrors of $0000-$07FF
//
//	Any write to these addresses will affect the corresponding address in the range $0000-$07FF.
//
// $2000-$2007: PPU Registers, mirrored every 8 bytes up to $3FFF
//
// $4000-$4017: APU and I/O Registers
//
// $4018-$401F: APU and I/O functionality that is normally disabled
//
// $4020-$FFFF: Cartridge Space (PRG-RAM at $6000-$7FFF, PRG-ROM at $8000-$FFFF)
//
// The Bus itself knows nothing about this layout. Every device is registered
// as a Region and the layout is validated once, in New.
const addrSpaceSize = 0x10000

var (
	ErrOverlap  = errors.New("bus: regions overlap")
	ErrUnmapped = errors.New("bus: address not mapped")
	ErrRegion   = errors.New("bus: invalid region")
)

// ReadWriter is implemented by every device attached to the bus.
type ReadWriter interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, data uint8)
}

// Peeker is an optional device interface for reads without side effects.
// Devices whose reads change state (status latches, FIFOs) should implement it.
type Peeker interface {
	Peek8(addr uint16) uint8
}

// Region binds a device to an inclusive address range.
//
// Mask resolves mirroring: the device receives Start + ((addr - Start) & Mask).
// A 2KB RAM mirrored over $0000-$1FFF uses Mask 0x07FF. Zero means no mirroring.
type Region struct {
	Name    string
	Start   uint16
	End     uint16
	Mask    uint16
	Handler ReadWriter
}

func (r Region) canonical(addr uint16) uint16 {
	if r.Mask == 0 {
		return addr
	}
	return r.Start + (addr-r.Start)&r.Mask
}

func (r Region) String() string {
	if r.Mask == 0 {
		return fmt.Sprintf("$%04X-$%04X %s", r.Start, r.End, r.Name)
	}
	return fmt.Sprintf("$%04X-$%04X %s (mirror mask $%04X)", r.Start, r.End, r.Name, r.Mask)
}

// Bus routes CPU reads and writes to the device owning each address.
// It is not safe for concurrent use.
type Bus struct {
	regions []Region
	owner   [addrSpaceSize]uint8 // address -> index in regions
}

// New builds a bus from regions that must cover $0000-$FFFF exactly once.
func New(regions ...Region) (*Bus, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: $0000-$FFFF", ErrUnmapped)
	}
	if len(regions) > 0xff {
		return nil, fmt.Errorf("%w: too many regions (%d)", ErrRegion, len(regions))
	}

	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	b := &Bus{regions: sorted}
	next := uint32(0)
	for i, r := range sorted {
		if r.Handler == nil {
			return nil, fmt.Errorf("%w: %q has no handler", ErrRegion, r.Name)
		}
		if r.End < r.Start {
			return nil, fmt.Errorf("%w: %q ends before it starts", ErrRegion, r.Name)
		}
		if uint32(r.Start) < next {
			return nil, fmt.Errorf("%w: %q at $%04X and %q", ErrOverlap, r.Name, r.Start, sorted[i-1].Name)
		}
		if uint32(r.Start) > next {
			return nil, fmt.Errorf("%w: $%04X-$%04X", ErrUnmapped, next, r.Start-1)
		}
		for addr := uint32(r.Start); addr <= uint32(r.End); addr++ {
			b.owner[addr] = uint8(i)
		}
		next = uint32(r.End) + 1
	}
	if next != addrSpaceSize {
		return nil, fmt.Errorf("%w: $%04X-$FFFF", ErrUnmapped, next)
	}

	return b, nil
}

func (b *Bus) region(addr uint16) *Region {
	return &b.regions[b.owner[addr]]
}

func (b *Bus) Read8(addr uint16) uint8 {
	r := b.region(addr)
	return r.Handler.Read8(r.canonical(addr))
}

func (b *Bus) Write8(addr uint16, data uint8) {
	r := b.region(addr)
	r.Handler.Write8(r.canonical(addr), data)
}

// Peek8 reads addr without triggering device side effects when the owning
// device supports it. Devices without a Peeker are read normally.
func (b *Bus) Peek8(addr uint16) uint8 {
	r := b.region(addr)
	if p, ok := r.Handler.(Peeker); ok {
		return p.Peek8(r.canonical(addr))
	}
	return r.Handler.Read8(r.canonical(addr))
}

// Regions returns the registered regions ordered by start address.
func (b *Bus) Regions() []Region {
	out := make([]Region, len(b.regions))
	copy(out, b.regions)
	return out
}

// RegionOf returns the region owning addr.
func (b *Bus) RegionOf(addr uint16) Region {
	return *b.region(addr)
}

// Load writes data starting at addr through the bus, wrapping at $FFFF.
func Load(w ReadWriter, addr uint16, data []byte) {
	for i, v := range data {
		w.Write8(addr+uint16(i), v)
	}
}
