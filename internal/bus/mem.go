package bus

import "fmt"

// RAM is a plain read/write memory device.
// Addresses are taken relative to base and wrapped to the RAM size,
// so a RAM can sit behind a mirrored region or at any offset.
type RAM struct {
	base uint16
	mem  []uint8
}

// NewRAM returns zeroed RAM of size bytes based at base. size must be a
// power of two up to 64KB.
func NewRAM(base uint16, size int) (*RAM, error) {
	if size <= 0 || size&(size-1) != 0 || size > addrSpaceSize {
		return nil, fmt.Errorf("%w: RAM size %d is not a power of two up to 64KB", ErrRegion, size)
	}
	return &RAM{base: base, mem: make([]uint8, size)}, nil
}

func (r *RAM) index(addr uint16) int {
	return int(addr-r.base) & (len(r.mem) - 1)
}

func (r *RAM) Read8(addr uint16) uint8 {
	return r.mem[r.index(addr)]
}

func (r *RAM) Write8(addr uint16, data uint8) {
	r.mem[r.index(addr)] = data
}

// Memory is a flat 64KB RAM. On its own it makes a complete bus,
// which is what test programs and raw binaries want.
type Memory struct {
	RAM
}

func NewMemory() *Memory {
	return &Memory{RAM: RAM{mem: make([]uint8, addrSpaceSize)}}
}

// NewFlat returns a bus backed by a single flat 64KB memory.
func NewFlat() (*Bus, *Memory) {
	m := NewMemory()
	b, err := New(Region{Name: "RAM", Start: 0x0000, End: 0xffff, Handler: m})
	if err != nil {
		// a single full-range region always validates
		panic(err)
	}
	return b, m
}
