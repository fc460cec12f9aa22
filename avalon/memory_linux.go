//go:build linux

package avalon

import (
	"fmt"

	"github.com/u-root/u-root/pkg/memio"
)

// DevMem is the physical memory device opened by OpenMemory.
const DevMem = "/dev/mem"

// Memory accesses the core through a mapping of physical memory at the given
// base address. The device stays open until Close.
type Memory struct {
	Base int64
	mem  *memio.MMap
}

// OpenMemory opens path (usually DevMem) for register access at base. It
// needs enough privilege to map physical memory.
func OpenMemory(path string, base int64) (*Memory, error) {
	mem, err := memio.NewMMap(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	return &Memory{Base: base, mem: mem}, nil
}

func (m *Memory) ReadRegister32(offset uint32) (uint32, error) {
	var v memio.Uint32
	if err := m.mem.ReadAt(m.Base+int64(offset), &v); err != nil {
		return 0, fmt.Errorf("read %#x: %w", m.Base+int64(offset), err)
	}
	return uint32(v), nil
}

func (m *Memory) WriteRegister32(offset uint32, value uint32) error {
	v := memio.Uint32(value)
	if err := m.mem.WriteAt(m.Base+int64(offset), &v); err != nil {
		return fmt.Errorf("write %#x: %w", m.Base+int64(offset), err)
	}
	return nil
}

func (m *Memory) Close() error {
	return m.mem.Close()
}
