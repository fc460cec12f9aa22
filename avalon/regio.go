package avalon

// Registers gives access to the four 32-bit registers of the I2C core.
// Offsets are relative to the core's base address.
type Registers interface {
	ReadRegister32(offset uint32) (uint32, error)
	WriteRegister32(offset uint32, value uint32) error
}

// RegisterFuncs adapts a pair of accessor functions to Registers. A nil Read
// reads zero and a nil Write discards the value.
type RegisterFuncs struct {
	Read  func(offset uint32) (uint32, error)
	Write func(offset uint32, value uint32) error
}

func (f RegisterFuncs) ReadRegister32(offset uint32) (uint32, error) {
	if f.Read == nil {
		return 0, nil
	}
	return f.Read(offset)
}

func (f RegisterFuncs) WriteRegister32(offset uint32, value uint32) error {
	if f.Write == nil {
		return nil
	}
	return f.Write(offset, value)
}
