package avalon

const DefaultBase = 0x81000 // base address of the I2C core in the soft-core system

// Register offsets from the base address.
const (
	Control = 0x00 // CONTINUE (bit3), RW (bit2), STOP (bit1), ENABLE (bit0)
	Write   = 0x04 // [14:8]=slave address, [7:0]=data
	Status  = 0x08 // READY (bit3), ACKERROR (bit2), BUSY (bit1), DONE (bit0)
	Read    = 0x0C // [7:0]=data out
)

// Control bits.
const (
	ControlEnable   = 0x01
	ControlStop     = 0x02
	ControlRead     = 0x04
	ControlContinue = 0x08
)

// Status bits. StatusAckError is write-1-to-clear.
const (
	StatusDone     = 0x01
	StatusBusy     = 0x02
	StatusAckError = 0x04
	StatusReady    = 0x08
)
