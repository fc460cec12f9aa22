package ds3231

const Address = 0x68 // I2C address for DS3231

// Registers
const (
	Seconds  = 0x00
	Minutes  = 0x01
	Hours    = 0x02
	Weekday  = 0x03
	Day      = 0x04
	Month    = 0x05
	Year     = 0x06
	Control  = 0x0E
	Status   = 0x0F
	TempHigh = 0x11 // signed integer part in °C
	TempLow  = 0x12 // bits 7:6 hold quarter degrees
)

// Status register bits
const (
	OSF = 7 // oscillator stop flag
)
