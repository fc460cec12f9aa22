// Package drivers holds the interfaces shared between bus controllers and the
// chip drivers that sit on top of them.
package drivers

// I2C represents an I2C bus. It is implemented by the avalon.Controller type.
type I2C interface {
	ReadRegister(addr uint8, r uint8, buf []byte) error
	WriteRegister(addr uint8, r uint8, buf []byte) error
	Tx(addr uint16, w, r []byte) error
}
