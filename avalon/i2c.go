package avalon

import (
	"errors"

	"github.com/ajanata/drivers"
)

var _ drivers.I2C = (*Controller)(nil)

// ReadRegister reads len(buf) bytes starting at register r. Multi-byte reads
// use a burst when Config.Burst is set and one transaction per byte otherwise.
func (c *Controller) ReadRegister(addr uint8, r uint8, buf []byte) error {
	switch {
	case len(buf) == 0:
		return nil
	case len(buf) == 1:
		b, t := c.readByte(addr, r)
		buf[0] = b
		return c.check(t)
	case c.cfg.Burst:
		return c.check(c.burstRead(addr, r, buf))
	}
	var first error
	for i := range buf {
		b, t := c.readByte(addr, r+uint8(i))
		buf[i] = b
		if t.err != nil {
			return t.err
		}
		if err := c.check(t); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteRegister writes buf to consecutive registers starting at r, using a
// burst when Config.Burst is set.
func (c *Controller) WriteRegister(addr uint8, r uint8, buf []byte) error {
	switch {
	case len(buf) == 0:
		return nil
	case len(buf) == 1:
		return c.check(c.writeByte(addr, r, buf[0]))
	case c.cfg.Burst:
		return c.check(c.burstWrite(addr, r, buf))
	}
	var first error
	for i, b := range buf {
		t := c.writeByte(addr, r+uint8(i), b)
		if t.err != nil {
			return t.err
		}
		if err := c.check(t); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Tx treats w[0] as the register pointer: the rest of w is written from
// there, then r is read from the register that follows the written bytes.
// The core cannot address a device without a register, so w must not be
// empty.
func (c *Controller) Tx(addr uint16, w, r []byte) error {
	if len(w) == 0 {
		return errors.New("avalon: Tx needs a register pointer")
	}
	reg := w[0]
	if err := c.WriteRegister(uint8(addr), reg, w[1:]); err != nil {
		return err
	}
	return c.ReadRegister(uint8(addr), reg+uint8(len(w)-1), r)
}

func (c *Controller) check(t *txn) error {
	if t.err != nil {
		return t.err
	}
	if c.cfg.Strict && t.ack != nil {
		return t.ack
	}
	return nil
}
