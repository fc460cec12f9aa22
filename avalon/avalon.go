// Package avalon implements a polled driver for the Avalon I2C master core as
// instantiated in Nios II soft-core systems. The core is programmed through
// four registers (control, write, status and read) and every transaction phase
// is completed by busy-polling the status register.
//
// Acknowledge errors are cleared as soon as they are seen and the transaction
// carries on, so by default a missing device reads back whatever the read
// register last held. Every primitive reports a Result so callers can tell the
// two paths apart, and Config.Strict turns them into errors on the drivers.I2C
// methods.
//
// Register map: Intel Embedded Peripherals IP User Guide, "Intel FPGA Avalon
// I2C (Master) Core".
package avalon

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAck is matched by every *AckError.
	ErrAck = errors.New("avalon: acknowledge error")
	// ErrTimeout is returned when a configured poll bound runs out.
	ErrTimeout = errors.New("avalon: timed out waiting for status")
	// ErrNoBurst is returned by the burst primitives unless Config.Burst is set.
	ErrNoBurst = errors.New("avalon: burst transfers not enabled")
)

// Result reports how a wait or a whole transaction ended.
type Result uint8

const (
	// Completed means every awaited status bit was asserted.
	Completed Result = iota
	// AckErrorRecovered means at least one wait saw ACK_ERROR and cleared it.
	AckErrorRecovered
)

func (r Result) String() string {
	switch r {
	case Completed:
		return "completed"
	case AckErrorRecovered:
		return "ack error recovered"
	}
	return fmt.Sprintf("Result(%d)", uint8(r))
}

// AckError describes the first phase of a transaction that was not
// acknowledged.
type AckError struct {
	Op     string
	Addr   uint8
	Reg    uint8
	Status uint32
}

func (e *AckError) Error() string {
	return fmt.Sprintf("avalon: %s of register 0x%02X on device 0x%02X not acknowledged (status=0x%02X)",
		e.Op, e.Reg, e.Addr, e.Status)
}

func (e *AckError) Is(target error) bool { return target == ErrAck }

// Config controls framing and polling. The zero value reproduces the plain
// hardware driver: single-byte framing, unbounded busy-waits, acknowledge
// errors swallowed.
type Config struct {
	// Burst selects the burst-capable framing: WriteReg sends the data byte
	// with CONTINUE and stops separately, and BurstRead/BurstWrite are allowed.
	Burst bool

	// Strict makes ReadRegister, WriteRegister and Tx return an *AckError
	// when any phase was not acknowledged.
	Strict bool

	// MaxPolls bounds the number of status reads per wait. Zero is unbounded.
	MaxPolls int

	// Timeout bounds the time spent in a single wait. Zero is unbounded.
	Timeout time.Duration

	// PollInterval, when set, sleeps between status reads, backing off up to
	// MaxPollInterval. Zero busy-waits.
	PollInterval    time.Duration
	MaxPollInterval time.Duration

	// Tracer, if not nil, is called for every step of every transaction.
	Tracer func(Event)
}

// Controller drives one Avalon I2C core. It is not safe for concurrent use.
type Controller struct {
	regs Registers
	cfg  Config
}

// New creates a controller on the given register backend with the default
// configuration.
func New(regs Registers) *Controller {
	return &Controller{
		regs: regs,
	}
}

func (c *Controller) Configure(cfg Config) {
	if cfg.PollInterval > 0 && cfg.MaxPollInterval < cfg.PollInterval {
		cfg.MaxPollInterval = cfg.PollInterval
	}
	c.cfg = cfg
}

// Config returns the active configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

func (c *Controller) trace(e Event) {
	if c.cfg.Tracer != nil {
		c.cfg.Tracer(e)
	}
}

// word builds the value for the write register: 7-bit slave address in bits
// 14..8 and the byte in bits 7..0.
func word(addr, b uint8) uint32 {
	return uint32(addr&0x7F)<<8 | uint32(b)
}

// txn sequences the register accesses of one transaction. After the first
// register access error or timeout every later step is skipped; acknowledge
// errors are only recorded.
type txn struct {
	c    *Controller
	op   string
	addr uint8
	reg  uint8
	res  Result
	ack  *AckError
	err  error
}

func (c *Controller) begin(e Event) *txn {
	e.Kind = EventBegin
	c.trace(e)
	return &txn{c: c, op: e.Op, addr: e.Addr, reg: e.Reg}
}

func (t *txn) end() {
	t.c.trace(Event{Kind: EventEnd, Op: t.op, Addr: t.addr, Reg: t.reg})
}

func (t *txn) write(offset, v uint32) {
	if t.err != nil {
		return
	}
	t.err = t.c.regs.WriteRegister32(offset, v)
}

func (t *txn) read(offset uint32) uint32 {
	if t.err != nil {
		return 0
	}
	v, err := t.c.regs.ReadRegister32(offset)
	t.err = err
	return v
}

func (t *txn) wait(want uint32) {
	if t.err != nil {
		return
	}
	res, status, err := t.c.wait(t.op, want)
	if err != nil {
		t.err = err
		return
	}
	if res == AckErrorRecovered {
		t.res = AckErrorRecovered
		if t.ack == nil {
			t.ack = &AckError{Op: t.op, Addr: t.addr, Reg: t.reg, Status: status}
		}
	}
}

// pointer addresses the device and loads its register pointer, leaving the
// bus open.
func (t *txn) pointer() {
	t.write(Control, 0)
	t.write(Write, word(t.addr, t.reg))
	t.write(Control, ControlEnable)
	t.wait(StatusReady)
}

// WriteReg writes one byte to register reg of the device at addr.
func (c *Controller) WriteReg(addr, reg, data uint8) (Result, error) {
	t := c.writeByte(addr, reg, data)
	return t.res, t.err
}

func (c *Controller) writeByte(addr, reg, data uint8) *txn {
	t := c.begin(Event{Op: "write", Addr: addr, Reg: reg, Data: data})
	t.pointer()
	t.write(Write, word(addr, data))
	if c.cfg.Burst {
		t.write(Control, ControlEnable|ControlContinue)
		t.wait(StatusReady)
	}
	t.write(Control, ControlEnable|ControlStop)
	t.wait(StatusDone)
	t.end()
	return t
}

// ReadReg reads one byte from register reg of the device at addr. The byte
// is whatever the read register holds once the transaction ends, which is
// stale if the device did not acknowledge.
func (c *Controller) ReadReg(addr, reg uint8) (uint8, Result, error) {
	b, t := c.readByte(addr, reg)
	return b, t.res, t.err
}

func (c *Controller) readByte(addr, reg uint8) (uint8, *txn) {
	t := c.begin(Event{Op: "read", Addr: addr, Reg: reg})
	t.pointer()

	// end the pointer write
	t.write(Control, ControlEnable|ControlStop)
	t.wait(StatusDone)

	t.write(Control, ControlEnable|ControlRead)
	t.wait(StatusDone)
	b := uint8(t.read(Read))
	if t.err == nil {
		c.trace(Event{Kind: EventData, Op: t.op, Addr: addr, Reg: reg, Data: b})
	}
	t.end()
	return b, t
}
