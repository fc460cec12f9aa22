// Package sim models an Avalon I2C core with a DS3231-style device on its bus,
// entirely in memory. A *Controller satisfies avalon.Registers, so a real
// avalon.Controller can be run against it in tests and on hosts without the
// hardware.
//
// Every phase completes as soon as it is started. Slow or misbehaving
// hardware is modelled with StallPolls, Stuck and NackNext.
package sim

import (
	"sync"

	"github.com/ajanata/drivers/avalon"
)

const DefaultAddress = 0x68

// Controller is the simulated core plus the register file of the device
// behind it. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	addr uint8
	mem  [256]byte

	word    uint32 // last value written to the write register
	pending bool   // word has not been sent yet
	open    bool   // a write transfer is in progress
	pointer uint8  // device register pointer
	read    uint32
	status  uint32

	nack   int
	stall  int
	stuck  bool
	onRead func(reg uint8)

	statusReads int
	ackClears   int
	controls    []uint32
}

var _ avalon.Registers = (*Controller)(nil)

// New creates an idle core with a device answering at addr.
func New(addr uint8) *Controller {
	return &Controller{
		addr:   addr,
		status: avalon.StatusReady,
	}
}

func (s *Controller) ReadRegister32(offset uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch offset {
	case avalon.Status:
		s.statusReads++
		if s.stuck {
			return avalon.StatusBusy, nil
		}
		if s.stall > 0 {
			s.stall--
			return avalon.StatusBusy, nil
		}
		return s.status, nil
	case avalon.Read:
		return s.read, nil
	case avalon.Write:
		return s.word, nil
	case avalon.Control:
		if len(s.controls) == 0 {
			return 0, nil
		}
		return s.controls[len(s.controls)-1], nil
	}
	return 0, nil
}

func (s *Controller) WriteRegister32(offset uint32, v uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch offset {
	case avalon.Status:
		if v&avalon.StatusAckError != 0 && s.status&avalon.StatusAckError != 0 {
			s.ackClears++
		}
		s.status &^= v & avalon.StatusAckError
	case avalon.Write:
		s.word = v
		s.pending = true
	case avalon.Control:
		s.controls = append(s.controls, v)
		s.control(v)
	}
	return nil
}

// control runs one phase. It is called with s.mu held.
func (s *Controller) control(v uint32) {
	if v&avalon.ControlEnable == 0 {
		s.open = false
		return
	}
	stop := v&avalon.ControlStop != 0
	switch {
	case v&avalon.ControlRead != 0:
		if !s.ack() {
			return
		}
		if hook := s.onRead; hook != nil {
			reg := s.pointer
			s.mu.Unlock()
			hook(reg)
			s.mu.Lock()
		}
		s.read = uint32(s.mem[s.pointer])
		s.pointer++
		s.open = false
		s.status = avalon.StatusReady | avalon.StatusDone
		return
	case !s.open:
		// start condition: the latched word carries the register pointer
		if !s.ack() {
			return
		}
		s.pointer = uint8(s.word)
		s.pending = false
		s.open = true
	case s.pending:
		s.mem[s.pointer] = uint8(s.word)
		s.pointer++
		s.pending = false
	}
	if stop {
		s.open = false
		s.status = avalon.StatusReady | avalon.StatusDone
		return
	}
	s.status = avalon.StatusReady
}

// ack reports whether the device acknowledges the address in the latched
// word. A refused transfer leaves the core idle with ACK_ERROR raised.
func (s *Controller) ack() bool {
	if s.nack > 0 || uint8(s.word>>8)&0x7F != s.addr {
		if s.nack > 0 {
			s.nack--
		}
		s.open = false
		s.pending = false
		s.status = avalon.StatusAckError | avalon.StatusReady | avalon.StatusDone
		return false
	}
	return true
}

// Peek returns the device register reg.
func (s *Controller) Peek(reg uint8) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem[reg]
}

// Poke sets the device register reg.
func (s *Controller) Poke(reg uint8, b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[reg] = b
}

// NackNext makes the device refuse its next n address phases.
func (s *Controller) NackNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nack = n
}

// StallPolls makes the next n status reads report BUSY only.
func (s *Controller) StallPolls(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stall = n
}

// Stuck makes every status read report BUSY while on is true.
func (s *Controller) Stuck(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stuck = on
}

// OnRead sets a hook that runs just before a device register is read. The
// hook may call Poke.
func (s *Controller) OnRead(f func(reg uint8)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRead = f
}

// StatusReads returns how many times the status register has been read.
func (s *Controller) StatusReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusReads
}

// AckClears returns how many raised ACK_ERROR flags have been cleared.
func (s *Controller) AckClears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ackClears
}

// Controls returns every value written to the control register so far.
func (s *Controller) Controls() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.controls...)
}

// Reset forgets the recorded control writes and counters.
func (s *Controller) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls = nil
	s.statusReads = 0
	s.ackClears = 0
}
