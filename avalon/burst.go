package avalon

// BurstWrite writes data to consecutive registers starting at start in a
// single bus transaction. Every byte but the last is sent with CONTINUE so
// the device is addressed only once.
func (c *Controller) BurstWrite(addr, start uint8, data []byte) (Result, error) {
	if !c.cfg.Burst {
		return Completed, ErrNoBurst
	}
	t := c.burstWrite(addr, start, data)
	return t.res, t.err
}

func (c *Controller) burstWrite(addr, start uint8, data []byte) *txn {
	t := c.begin(Event{Op: "burst-write", Addr: addr, Reg: start, Len: len(data)})
	t.pointer()
	if len(data) == 0 {
		t.write(Control, ControlEnable|ControlStop)
		t.wait(StatusDone)
	}
	for i, b := range data {
		last := i == len(data)-1
		t.write(Write, word(addr, b))
		if last {
			t.write(Control, ControlEnable|ControlStop)
			t.wait(StatusDone)
		} else {
			t.write(Control, ControlEnable|ControlContinue)
			t.wait(StatusReady)
		}
	}
	t.end()
	return t
}

// BurstRead fills buf from consecutive registers starting at start. The
// register pointer is set once; an interrupted burst has to be restarted
// from the pointer phase.
func (c *Controller) BurstRead(addr, start uint8, buf []byte) (Result, error) {
	if !c.cfg.Burst {
		return Completed, ErrNoBurst
	}
	t := c.burstRead(addr, start, buf)
	return t.res, t.err
}

func (c *Controller) burstRead(addr, start uint8, buf []byte) *txn {
	t := c.begin(Event{Op: "burst-read", Addr: addr, Reg: start, Len: len(buf)})
	t.pointer()
	t.write(Control, ControlEnable|ControlStop)
	t.wait(StatusDone)
	for i := range buf {
		ctrl := uint32(ControlEnable | ControlRead | ControlContinue)
		if i == len(buf)-1 {
			ctrl = ControlEnable | ControlRead | ControlStop
		}
		t.write(Control, ctrl)
		t.wait(StatusDone)
		buf[i] = uint8(t.read(Read))
		if t.err != nil {
			break
		}
		c.trace(Event{Kind: EventData, Op: t.op, Addr: addr, Reg: start, Index: i, Data: buf[i]})
	}
	t.end()
	return t
}
