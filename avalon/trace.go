package avalon

import "fmt"

// EventKind identifies what a trace Event reports.
type EventKind uint8

const (
	EventBegin    EventKind = iota // a transaction started
	EventPoll                      // one status read inside a wait
	EventAsserted                  // the awaited status bit was seen
	EventAckError                  // ACK_ERROR was seen and cleared
	EventData                      // a data byte was read back
	EventEnd                       // a transaction finished
)

// Event is passed to Config.Tracer for every step of a transaction. Its
// String form is empty for the end of a single-byte read.
type Event struct {
	Kind   EventKind
	Op     string // "write", "read", "burst-write" or "burst-read"
	Addr   uint8
	Reg    uint8
	Data   uint8  // data byte for write begin and EventData
	Len    int    // burst length
	Index  int    // byte index within a burst for EventData
	Want   uint32 // awaited status bit for EventPoll and EventAsserted
	Status uint32
}

func (e Event) String() string {
	switch e.Kind {
	case EventBegin:
		switch e.Op {
		case "write":
			return fmt.Sprintf("-- WRITE reg=0x%02X data=0x%02X", e.Reg, e.Data)
		case "read":
			return fmt.Sprintf("-- READ reg=0x%02X", e.Reg)
		case "burst-write":
			return fmt.Sprintf("-- BURST WRITE start=0x%02X len=%d", e.Reg, e.Len)
		case "burst-read":
			return fmt.Sprintf("-- BURST READ start=0x%02X len=%d", e.Reg, e.Len)
		}
	case EventPoll:
		return fmt.Sprintf("waiting %s or NACK, status=0x%02X", statusName(e.Want), e.Status)
	case EventAsserted:
		return fmt.Sprintf("   %s asserted (status=0x%02X)", statusName(e.Want), e.Status)
	case EventAckError:
		return fmt.Sprintf("   NACK detected (status=0x%02X)", e.Status)
	case EventData:
		if e.Op == "burst-read" {
			return fmt.Sprintf(" read[%d]=0x%02X", e.Index, e.Data)
		}
		return fmt.Sprintf("read data=0x%02X", e.Data)
	case EventEnd:
		switch e.Op {
		case "write":
			return fmt.Sprintf("-- WRITE complete reg=0x%02X", e.Reg)
		case "burst-write":
			return "-- BURST WRITE complete"
		case "burst-read":
			return "-- BURST READ complete"
		}
		// a single read ends with its data line
		return ""
	}
	return fmt.Sprintf("event(%d)", e.Kind)
}

func statusName(bit uint32) string {
	switch bit {
	case StatusReady:
		return "READY"
	case StatusDone:
		return "DONE"
	}
	return fmt.Sprintf("0x%02X", bit)
}
