package avalon

import (
	"fmt"
	"time"

	"github.com/jpillora/backoff"
)

// wait polls the status register until want or ACK_ERROR is set. ACK_ERROR
// wins when both are set; it is cleared with a single write before
// returning. Without a configured bound the loop never gives up.
func (c *Controller) wait(op string, want uint32) (Result, uint32, error) {
	var (
		polls    int
		deadline time.Time
		pace     *backoff.Backoff
	)
	if c.cfg.Timeout > 0 {
		deadline = time.Now().Add(c.cfg.Timeout)
	}
	if c.cfg.PollInterval > 0 {
		pace = &backoff.Backoff{
			Min:    c.cfg.PollInterval,
			Max:    c.cfg.MaxPollInterval,
			Factor: 2,
		}
	}

	for {
		status, err := c.regs.ReadRegister32(Status)
		if err != nil {
			return Completed, 0, err
		}
		polls++
		c.trace(Event{Kind: EventPoll, Op: op, Want: want, Status: status})

		if status&StatusAckError != 0 {
			c.trace(Event{Kind: EventAckError, Op: op, Want: want, Status: status})
			if err := c.regs.WriteRegister32(Status, StatusAckError); err != nil {
				return AckErrorRecovered, status, err
			}
			return AckErrorRecovered, status, nil
		}
		if status&want != 0 {
			c.trace(Event{Kind: EventAsserted, Op: op, Want: want, Status: status})
			return Completed, status, nil
		}

		if c.cfg.MaxPolls > 0 && polls >= c.cfg.MaxPolls {
			return Completed, status, fmt.Errorf("%w: %s during %s after %d polls (status=0x%02X)",
				ErrTimeout, statusName(want), op, polls, status)
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return Completed, status, fmt.Errorf("%w: %s during %s after %v (status=0x%02X)",
				ErrTimeout, statusName(want), op, c.cfg.Timeout, status)
		}
		if pace != nil {
			time.Sleep(pace.Duration())
		}
	}
}
