package telemetry_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/drivers/ds3231"
	"github.com/ajanata/drivers/telemetry"
)

// fakeConn records commands sent to redis.
type fakeConn struct {
	cmds   [][]interface{}
	closed bool
}

func (f *fakeConn) Close() error { f.closed = true; return nil }
func (f *fakeConn) Err() error   { return nil }
func (f *fakeConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	f.cmds = append(f.cmds, append([]interface{}{cmd}, args...))
	return "OK", nil
}
func (f *fakeConn) Send(cmd string, args ...interface{}) error { return nil }
func (f *fakeConn) Flush() error                               { return nil }
func (f *fakeConn) Receive() (interface{}, error)              { return nil, nil }

func TestRedisPublisher(t *testing.T) {
	c := qt.New(t)
	conn := &fakeConn{}
	p := telemetry.NewRedisPublisher(conn, "rtc")
	err := p.Publish(context.Background(), telemetry.Reading{
		Time:    epoch,
		Clock:   ds3231.Time{Second: 30, Minute: 46, Hour: 7, Day: 14, Month: 2, Year: 25},
		Celsius: -24.75,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(conn.cmds, qt.DeepEquals, [][]interface{}{{
		"HMSET", "rtc",
		"time", "2025-02-14T07:46:30Z",
		"clock", "07:46:30 14/02/2025",
		"celsius", float32(-24.75),
	}})

	c.Assert(p.Close(), qt.IsNil)
	c.Assert(conn.closed, qt.Equals, true)
}

func TestRedisPublisherCancelled(t *testing.T) {
	c := qt.New(t)
	conn := &fakeConn{}
	p := telemetry.NewRedisPublisher(conn, "rtc")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Assert(p.Publish(ctx, telemetry.Reading{}), qt.Equals, context.Canceled)
	c.Assert(conn.cmds, qt.HasLen, 0)
}
