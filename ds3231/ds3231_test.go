package ds3231_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/drivers/avalon"
	"github.com/ajanata/drivers/avalon/sim"
	"github.com/ajanata/drivers/ds3231"
)

func TestBCDRoundTrip(t *testing.T) {
	c := qt.New(t)
	for v := 0; v <= 99; v++ {
		b := ds3231.EncodeBCD(uint8(v))
		c.Assert(b>>4, qt.Equals, uint8(v/10), qt.Commentf("v=%d", v))
		c.Assert(b&0x0F, qt.Equals, uint8(v%10), qt.Commentf("v=%d", v))
		c.Assert(ds3231.DecodeBCD(b), qt.Equals, uint8(v), qt.Commentf("v=%d", v))
	}
}

func TestBCDUnchecked(t *testing.T) {
	c := qt.New(t)
	c.Assert(ds3231.DecodeBCD(0x6A), qt.Equals, uint8(70))
	c.Assert(ds3231.DecodeBCD(0xAA), qt.Equals, uint8(110))
	c.Assert(ds3231.DecodeBCD(0x59), qt.Equals, uint8(59))
	c.Assert(ds3231.DecodeBCD(0x99), qt.Equals, uint8(99))

	c.Assert(ds3231.EncodeBCD(100), qt.Equals, uint8(0xA0))
	c.Assert(ds3231.EncodeBCD(255), qt.Equals, uint8(0x95))
}

func TestDecodeTemperature(t *testing.T) {
	tests := []struct {
		hi, lo uint8
		want   float32
	}{
		{0x19, 0x40, 25.25},
		{0xE7, 0x00, -25},
		{0xE7, 0x40, -24.75},
		{0x00, 0x00, 0},
		{0x7F, 0xC0, 127.75},
		{0x80, 0x00, -128},
		{0xFF, 0xC0, -0.25},
		{0x19, 0x3F, 25}, // low six bits are unused
		{0x55, 0x80, 85.5},
		{0xD8, 0x00, -40},
	}
	c := qt.New(t)
	for _, test := range tests {
		c.Assert(ds3231.DecodeTemperature(test.hi, test.lo), qt.Equals, test.want,
			qt.Commentf("hi=0x%02X lo=0x%02X", test.hi, test.lo))
	}
}

func newDevice(cfg avalon.Config) (*ds3231.Device, *sim.Controller) {
	bus := sim.New(sim.DefaultAddress)
	ctl := avalon.New(bus)
	ctl.Configure(cfg)
	d := ds3231.New(ctl)
	return &d, bus
}

var framings = []struct {
	name string
	cfg  avalon.Config
}{
	{"plain", avalon.Config{}},
	{"burst", avalon.Config{Burst: true}},
}

func TestSetGetTime(t *testing.T) {
	c := qt.New(t)
	for _, f := range framings {
		c.Run(f.name, func(c *qt.C) {
			d, bus := newDevice(f.cfg)
			want := ds3231.Time{Second: 30, Minute: 46, Hour: 7, Weekday: 3, Day: 14, Month: 2, Year: 25}
			c.Assert(d.SetTime(want), qt.IsNil)

			for reg, b := range []byte{0x30, 0x46, 0x07, 0x03, 0x14, 0x02, 0x25} {
				c.Assert(bus.Peek(uint8(reg)), qt.Equals, b, qt.Commentf("register %d", reg))
			}

			got, err := d.GetTime()
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, want)
			c.Assert(got.String(), qt.Equals, "07:46:30 14/02/2025")
		})
	}
}

func TestTimeBoundaries(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(avalon.Config{})
	for _, want := range []ds3231.Time{
		{Second: 59, Minute: 59, Hour: 23, Weekday: 7, Day: 31, Month: 12, Year: 99},
		{Second: 0, Minute: 0, Hour: 0, Weekday: 1, Day: 1, Month: 1, Year: 0},
	} {
		c.Assert(d.SetTime(want), qt.IsNil)
		got, err := d.GetTime()
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
	c.Assert(bus.Peek(ds3231.Year), qt.Equals, byte(0x00))
}

func TestOutOfRangeFieldsAreNotChecked(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(avalon.Config{})
	c.Assert(d.SetTime(ds3231.Time{Second: 100}), qt.IsNil)
	c.Assert(bus.Peek(ds3231.Seconds), qt.Equals, byte(0xA0))

	bus.Poke(ds3231.Seconds, 0x6A)
	got, err := d.GetTime()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Second, qt.Equals, uint8(70))
}

func TestGetTimeIsNotAtomic(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(avalon.Config{})
	c.Assert(d.SetTime(ds3231.Time{Second: 59, Minute: 59, Hour: 23, Weekday: 2, Day: 31, Month: 12, Year: 24}), qt.IsNil)

	// midnight passes once the hour has been read
	bus.OnRead(func(reg uint8) {
		if reg == ds3231.Weekday {
			for r, b := range []byte{0x00, 0x00, 0x00, 0x03, 0x01, 0x01, 0x25} {
				bus.Poke(uint8(r), b)
			}
		}
	})
	got, err := d.GetTime()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, ds3231.Time{Second: 59, Minute: 59, Hour: 23, Weekday: 3, Day: 1, Month: 1, Year: 25})
}

func TestTemperature(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(avalon.Config{})
	bus.Poke(ds3231.TempHigh, 0x19)
	bus.Poke(ds3231.TempLow, 0x40)
	temp, err := d.Temperature()
	c.Assert(err, qt.IsNil)
	c.Assert(temp, qt.Equals, float32(25.25))

	bus.Poke(ds3231.TempHigh, 0xE7)
	bus.Poke(ds3231.TempLow, 0x00)
	temp, err = d.Temperature()
	c.Assert(err, qt.IsNil)
	c.Assert(temp, qt.Equals, float32(-25))
}

func TestBurstBytes(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(avalon.Config{Burst: true})
	out := []byte{ds3231.EncodeBCD(30), ds3231.EncodeBCD(46), ds3231.EncodeBCD(7)}
	c.Assert(d.WriteBytes(ds3231.Seconds, out), qt.IsNil)

	in, err := d.ReadBytes(ds3231.Seconds, 3)
	c.Assert(err, qt.IsNil)
	c.Assert(in, qt.DeepEquals, out)

	// one pointer phase per burst
	starts := 0
	for _, v := range bus.Controls() {
		if v == 0 {
			starts++
		}
	}
	c.Assert(starts, qt.Equals, 2)
}

func TestNowAndSet(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(avalon.Config{})
	want := time.Date(2025, time.February, 14, 7, 46, 30, 0, time.UTC)
	c.Assert(d.Set(want), qt.IsNil)
	c.Assert(bus.Peek(ds3231.Weekday), qt.Equals, byte(6)) // Friday

	got, err := d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Equal(want), qt.Equals, true)

	err = d.Set(time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC))
	c.Assert(err, qt.ErrorMatches, "ds3231: year out of range")
}

func TestLostPower(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(avalon.Config{})
	lost, err := d.LostPower()
	c.Assert(err, qt.IsNil)
	c.Assert(lost, qt.Equals, false)

	bus.Poke(ds3231.Status, 0x88)
	lost, err = d.LostPower()
	c.Assert(err, qt.IsNil)
	c.Assert(lost, qt.Equals, true)

	c.Assert(d.ClearLostPower(), qt.IsNil)
	c.Assert(bus.Peek(ds3231.Status), qt.Equals, byte(0x08))
}

func TestMissingDevice(t *testing.T) {
	c := qt.New(t)

	d, _ := newDevice(avalon.Config{})
	d.Address = 0x57
	_, err := d.GetTime()
	c.Assert(err, qt.IsNil)

	d, _ = newDevice(avalon.Config{Strict: true})
	d.Address = 0x57
	_, err = d.GetTime()
	c.Assert(errors.Is(err, avalon.ErrAck), qt.Equals, true)
	c.Assert(err, qt.ErrorMatches, `ds3231: get register 0x00: avalon: read of register 0x00 on device 0x57 not acknowledged .*`)
}

func TestStuckBus(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(avalon.Config{MaxPolls: 10})
	bus.Stuck(true)
	_, err := d.Temperature()
	c.Assert(errors.Is(err, avalon.ErrTimeout), qt.Equals, true)
}

func Example() {
	ctl := avalon.New(sim.New(sim.DefaultAddress))
	rtc := ds3231.New(ctl)

	err := rtc.SetTime(ds3231.Time{Second: 0, Minute: 0, Hour: 12, Weekday: 3, Day: 1, Month: 1, Year: 25})
	if err != nil {
		panic(err)
	}
	t, err := rtc.GetTime()
	if err != nil {
		panic(err)
	}
	fmt.Printf("Time: %02d:%02d:%02d\n", t.Hour, t.Minute, t.Second)
	fmt.Printf("Date: %02d/%02d/20%02d\n", t.Day, t.Month, t.Year)
	// Output:
	// Time: 12:00:00
	// Date: 01/01/2025
}
