// Package ds3231 implements a driver for the DS3231 Real-Time Clock (RTC),
// providing read-write of the current time and a read of the on-chip
// temperature sensor. Alarms, the square-wave output and aging offset are not
// implemented.
//
// Every field is a separate I2C transaction: GetTime is not an atomic
// snapshot, and a read that straddles a rollover can combine old and new
// fields (a new day with the old hour, say). SetTime has the same property.
// Fields are BCD-encoded without range checks; values above 99 corrupt the
// register they are written to.
//
// Datasheet: https://datasheets.maximintegrated.com/en/ds/DS3231.pdf
package ds3231

import (
	"errors"
	"fmt"
	"time"

	"github.com/ajanata/drivers"
)

// century is added to the two-digit year register.
const century = 2000

var errYearOutOfRange = errors.New("ds3231: year out of range")

type Device struct {
	bus     drivers.I2C
	Address uint8
}

// Time holds the seven time registers in decimal.
type Time struct {
	Second  uint8 // 0-59
	Minute  uint8 // 0-59
	Hour    uint8 // 0-23
	Weekday uint8 // 1-7
	Day     uint8 // 1-31
	Month   uint8 // 1-12
	Year    uint8 // 0-99
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d %02d/%02d/20%02d", t.Hour, t.Minute, t.Second, t.Day, t.Month, t.Year)
}

// Time converts t to a time.Time in UTC, assuming the 21st century.
func (t Time) Time() time.Time {
	return time.Date(century+int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), 0, time.UTC)
}

// New creates a new DS3231 driver on the provided bus. It does not touch the
// device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// timeRegisters lists the time registers in the order they are written and
// read, matching Time.fields.
var timeRegisters = [7]uint8{Seconds, Minutes, Hours, Weekday, Day, Month, Year}

func (t *Time) fields() [7]*uint8 {
	return [7]*uint8{&t.Second, &t.Minute, &t.Hour, &t.Weekday, &t.Day, &t.Month, &t.Year}
}

// SetTime writes the seven time registers one at a time, seconds first.
func (d *Device) SetTime(t Time) error {
	for i, v := range t.fields() {
		reg := timeRegisters[i]
		if err := d.bus.WriteRegister(d.Address, reg, []byte{EncodeBCD(*v)}); err != nil {
			return fmt.Errorf("ds3231: set register 0x%02X: %w", reg, err)
		}
	}
	return nil
}

// GetTime reads the seven time registers one at a time, seconds first.
func (d *Device) GetTime() (Time, error) {
	var t Time
	buf := [1]byte{}
	for i, v := range t.fields() {
		reg := timeRegisters[i]
		if err := d.bus.ReadRegister(d.Address, reg, buf[:]); err != nil {
			return Time{}, fmt.Errorf("ds3231: get register 0x%02X: %w", reg, err)
		}
		*v = DecodeBCD(buf[0])
	}
	return t, nil
}

// Temperature reads the temperature in degrees Celsius, in 0.25° steps.
func (d *Device) Temperature() (float32, error) {
	hi, err := d.readByte(TempHigh)
	if err != nil {
		return 0, err
	}
	lo, err := d.readByte(TempLow)
	if err != nil {
		return 0, err
	}
	return DecodeTemperature(hi, lo), nil
}

// WriteBytes writes raw bytes to consecutive registers starting at start.
// The bus sends them as one burst if it can.
func (d *Device) WriteBytes(start uint8, data []byte) error {
	return d.bus.WriteRegister(d.Address, start, data)
}

// ReadBytes reads n raw bytes from consecutive registers starting at start.
func (d *Device) ReadBytes(start uint8, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := d.bus.ReadRegister(d.Address, start, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Now returns the current time, accurate to the second.
func (d *Device) Now() (time.Time, error) {
	t, err := d.GetTime()
	if err != nil {
		return time.Time{}, err
	}
	return t.Time(), nil
}

// Set sets the current time from t in UTC. It returns an error if t is not
// within the 21st century.
func (d *Device) Set(t time.Time) error {
	t = t.UTC()
	if t.Year() < century || t.Year() >= century+100 {
		return errYearOutOfRange
	}
	return d.SetTime(Time{
		Second:  uint8(t.Second()),
		Minute:  uint8(t.Minute()),
		Hour:    uint8(t.Hour()),
		Weekday: uint8(t.Weekday()) + 1,
		Day:     uint8(t.Day()),
		Month:   uint8(t.Month()),
		Year:    uint8(t.Year() - century),
	})
}

// LostPower reports whether the oscillator has stopped since the flag was
// last cleared, meaning the time is not to be trusted.
func (d *Device) LostPower() (bool, error) {
	status, err := d.readByte(Status)
	if err != nil {
		return false, err
	}
	return status&(1<<OSF) != 0, nil
}

// ClearLostPower clears the oscillator stop flag, leaving the other status
// bits alone.
func (d *Device) ClearLostPower() error {
	status, err := d.readByte(Status)
	if err != nil {
		return err
	}
	return d.bus.WriteRegister(d.Address, Status, []byte{status &^ (1 << OSF)})
}

func (d *Device) readByte(reg uint8) (uint8, error) {
	buf := [1]byte{}
	if err := d.bus.ReadRegister(d.Address, reg, buf[:]); err != nil {
		return 0, fmt.Errorf("ds3231: read register 0x%02X: %w", reg, err)
	}
	return buf[0], nil
}
