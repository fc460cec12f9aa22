// Package telemetry samples an RTC at a fixed interval and publishes each
// reading to MQTT or redis.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ajanata/drivers/ds3231"
)

// Clock is what a Sampler reads from. *ds3231.Device implements it.
type Clock interface {
	GetTime() (ds3231.Time, error)
	Temperature() (float32, error)
}

// Reading is one sample of the clock registers and the temperature sensor.
type Reading struct {
	Time    time.Time // host time the sample was taken
	Clock   ds3231.Time
	Celsius float32
}

type wireReading struct {
	Time    string  `json:"time"`
	Clock   string  `json:"clock"`
	Celsius float32 `json:"celsius"`
}

func (r Reading) wire() wireReading {
	return wireReading{
		Time:    r.Time.UTC().Format(time.RFC3339),
		Clock:   r.Clock.String(),
		Celsius: r.Celsius,
	}
}

func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// Publisher sends readings somewhere.
type Publisher interface {
	Publish(ctx context.Context, r Reading) error
	Close() error
}

// Sampler reads Clock every Interval and hands the reading to Publisher.
// Lock, if set, is held for the whole of each sample so a sample never
// interleaves with other users of the bus.
type Sampler struct {
	Clock     Clock
	Lock      sync.Locker
	Interval  time.Duration
	Publisher Publisher

	// Now returns the host time stamped on readings; time.Now if nil.
	Now func() time.Time
}

// Sample takes one reading.
func (s *Sampler) Sample() (Reading, error) {
	if s.Lock != nil {
		s.Lock.Lock()
		defer s.Lock.Unlock()
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	r := Reading{Time: now()}
	var err error
	if r.Clock, err = s.Clock.GetTime(); err != nil {
		return Reading{}, fmt.Errorf("cannot read time: %w", err)
	}
	if r.Celsius, err = s.Clock.Temperature(); err != nil {
		return Reading{}, fmt.Errorf("cannot read temperature: %w", err)
	}
	return r, nil
}

// Run samples and publishes until ctx is done or a sample or publish
// fails. It returns nil when ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for ctx.Err() == nil {
		r, err := s.Sample()
		if err != nil {
			return err
		}
		if err := s.Publisher.Publish(ctx, r); err != nil {
			return fmt.Errorf("cannot publish: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
	return nil
}
