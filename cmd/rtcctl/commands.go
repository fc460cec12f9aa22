package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/ajanata/drivers/avalon"
	"github.com/ajanata/drivers/ds3231"
	"github.com/ajanata/drivers/face"
	"github.com/ajanata/drivers/telemetry"
)

// env is the state shared by all commands. mu serializes whole command
// sequences on the bus.
type env struct {
	mu  sync.Mutex
	ctl *avalon.Controller
	rtc ds3231.Device
	out io.Writer
	in  io.Reader
}

func newEnv(regs avalon.Registers, cfg avalon.Config, out io.Writer) *env {
	ctl := avalon.New(regs)
	ctl.Configure(cfg)
	return &env{
		ctl: ctl,
		rtc: ds3231.New(ctl),
		out: out,
	}
}

type command struct {
	usage string
	nargs int // minimum number of arguments
	run   func(e *env, args []string) error
}

var commands map[string]command

func init() {
	// assigned here because shell refers back to the table
	commands = map[string]command{
		"set":     {"set SEC MIN HOUR WEEKDAY DAY MONTH YEAR", 7, cmdSet},
		"get":     {"get", 0, cmdGet},
		"temp":    {"temp", 0, cmdTemp},
		"write":   {"write REG BYTE...", 2, cmdWrite},
		"read":    {"read REG N", 2, cmdRead},
		"status":  {"status", 0, cmdStatus},
		"face":    {"face", 0, cmdFace},
		"publish": {"publish [-mqtt URL | -natiu ADDR | -redis ADDR] [-interval D] [-count N]", 0, cmdPublish},
		"demo":    {"demo", 0, cmdDemo},
		"shell":   {"shell [FILE]", 0, cmdShell},
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *env) run(args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	if len(args)-1 < cmd.nargs {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(e, args[1:])
}

func parseByte(s string, base int) (uint8, error) {
	v, err := strconv.ParseUint(s, base, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", s)
	}
	return uint8(v), nil
}

func cmdSet(e *env, args []string) error {
	var f [7]uint8
	for i := range f {
		v, err := parseByte(args[i], 10)
		if err != nil {
			return err
		}
		f[i] = v
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rtc.SetTime(ds3231.Time{
		Second:  f[0],
		Minute:  f[1],
		Hour:    f[2],
		Weekday: f[3],
		Day:     f[4],
		Month:   f[5],
		Year:    f[6],
	})
}

func cmdGet(e *env, args []string) error {
	e.mu.Lock()
	t, err := e.rtc.GetTime()
	e.mu.Unlock()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Time: %02d:%02d:%02d\n", t.Hour, t.Minute, t.Second)
	fmt.Fprintf(e.out, "Date: %02d/%02d/20%02d\n", t.Day, t.Month, t.Year)
	return nil
}

func cmdTemp(e *env, args []string) error {
	e.mu.Lock()
	temp, err := e.rtc.Temperature()
	e.mu.Unlock()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Temp: %.2f°C\n", temp)
	return nil
}

func cmdWrite(e *env, args []string) error {
	reg, err := parseByte(args[0], 0)
	if err != nil {
		return err
	}
	data := make([]byte, len(args)-1)
	for i, s := range args[1:] {
		if data[i], err = parseByte(s, 0); err != nil {
			return err
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rtc.WriteBytes(reg, data)
}

func cmdRead(e *env, args []string) error {
	reg, err := parseByte(args[0], 0)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 || n > 256 {
		return fmt.Errorf("invalid count %q", args[1])
	}
	e.mu.Lock()
	data, err := e.rtc.ReadBytes(reg, n)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	for i, b := range data {
		fmt.Fprintf(e.out, "0x%02X: 0x%02X\n", int(reg)+i, b)
	}
	return nil
}

func cmdStatus(e *env, args []string) error {
	e.mu.Lock()
	lost, err := e.rtc.LostPower()
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if lost {
		fmt.Fprintln(e.out, "oscillator stopped; time is not valid")
	} else {
		fmt.Fprintln(e.out, "oscillator running")
	}
	return nil
}

func cmdFace(e *env, args []string) error {
	s := &telemetry.Sampler{Clock: &e.rtc, Lock: &e.mu}
	r, err := s.Sample()
	if err != nil {
		return err
	}
	fmt.Fprint(e.out, face.Render(r.Clock, r.Celsius))
	return nil
}

func cmdPublish(e *env, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(e.out)
	var (
		mqttURL  = fs.String("mqtt", "", "MQTT broker URL for the paho client (tcp://host:1883)")
		natiuTo  = fs.String("natiu", "", "MQTT broker host:port for the natiu client")
		redisTo  = fs.String("redis", "", "redis server host:port")
		topic    = fs.String("topic", "rtc/ds3231", "MQTT topic or redis key")
		clientID = fs.String("id", "rtcctl", "MQTT client ID")
		interval = fs.Duration("interval", time.Second, "sample interval")
		count    = fs.Int("count", 0, "stop after this many readings (0 runs until interrupted)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pub telemetry.Publisher
		err error
	)
	switch {
	case *mqttURL != "":
		pub, err = telemetry.DialPaho(*mqttURL, *clientID, *topic)
	case *natiuTo != "":
		pub, err = telemetry.DialNatiu(ctx, *natiuTo, *clientID, *topic)
	case *redisTo != "":
		pub, err = telemetry.DialRedis(*redisTo, *topic)
	default:
		pub = &printer{out: e.out}
	}
	if err != nil {
		return err
	}
	defer pub.Close()

	if *count > 0 {
		pub = &limited{Publisher: pub, n: *count, stop: stop}
	}
	s := &telemetry.Sampler{
		Clock:     &e.rtc,
		Lock:      &e.mu,
		Interval:  *interval,
		Publisher: pub,
	}
	return s.Run(ctx)
}

// printer publishes readings as lines of text.
type printer struct {
	out io.Writer
}

func (p *printer) Publish(_ context.Context, r telemetry.Reading) error {
	_, err := fmt.Fprintf(p.out, "%s %.2f°C\n", r.Clock, r.Celsius)
	return err
}

func (p *printer) Close() error { return nil }

// limited stops the sampler after n readings.
type limited struct {
	telemetry.Publisher
	n    int
	stop func()
}

func (l *limited) Publish(ctx context.Context, r telemetry.Reading) error {
	if err := l.Publisher.Publish(ctx, r); err != nil {
		return err
	}
	if l.n--; l.n <= 0 {
		l.stop()
	}
	return nil
}

// cmdDemo runs the bring-up sequence used on the board: set and read back the
// time, burst access, BCD limits and an invalid BCD value.
func cmdDemo(e *env, args []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.out, "=== RTC Demo Start ===")

	want := ds3231.Time{Second: 30, Minute: 46, Hour: 7, Weekday: 3, Day: 14, Month: 2, Year: 25}
	if err := e.rtc.SetTime(want); err != nil {
		return err
	}
	t, err := e.rtc.GetTime()
	if err != nil {
		return err
	}
	temp, err := e.rtc.Temperature()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Final: %02d:%02d:%02d  %02d/%02d/20%02d   Temp=%.2f°C\n",
		t.Hour, t.Minute, t.Second, t.Day, t.Month, t.Year, temp)

	if e.ctl.Config().Burst {
		out := []byte{ds3231.EncodeBCD(30), ds3231.EncodeBCD(46), ds3231.EncodeBCD(7)}
		if err := e.rtc.WriteBytes(ds3231.Seconds, out); err != nil {
			return err
		}
		in, err := e.rtc.ReadBytes(ds3231.Seconds, len(out))
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Burst decoded: sec=%02d min=%02d hr=%02d\n",
			ds3231.DecodeBCD(in[0]), ds3231.DecodeBCD(in[1]), ds3231.DecodeBCD(in[2]))
	}

	if err := e.rtc.WriteBytes(ds3231.Seconds, []byte{0x00}); err != nil {
		return err
	}
	if err := e.rtc.WriteBytes(ds3231.Minutes, []byte{0x59}); err != nil {
		return err
	}
	// two separate reads, even when bursts are enabled
	var edge [2]byte
	for i, reg := range []uint8{ds3231.Seconds, ds3231.Minutes} {
		b, err := e.rtc.ReadBytes(reg, 1)
		if err != nil {
			return err
		}
		edge[i] = b[0]
	}
	fmt.Fprintf(e.out, "Edgecase read: seconds=0x%02X minutes=0x%02X\n", edge[0], edge[1])

	if err := e.rtc.WriteBytes(ds3231.Seconds, []byte{0x6A}); err != nil {
		return err
	}
	bad, err := e.rtc.ReadBytes(ds3231.Seconds, 1)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Invalid BCD read back seconds=0x%02X (decodes as %d)\n", bad[0], ds3231.DecodeBCD(bad[0]))
	return nil
}
