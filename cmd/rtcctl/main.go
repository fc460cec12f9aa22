// The rtcctl command sets and reads a DS3231 real-time clock wired to the
// Avalon I2C core of a Nios II system, either through /dev/mem or against an
// in-memory simulation.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ajanata/drivers/avalon"
	"github.com/ajanata/drivers/avalon/sim"
	"github.com/ajanata/drivers/ds3231"
)

var (
	base     = flag.Uint64("base", avalon.DefaultBase, "physical base address of the I2C core")
	useSim   = flag.Bool("sim", false, "use a simulated core instead of /dev/mem")
	burst    = flag.Bool("burst", false, "use burst framing for multi-byte transfers")
	strict   = flag.Bool("strict", false, "fail on acknowledge errors instead of ignoring them")
	trace    = flag.Bool("trace", false, "log every step of every bus transaction")
	timeout  = flag.Duration("timeout", 0, "give up a status wait after this long (0 waits forever)")
	maxPolls = flag.Int("max-polls", 0, "give up a status wait after this many polls (0 waits forever)")
	poll     = flag.Duration("poll", 0, "sleep between status polls, backing off (0 busy-waits)")
)

func main() {
	os.Exit(main1())
}

func main1() int {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rtcctl [flags] command [args...]\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\ncommands:\n")
		for _, name := range commandNames() {
			fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
		}
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	regs, err := openRegisters()
	if err != nil {
		log.Printf("cannot open I2C core: %v", err)
		return 1
	}
	if c, ok := regs.(io.Closer); ok {
		defer c.Close()
	}
	e := newEnv(regs, config(), os.Stdout)
	if err := e.run(flag.Args()); err != nil {
		log.Printf("%s: %v", flag.Arg(0), err)
		return 1
	}
	return 0
}

func openRegisters() (avalon.Registers, error) {
	if *useSim {
		return sim.New(ds3231.Address), nil
	}
	return memoryRegisters(int64(*base))
}

func config() avalon.Config {
	cfg := avalon.Config{
		Burst:           *burst,
		Strict:          *strict,
		MaxPolls:        *maxPolls,
		Timeout:         *timeout,
		PollInterval:    *poll,
		MaxPollInterval: 100 * time.Millisecond,
	}
	if *trace {
		cfg.Tracer = func(e avalon.Event) {
			if line := e.String(); line != "" {
				log.Print(line)
			}
		}
	}
	return cfg
}
