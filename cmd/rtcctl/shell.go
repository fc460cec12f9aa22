package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"
)

var errNested = errors.New("already in a shell")

// cmdShell reads commands from standard input or the named file, one per
// line, until EOF or "quit". Errors are printed and the shell carries on.
func cmdShell(e *env, args []string) error {
	if e.in != nil {
		return errNested
	}
	in := io.Reader(os.Stdin)
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return e.shell(in)
}

func (e *env) shell(in io.Reader) error {
	e.in = in
	defer func() { e.in = nil }()

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(e.out, "rtc> ")
		if !sc.Scan() {
			fmt.Fprintln(e.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(e.out, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "quit", "exit":
			return nil
		case "help":
			for _, name := range commandNames() {
				fmt.Fprintf(e.out, "  %s\n", commands[name].usage)
			}
			continue
		}
		if err := e.run(args); err != nil {
			fmt.Fprintf(e.out, "error: %v\n", err)
		}
	}
}
