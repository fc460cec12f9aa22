//go:build !linux

package main

import (
	"errors"

	"github.com/ajanata/drivers/avalon"
)

func memoryRegisters(base int64) (avalon.Registers, error) {
	return nil, errors.New("/dev/mem access is only supported on linux; use -sim")
}
