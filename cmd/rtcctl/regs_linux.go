package main

import "github.com/ajanata/drivers/avalon"

func memoryRegisters(base int64) (avalon.Registers, error) {
	return avalon.OpenMemory(avalon.DevMem, base)
}
