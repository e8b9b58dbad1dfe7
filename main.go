// Package main provides the entry point for snurisc.
// snurisc is a cycle-accurate 5-stage pipelined RV32I simulator.
//
// For the full CLI, use: go run ./cmd/snurisc
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("snurisc - RV32I 5-stage pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: snurisc [options] <program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -l N   log verbosity (0-7)")
	fmt.Println("  -c M   suppress trace output for cycles below M")
	fmt.Println("  -s     run the unpipelined single-step engine")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/snurisc' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/snurisc' instead.")
	}
}
