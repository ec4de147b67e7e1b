// Package main is the entry point for the aulev toolkit.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/aulev/cmd"

	// Register the RFC 6464 extension with the rtpext registry.
	_ "firestige.xyz/aulev/pkg/rtpext/rfc6464"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
