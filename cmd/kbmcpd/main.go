// Package main provides the entry point for the kbmcpd CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/kbmcp/cmd/kbmcpd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
