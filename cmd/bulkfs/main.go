// Package main provides the entry point for the bulkfs CLI.
package main

import (
	"os"
)

func main() {
	os.Exit(exitCode(Execute()))
}
