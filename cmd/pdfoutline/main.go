// Command pdfoutline extracts title and heading outlines from PDF files.
package main

import (
	"fmt"
	"os"

	"github.com/tsawler/pdfoutline/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
