// Package main is the single-binary entrypoint for Koru.
package main

import "github.com/koru-wellness/koru/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
