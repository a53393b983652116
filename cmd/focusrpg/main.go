// Package main is the single-binary entrypoint for FocusRPG.
package main

import "github.com/focusrpg/focusrpg/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
