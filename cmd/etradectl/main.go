// Package main is the entry point for the etradectl CLI.
package main

import "github.com/casualjim/etrade/internal/cli"

func main() {
	cli.Execute()
}
