// Package main is the rt2pose command itself.
package main

import (
	"fmt"
	"os"

	"go.viam.com/rtpose/cli"
)

func main() {
	app := cli.NewApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
