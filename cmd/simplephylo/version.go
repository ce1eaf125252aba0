package main

import (
	"fmt"

	"github.com/js-arias/command"
)

var versionCmd = &command.Command{
	Usage: "version",
	Short: "print the version of simplephylo",
	Run: func(c *command.Command, args []string) error {
		fmt.Fprintf(c.Stdout(), "simplephylo %s\n", version)
		return nil
	},
}
